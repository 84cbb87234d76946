package dnswire

import (
	"encoding/binary"
	"fmt"
)

// ResourceRecord is a single resource record with opaque RDATA (RFC 1035
// Section 4.1.3). This layer does not interpret RDATA by type; callers
// needing typed RDATA (A, MX, TXT, ...) decode Data themselves.
type ResourceRecord struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  []byte // length equals the wire rdlength; never stored separately
}

// Marshal serializes the record without name compression.
func (r ResourceRecord) Marshal() ([]byte, error) {
	nb, err := EncodeName(r.Name)
	if err != nil {
		return nil, err
	}
	if len(r.Data) > 0xFFFF {
		return nil, fmt.Errorf("%w: rdata length %d exceeds uint16", ErrMalformedRR, len(r.Data))
	}
	out := make([]byte, 0, len(nb)+10+len(r.Data))
	out = append(out, nb...)
	out = binary.BigEndian.AppendUint16(out, r.Type)
	out = binary.BigEndian.AppendUint16(out, r.Class)
	out = binary.BigEndian.AppendUint32(out, r.TTL)
	out = binary.BigEndian.AppendUint16(out, uint16(len(r.Data)))
	out = append(out, r.Data...)
	return out, nil
}

// parseRecord decodes a resource record at *off and advances *off past it.
func parseRecord(msg []byte, off *int) (ResourceRecord, error) {
	name, next, err := decodeName(msg, *off)
	if err != nil {
		return ResourceRecord{}, err
	}
	if next+10 > len(msg) {
		return ResourceRecord{}, fmt.Errorf("%w: truncated resource record fixed fields", ErrTruncated)
	}
	rr := ResourceRecord{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[next : next+2]),
		Class: binary.BigEndian.Uint16(msg[next+2 : next+4]),
		TTL:   binary.BigEndian.Uint32(msg[next+4 : next+8]),
	}
	rdlength := int(binary.BigEndian.Uint16(msg[next+8 : next+10]))
	dataStart := next + 10
	if dataStart+rdlength > len(msg) {
		return ResourceRecord{}, fmt.Errorf("%w: rdata of length %d would read past end of message", ErrTruncated, rdlength)
	}
	rr.Data = make([]byte, rdlength)
	copy(rr.Data, msg[dataStart:dataStart+rdlength])
	*off = dataStart + rdlength
	return rr, nil
}

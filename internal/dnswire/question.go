package dnswire

import (
	"encoding/binary"
	"fmt"
)

// Question is one entry of a message's question section (RFC 1035 Section
// 4.1.2).
type Question struct {
	Name  string
	QType uint16
	QClass uint16
}

// Marshal serializes the question without name compression.
func (q Question) Marshal() ([]byte, error) {
	nb, err := EncodeName(q.Name)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nb)+4)
	out = append(out, nb...)
	out = binary.BigEndian.AppendUint16(out, q.QType)
	out = binary.BigEndian.AppendUint16(out, q.QClass)
	return out, nil
}

// parseQuestion decodes a question at *off and advances *off past it.
func parseQuestion(msg []byte, off *int) (Question, error) {
	name, next, err := decodeName(msg, *off)
	if err != nil {
		return Question{}, err
	}
	if next+4 > len(msg) {
		return Question{}, fmt.Errorf("%w: truncated question fixed fields", ErrTruncated)
	}
	q := Question{
		Name:   name,
		QType:  binary.BigEndian.Uint16(msg[next : next+2]),
		QClass: binary.BigEndian.Uint16(msg[next+2 : next+4]),
	}
	*off = next + 4
	return q, nil
}

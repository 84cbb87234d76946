package dnswire

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// maxName is the maximum uncompressed length of a domain name (RFC 1035
// Section 3.1): 255 bytes including length-prefix bytes and the final
// zero-length root label.
const maxName = 255

// maxLabel is the maximum length of a single label.
const maxLabel = 63

// maxPointerJumps bounds the number of compression-pointer indirections a
// single name decode may follow. Combined with the target < cursor rule
// below, this is a belt-and-braces backstop: the rule alone already
// guarantees termination in at most N jumps for a buffer of length N, since
// every jump strictly decreases the cursor.
const maxPointerJumps = 127

// decodeName decodes a domain name starting at off in msg, returning the
// dot-joined, case-preserved name and the offset immediately following the
// name as it appeared at its original position (not following any pointer).
//
// Compression pointers (RFC 1035 Section 4.1.4) are two-byte fields whose
// first byte has its top two bits set. The low 14 bits are a byte offset
// into msg, and must be strictly less than the pointer's own position: this
// forbids forward and self pointers, which is sufficient to guarantee
// termination without a separate jump counter or visited-set, since the
// cursor strictly decreases on every jump and cannot be revisited.
func decodeName(msg []byte, off int) (name string, next int, err error) {
	n := len(msg)
	cursor := off
	advanceCursor := 0
	advanced := false
	jumps := 0

	var labels []string

	for {
		if cursor >= n {
			return "", 0, fmt.Errorf("%w: unexpected end of message while reading name", ErrTruncated)
		}
		b := msg[cursor]

		switch {
		case b == 0:
			end := cursor + 1
			if advanced {
				end = advanceCursor
			}
			return strings.Join(labels, "."), end, nil

		case b&0xC0 == 0xC0:
			if cursor+2 > n {
				return "", 0, fmt.Errorf("%w: truncated compression pointer", ErrTruncated)
			}
			target := int(binary.BigEndian.Uint16([]byte{b & 0x3F, msg[cursor+1]}))
			if target >= cursor {
				return "", 0, fmt.Errorf("%w: compression pointer does not point strictly backward", ErrMalformedName)
			}
			if !advanced {
				advanceCursor = cursor + 2
				advanced = true
			}
			jumps++
			if jumps > maxPointerJumps {
				return "", 0, fmt.Errorf("%w: too many compression pointer indirections", ErrMalformedName)
			}
			cursor = target

		case b&0xC0 == 0x00:
			l := int(b)
			if l > maxLabel {
				return "", 0, fmt.Errorf("%w: label length %d exceeds %d", ErrMalformedName, l, maxLabel)
			}
			if cursor+1+l > n {
				return "", 0, fmt.Errorf("%w: truncated label", ErrTruncated)
			}
			labels = append(labels, string(msg[cursor+1:cursor+1+l]))
			cursor += 1 + l

			total := 1 // final zero-length root label
			for _, lb := range labels {
				total += 1 + len(lb) // length prefix + label bytes
			}
			if total > maxName {
				return "", 0, fmt.Errorf("%w: name exceeds %d bytes", ErrMalformedName, maxName)
			}

		default:
			return "", 0, fmt.Errorf("%w: label length byte %#02x uses reserved high bits", ErrReserved, b)
		}
	}
}

// DecodeName is the exported entry point: it decodes a name at off and
// returns the decoded name plus the offset immediately after it at its
// original (non-pointer) position.
func DecodeName(msg []byte, off int) (name string, next int, err error) {
	return decodeName(msg, off)
}

// EncodeName encodes name to uncompressed DNS wire format: a sequence of
// length-prefixed labels terminated by a zero-length label. The root name
// ("") encodes to the single zero byte.
func EncodeName(name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return []byte{0}, nil
	}

	labels := strings.Split(name, ".")
	out := make([]byte, 0, len(name)+2)
	for _, label := range labels {
		if len(label) == 0 {
			return nil, fmt.Errorf("%w: empty label in %q", ErrMalformedName, name)
		}
		if len(label) > maxLabel {
			return nil, fmt.Errorf("%w: label %q exceeds %d bytes", ErrMalformedName, label, maxLabel)
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	out = append(out, 0)
	if len(out) > maxName {
		return nil, fmt.Errorf("%w: encoded name exceeds %d bytes", ErrMalformedName, maxName)
	}
	return out, nil
}

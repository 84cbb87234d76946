package dnswire

// Message is a fully decoded DNS message (RFC 1035 Section 4): a header and
// four ordered resource sections. After a successful Decode, each section's
// length equals its corresponding header count.
type Message struct {
	Header      Header
	Questions   []Question
	Answers     []ResourceRecord
	Authorities []ResourceRecord
	Additionals []ResourceRecord
}

// Decode parses a complete DNS message from msg. It reads exactly the
// header's QDCount questions, then ANCount+NSCount+ARCount resource records
// in that order (answers, then authorities, then additionals). Bytes
// remaining after the last record are not an error: some transports pad
// messages.
func Decode(msg []byte) (Message, error) {
	var off int
	h, err := parseHeader(msg, &off)
	if err != nil {
		return Message{}, err
	}

	m := Message{Header: h}

	m.Questions = make([]Question, 0, h.QDCount)
	for i := uint16(0); i < h.QDCount; i++ {
		q, err := parseQuestion(msg, &off)
		if err != nil {
			return Message{}, err
		}
		m.Questions = append(m.Questions, q)
	}

	m.Answers, err = parseRecords(msg, &off, h.ANCount)
	if err != nil {
		return Message{}, err
	}
	m.Authorities, err = parseRecords(msg, &off, h.NSCount)
	if err != nil {
		return Message{}, err
	}
	m.Additionals, err = parseRecords(msg, &off, h.ARCount)
	if err != nil {
		return Message{}, err
	}

	return m, nil
}

func parseRecords(msg []byte, off *int, count uint16) ([]ResourceRecord, error) {
	out := make([]ResourceRecord, 0, count)
	for i := uint16(0); i < count; i++ {
		rr, err := parseRecord(msg, off)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, nil
}

// Encode serializes the message to wire format without name compression.
// Header counts are derived from the section lengths, not carried over from
// Header verbatim, so a round trip through Decode always reproduces the
// original structure (testable property: decode(encode(decode(x))) == decode(x)).
func (m Message) Encode() ([]byte, error) {
	h := m.Header
	h.QDCount = uint16(len(m.Questions))
	h.ANCount = uint16(len(m.Answers))
	h.NSCount = uint16(len(m.Authorities))
	h.ARCount = uint16(len(m.Additionals))

	out := h.Marshal()
	for _, q := range m.Questions {
		b, err := q.Marshal()
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	for _, section := range [][]ResourceRecord{m.Answers, m.Authorities, m.Additionals} {
		for _, rr := range section {
			b, err := rr.Marshal()
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
	}
	return out, nil
}

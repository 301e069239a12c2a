package cat034

import "fmt"

// Message is a CAT034 data block: one header followed by zero or more records
type Message struct {
	Category uint8
	Records  []*Record
}

// NewMessage returns a CAT034 message holding the given records
func NewMessage(records ...*Record) *Message {
	return &Message{
		Category: Category,
		Records:  records,
	}
}

// Encode returns the header followed by every record. The header length is
// computed from the encoded records; nothing is returned on error.
func (m *Message) Encode() ([]byte, error) {
	if m.Category != Category {
		return nil, fmt.Errorf("%w: %d", ErrCategoryInvalid, m.Category)
	}

	var body []byte
	for i, r := range m.Records {
		if r == nil {
			return nil, fmt.Errorf("record %d is nil", i)
		}
		encoded, err := r.Encode()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		body = append(body, encoded...)
	}

	total := HeaderLength + len(body)
	if total > MaxBlockLength {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrSizeInvalid, total, MaxBlockLength)
	}

	header := Header{Category: m.Category, Length: uint16(total)}.Bytes()
	out := make([]byte, 0, total)
	out = append(out, header[:]...)
	return append(out, body...), nil
}

// DecodeMessage decodes exactly one data block. The declared length must
// equal len(b) and the records must end exactly on that boundary.
func DecodeMessage(b []byte) (*Message, error) {
	header, err := DecodeHeader(b)
	if err != nil {
		return nil, err
	}
	if header.Category != Category {
		return nil, fmt.Errorf("%w: %d", ErrCategoryInvalid, header.Category)
	}
	if int(header.Length) != len(b) {
		return nil, fmt.Errorf("%w: header declares %d bytes, buffer has %d", ErrSizeInvalid, header.Length, len(b))
	}

	m := &Message{Category: header.Category}
	cursor := HeaderLength

	for cursor < len(b) {
		r, n, err := DecodeRecord(b[cursor:])
		if err != nil {
			return nil, fmt.Errorf("record %d at offset %d: %w", len(m.Records), cursor, err)
		}
		m.Records = append(m.Records, r)
		cursor += n
	}

	return m, nil
}

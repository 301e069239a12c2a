package cat034

import (
	"encoding/binary"
	"fmt"
)

// Category is the ASTERIX data category handled by this package
const Category = 34

// HeaderLength is the size of the data block header (CAT + LEN)
const HeaderLength = 3

// MaxBlockLength is the largest length the LEN field can declare
const MaxBlockLength = 0xFFFF

// Header is the data block header: one octet category followed by a
// two octet length that counts the header itself.
type Header struct {
	Category uint8
	Length   uint16
}

// Bytes returns the wire form of the header
func (h Header) Bytes() [HeaderLength]byte {
	var b [HeaderLength]byte
	b[0] = h.Category
	binary.BigEndian.PutUint16(b[1:], h.Length)
	return b
}

// DecodeHeader reads a header from the start of b
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderLength {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, got %d", ErrSizeInvalid, HeaderLength, len(b))
	}

	return Header{
		Category: b[0],
		Length:   binary.BigEndian.Uint16(b[1:3]),
	}, nil
}

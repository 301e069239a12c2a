package cat034

import "fmt"

// FRN slots per FSPEC octet; bit 1 of every octet is FX
const frnsPerOctet = 7

// fxBit is the field extension bit position within an octet
const fxBit = 1

// MaxFSPECOctets bounds the FSPEC chain of a CAT034 record (FRN 1..14)
const MaxFSPECOctets = 2

// FieldSpec is one octet of an FSPEC chain.
//
//	| 8 | 7 | 6 | 5 | 4 | 3 | 2 | 1 |
//	|FRN|FRN|FRN|FRN|FRN|FRN|FRN| FX|
//
// Bit 8 carries the first FRN of the octet's group, bit 2 the seventh.
type FieldSpec uint8

// SetBit sets bit n (1..8); other values are ignored
func (f *FieldSpec) SetBit(n int) {
	if n < 1 || n > 8 {
		return
	}
	*f |= FieldSpec(1) << (n - 1)
}

// Bit reports whether bit n (1..8) is set
func (f FieldSpec) Bit(n int) bool {
	if n < 1 || n > 8 {
		return false
	}
	return f&(FieldSpec(1)<<(n-1)) != 0
}

// FX reports whether another octet follows
func (f FieldSpec) FX() bool {
	return f.Bit(fxBit)
}

// frnPosition maps an FRN to its octet index and bit number
func frnPosition(frn int) (octet, bit int) {
	octet = (frn - 1) / frnsPerOctet
	bit = 8 - (frn-1)%frnsPerOctet
	return octet, bit
}

// ReadFSPEC reads an FX-terminated chain from the start of b. The loop is
// bounded by both len(b) and maxOctets, so input with FX always set fails
// instead of running past the buffer.
func ReadFSPEC(b []byte, maxOctets int) ([]FieldSpec, error) {
	chain := make([]FieldSpec, 0, maxOctets)

	for i := 0; ; i++ {
		if i >= len(b) {
			return nil, fmt.Errorf("%w: fspec unterminated after %d octets", ErrSizeInvalid, i)
		}
		if i >= maxOctets {
			return nil, fmt.Errorf("%w: fspec longer than %d octets", ErrSizeInvalid, maxOctets)
		}

		octet := FieldSpec(b[i])
		chain = append(chain, octet)

		if !octet.FX() {
			return chain, nil
		}
	}
}

// BuildFSPEC returns the shortest chain covering the given FRNs, with FX set
// on every octet but the last. An empty FRN set yields a single zero octet.
func BuildFSPEC(frns []int) []FieldSpec {
	highest := 0
	for _, frn := range frns {
		if frn > highest {
			highest = frn
		}
	}

	octets := 1
	if highest > 0 {
		octets = (highest-1)/frnsPerOctet + 1
	}

	chain := make([]FieldSpec, octets)
	for _, frn := range frns {
		if frn < 1 {
			continue
		}
		octet, bit := frnPosition(frn)
		chain[octet].SetBit(bit)
	}
	for i := 0; i < octets-1; i++ {
		chain[i].SetBit(fxBit)
	}

	return chain
}

// FRNPresent reports whether frn is flagged in the chain
func FRNPresent(chain []FieldSpec, frn int) bool {
	if frn < 1 {
		return false
	}
	octet, bit := frnPosition(frn)
	if octet >= len(chain) {
		return false
	}
	return chain[octet].Bit(bit)
}

// FSPECBytes converts a chain to its wire form
func FSPECBytes(chain []FieldSpec) []byte {
	b := make([]byte, len(chain))
	for i, octet := range chain {
		b[i] = byte(octet)
	}
	return b
}

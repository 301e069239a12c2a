package cat034

import "fmt"

// Record is one CAT034 data record. A nil item is absent; the FSPEC is never
// stored and is derived from the non-nil items on every encode.
type Record struct {
	DataSource          *DataSource                // I034/010
	MessageType         *MessageType               // I034/000
	TimeOfDay           *TimeOfDay                 // I034/030
	SectorNumber        *SectorNumber              // I034/020
	AntennaRotation     *AntennaRotation           // I034/041
	SystemConfiguration *SystemConfigurationStatus // I034/050
	SystemProcessing    *SystemProcessingMode      // I034/060
	MessageCount        *MessageCountValues        // I034/070
	PolarWindow         *GenericPolarWindow        // I034/100
	DataFilter          *DataFilter                // I034/110
	Position            *PositionSource            // I034/120
	CollimationError    *CollimationError          // I034/090
	ReservedExpansion   *ExplicitField             // RE
	SpecialPurpose      *ExplicitField             // SP
}

// PresentFRNs returns the FRNs of the items set in r, ascending
func (r *Record) PresentFRNs() []int {
	var frns []int
	for _, e := range uap {
		if e.get(r) != nil {
			frns = append(frns, e.frn)
		}
	}
	return frns
}

// FSPEC returns the field specification implied by the items set in r
func (r *Record) FSPEC() []FieldSpec {
	return BuildFSPEC(r.PresentFRNs())
}

// Has reports whether the item with the given FRN is set
func (r *Record) Has(frn int) bool {
	if frn < 1 || frn > len(uap) {
		return false
	}
	return uap[frn-1].get(r) != nil
}

// Encode returns the FSPEC followed by every present item in FRN order
func (r *Record) Encode() ([]byte, error) {
	var frns []int
	var body []byte

	for _, e := range uap {
		f := e.get(r)
		if f == nil {
			continue
		}

		wire, err := f.MarshalWire()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", e.item, err)
		}
		if len(wire) != f.WireSize() {
			return nil, fmt.Errorf("%w: %s encoded %d bytes, expected %d", ErrSizeInvalid, e.item, len(wire), f.WireSize())
		}

		frns = append(frns, e.frn)
		body = append(body, wire...)
	}

	out := FSPECBytes(BuildFSPEC(frns))
	return append(out, body...), nil
}

// EncodedLength returns the number of bytes Encode produces
func (r *Record) EncodedLength() int {
	var frns []int
	length := 0
	for _, e := range uap {
		if f := e.get(r); f != nil {
			frns = append(frns, e.frn)
			length += f.WireSize()
		}
	}
	return length + len(BuildFSPEC(frns))
}

// DecodeRecord reads one record from the start of b and returns it with the
// number of bytes consumed. It never reads past len(b).
func DecodeRecord(b []byte) (*Record, int, error) {
	chain, err := ReadFSPEC(b, MaxFSPECOctets)
	if err != nil {
		return nil, 0, err
	}

	r := &Record{}
	cursor := len(chain)

	for _, e := range uap {
		if !FRNPresent(chain, e.frn) {
			continue
		}

		size, err := e.size(b[cursor:])
		if err != nil {
			return nil, 0, fmt.Errorf("decode %s at offset %d: %w", e.item, cursor, err)
		}
		if cursor+size > len(b) {
			return nil, 0, fmt.Errorf("%w: %s at offset %d needs %d bytes, %d left", ErrSizeInvalid, e.item, cursor, size, len(b)-cursor)
		}

		if err := e.decode(r, b[cursor:cursor+size]); err != nil {
			return nil, 0, fmt.Errorf("decode %s at offset %d: %w", e.item, cursor, err)
		}
		cursor += size
	}

	return r, cursor, nil
}

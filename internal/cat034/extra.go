package cat034

import (
	"encoding/binary"
	"fmt"
)

// DataFilterSize is the wire size of I034/110
const DataFilterSize = 1

// MessageCount is one repetition of I034/070: a 5-bit message type and an
// 11-bit counter of messages of that type sent during the last scan.
type MessageCount struct {
	Type    uint8
	Counter uint16
}

// Message count types
const (
	CountNoDetection            = 0
	CountSinglePSR              = 1
	CountSingleSSR              = 2
	CountSSRPSR                 = 3
	CountSingleModeSAllCall     = 4
	CountSingleModeSRollCall    = 5
	CountModeSAllCallPSR        = 6
	CountModeSRollCallPSR       = 7
	CountFilterWeather          = 8
	CountFilterJammingStrobe    = 9
	CountFilterPSR              = 10
	CountFilterSSRModeS         = 11
	CountFilterSSRModeSPSR      = 12
	CountFilterEnhancedSurv     = 13
	CountFilterPSREnhancedSurv  = 14
	CountFilterPSREnhancedModeS = 15
	CountFilterAll              = 16
)

// MessageCountValues is I034/070, a repetitive item led by a REP octet
type MessageCountValues struct {
	Counts []MessageCount
}

// messageCountsSize returns the length of an I034/070 item at the start of b
func messageCountsSize(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, fmt.Errorf("%w: I034/070 missing repetition factor", ErrSizeInvalid)
	}
	return 1 + 2*int(b[0]), nil
}

// WireSize returns the encoded length
func (m MessageCountValues) WireSize() int { return 1 + 2*len(m.Counts) }

// MarshalWire encodes REP followed by the counters
func (m MessageCountValues) MarshalWire() ([]byte, error) {
	if len(m.Counts) > 0xFF {
		return nil, fmt.Errorf("%w: I034/070 has %d repetitions", ErrValueRange, len(m.Counts))
	}

	b := make([]byte, m.WireSize())
	b[0] = byte(len(m.Counts))
	for i, c := range m.Counts {
		if c.Type > 0x1F || c.Counter > 0x7FF {
			return nil, fmt.Errorf("%w: I034/070 type %d counter %d", ErrValueRange, c.Type, c.Counter)
		}
		binary.BigEndian.PutUint16(b[1+2*i:], uint16(c.Type)<<11|c.Counter)
	}
	return b, nil
}

// UnmarshalWire decodes REP and the counters it announces
func (m *MessageCountValues) UnmarshalWire(b []byte) error {
	size, err := messageCountsSize(b)
	if err != nil {
		return err
	}
	if err := checkSize("I034/070", b, size); err != nil {
		return err
	}

	m.Counts = nil
	for i := 1; i < size; i += 2 {
		v := binary.BigEndian.Uint16(b[i:])
		m.Counts = append(m.Counts, MessageCount{
			Type:    uint8(v >> 11),
			Counter: v & 0x7FF,
		})
	}
	return nil
}

// DataFilter is I034/110, the type of filter in use for the geographical
// filtering message.
type DataFilter uint8

// Data filter types
const (
	FilterInvalid              DataFilter = 0
	FilterWeather              DataFilter = 1
	FilterJammingStrobe        DataFilter = 2
	FilterPSR                  DataFilter = 3
	FilterSSRModeS             DataFilter = 4
	FilterSSRModeSPSR          DataFilter = 5
	FilterEnhancedSurveillance DataFilter = 6
	FilterPSREnhanced          DataFilter = 7
	FilterPSREnhancedOutside   DataFilter = 8
	FilterPSREnhancedAll       DataFilter = 9
)

// WireSize returns the encoded length
func (d DataFilter) WireSize() int { return DataFilterSize }

// MarshalWire encodes the filter octet
func (d DataFilter) MarshalWire() ([]byte, error) {
	return []byte{byte(d)}, nil
}

// UnmarshalWire decodes the filter octet
func (d *DataFilter) UnmarshalWire(b []byte) error {
	if err := checkSize("I034/110", b, DataFilterSize); err != nil {
		return err
	}
	*d = DataFilter(b[0])
	return nil
}

// ExplicitField carries the Reserved Expansion and Special Purpose items.
// On the wire a length octet (counting itself) precedes Data.
type ExplicitField struct {
	Data []byte
}

// explicitSize returns the length of an explicit item at the start of b
func explicitSize(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, fmt.Errorf("%w: explicit item missing length octet", ErrSizeInvalid)
	}
	if b[0] == 0 {
		return 0, fmt.Errorf("%w: explicit item declares zero length", ErrSizeInvalid)
	}
	return int(b[0]), nil
}

// WireSize returns the encoded length
func (e ExplicitField) WireSize() int { return 1 + len(e.Data) }

// MarshalWire encodes the length octet and the payload
func (e ExplicitField) MarshalWire() ([]byte, error) {
	if len(e.Data) > 0xFE {
		return nil, fmt.Errorf("%w: explicit item payload of %d bytes", ErrValueRange, len(e.Data))
	}
	b := make([]byte, 0, e.WireSize())
	b = append(b, byte(e.WireSize()))
	return append(b, e.Data...), nil
}

// UnmarshalWire decodes the length octet and copies the payload
func (e *ExplicitField) UnmarshalWire(b []byte) error {
	size, err := explicitSize(b)
	if err != nil {
		return err
	}
	if err := checkSize("explicit item", b, size); err != nil {
		return err
	}
	e.Data = append([]byte(nil), b[1:]...)
	return nil
}

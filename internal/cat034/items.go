package cat034

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Wire sizes of the fixed-length items
const (
	DataSourceSize      = 2
	MessageTypeSize     = 1
	TimeOfDaySize       = 3
	SectorNumberSize    = 1
	AntennaRotationSize = 2
)

// Scaling factors (physical units per LSB)
const (
	TimeLSB   = 1.0 / 128.0   // seconds
	SectorLSB = 360.0 / 256.0 // degrees
)

// DataSource is I034/010, the SAC/SIC pair identifying the radar
type DataSource struct {
	SAC uint8
	SIC uint8
}

// WireSize returns the encoded length
func (d DataSource) WireSize() int { return DataSourceSize }

// MarshalWire encodes SAC then SIC
func (d DataSource) MarshalWire() ([]byte, error) {
	return []byte{d.SAC, d.SIC}, nil
}

// UnmarshalWire decodes SAC then SIC
func (d *DataSource) UnmarshalWire(b []byte) error {
	if err := checkSize("I034/010", b, DataSourceSize); err != nil {
		return err
	}
	d.SAC = b[0]
	d.SIC = b[1]
	return nil
}

// MessageType is I034/000
type MessageType uint8

// Message types
const (
	NorthMarker           MessageType = 1
	SectorCrossing        MessageType = 2
	GeographicalFiltering MessageType = 3
	JammingStrobe         MessageType = 4
	SolarStorm            MessageType = 5
	SSRJammingStrobe      MessageType = 6
	ModeSJammingStrobe    MessageType = 7
)

var messageTypeNames = map[MessageType]string{
	NorthMarker:           "north_marker",
	SectorCrossing:        "sector_crossing",
	GeographicalFiltering: "geographical_filtering",
	JammingStrobe:         "jamming_strobe",
	SolarStorm:            "solar_storm",
	SSRJammingStrobe:      "ssr_jamming_strobe",
	ModeSJammingStrobe:    "modes_jamming_strobe",
}

// String returns the message type name, or its number when unknown
func (m MessageType) String() string {
	if name, ok := messageTypeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("message_type_%d", uint8(m))
}

// Known reports whether m is one of the defined message types
func (m MessageType) Known() bool {
	_, ok := messageTypeNames[m]
	return ok
}

// ParseMessageType looks up a message type by name
func ParseMessageType(name string) (MessageType, bool) {
	for m, n := range messageTypeNames {
		if n == name {
			return m, true
		}
	}
	return 0, false
}

// WireSize returns the encoded length
func (m MessageType) WireSize() int { return MessageTypeSize }

// MarshalWire encodes the message type octet
func (m MessageType) MarshalWire() ([]byte, error) {
	return []byte{byte(m)}, nil
}

// UnmarshalWire decodes the message type octet
func (m *MessageType) UnmarshalWire(b []byte) error {
	if err := checkSize("I034/000", b, MessageTypeSize); err != nil {
		return err
	}
	*m = MessageType(b[0])
	return nil
}

// TimeOfDay is I034/030, elapsed time since midnight UTC in 1/128 s
type TimeOfDay uint32

// maxTimeOfDay is the largest 24-bit count
const maxTimeOfDay = 0xFFFFFF

// TimeOfDayFromSeconds converts seconds since midnight, truncating to 1/128 s
func TimeOfDayFromSeconds(seconds float64) (TimeOfDay, error) {
	count, err := toLSB("I034/030", seconds, TimeLSB, 0, maxTimeOfDay)
	if err != nil {
		return 0, err
	}
	return TimeOfDay(count), nil
}

// Seconds returns the time since midnight in seconds
func (t TimeOfDay) Seconds() float64 {
	return float64(t) * TimeLSB
}

// Duration returns the time since midnight
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Second / 128
}

// WireSize returns the encoded length
func (t TimeOfDay) WireSize() int { return TimeOfDaySize }

// MarshalWire encodes the 24-bit count big-endian
func (t TimeOfDay) MarshalWire() ([]byte, error) {
	if t > maxTimeOfDay {
		return nil, fmt.Errorf("%w: I034/030 count %d exceeds 24 bits", ErrValueRange, uint32(t))
	}
	b := make([]byte, TimeOfDaySize)
	putUint24(b, uint32(t))
	return b, nil
}

// UnmarshalWire decodes the 24-bit count
func (t *TimeOfDay) UnmarshalWire(b []byte) error {
	if err := checkSize("I034/030", b, TimeOfDaySize); err != nil {
		return err
	}
	*t = TimeOfDay(uint24(b))
	return nil
}

// SectorNumber is I034/020, the azimuth of the crossed sector in 360/256 deg
type SectorNumber uint8

// SectorNumberFromDegrees converts an azimuth in [0, 360), truncating
func SectorNumberFromDegrees(degrees float64) (SectorNumber, error) {
	count, err := toLSB("I034/020", degrees, SectorLSB, 0, 0xFF)
	if err != nil {
		return 0, err
	}
	return SectorNumber(count), nil
}

// Degrees returns the sector azimuth
func (s SectorNumber) Degrees() float64 {
	return float64(s) * SectorLSB
}

// WireSize returns the encoded length
func (s SectorNumber) WireSize() int { return SectorNumberSize }

// MarshalWire encodes the sector octet
func (s SectorNumber) MarshalWire() ([]byte, error) {
	return []byte{byte(s)}, nil
}

// UnmarshalWire decodes the sector octet
func (s *SectorNumber) UnmarshalWire(b []byte) error {
	if err := checkSize("I034/020", b, SectorNumberSize); err != nil {
		return err
	}
	*s = SectorNumber(b[0])
	return nil
}

// AntennaRotation is I034/041, the antenna rotation period in 1/128 s
type AntennaRotation uint16

// AntennaRotationFromSeconds converts a period in seconds, truncating
func AntennaRotationFromSeconds(seconds float64) (AntennaRotation, error) {
	count, err := toLSB("I034/041", seconds, TimeLSB, 0, 0xFFFF)
	if err != nil {
		return 0, err
	}
	return AntennaRotation(count), nil
}

// Seconds returns the rotation period
func (a AntennaRotation) Seconds() float64 {
	return float64(a) * TimeLSB
}

// WireSize returns the encoded length
func (a AntennaRotation) WireSize() int { return AntennaRotationSize }

// MarshalWire encodes the period big-endian
func (a AntennaRotation) MarshalWire() ([]byte, error) {
	b := make([]byte, AntennaRotationSize)
	binary.BigEndian.PutUint16(b, uint16(a))
	return b, nil
}

// UnmarshalWire decodes the period
func (a *AntennaRotation) UnmarshalWire(b []byte) error {
	if err := checkSize("I034/041", b, AntennaRotationSize); err != nil {
		return err
	}
	*a = AntennaRotation(binary.BigEndian.Uint16(b))
	return nil
}

package cat034

import (
	"encoding/binary"
	"fmt"
)

// Wire sizes of the geometric items
const (
	GenericPolarWindowSize = 8
	PositionSourceSize     = 8
	CollimationErrorSize   = 2
)

// Scaling factors (physical units per LSB)
const (
	RhoLSB              = 1.0 / 256.0       // NM
	ThetaLSB            = 360.0 / 65536.0   // degrees
	LatLonLSB           = 180.0 / (1 << 23) // degrees
	HeightLSB           = 1.0               // metres
	CollimationRangeLSB = 1.0 / 128.0       // NM
	CollimationAzLSB    = 360.0 / (1 << 14) // degrees
)

// Signed 24-bit range of the latitude/longitude counts
const (
	minInt24 = -(1 << 23)
	maxInt24 = 1<<23 - 1
)

// GenericPolarWindow is I034/100: the polar window an event applies to
type GenericPolarWindow struct {
	RhoStart   uint16
	RhoEnd     uint16
	ThetaStart uint16
	ThetaEnd   uint16
}

// NewGenericPolarWindow builds a window from ranges in NM and azimuths in
// degrees, truncating each bound to its LSB.
func NewGenericPolarWindow(rhoStart, rhoEnd, thetaStart, thetaEnd float64) (GenericPolarWindow, error) {
	var w GenericPolarWindow

	rs, err := toLSB("I034/100 rho start", rhoStart, RhoLSB, 0, 0xFFFF)
	if err != nil {
		return w, err
	}
	re, err := toLSB("I034/100 rho end", rhoEnd, RhoLSB, 0, 0xFFFF)
	if err != nil {
		return w, err
	}
	ts, err := toLSB("I034/100 theta start", thetaStart, ThetaLSB, 0, 0xFFFF)
	if err != nil {
		return w, err
	}
	te, err := toLSB("I034/100 theta end", thetaEnd, ThetaLSB, 0, 0xFFFF)
	if err != nil {
		return w, err
	}

	w.RhoStart = uint16(rs)
	w.RhoEnd = uint16(re)
	w.ThetaStart = uint16(ts)
	w.ThetaEnd = uint16(te)
	return w, nil
}

// Rho returns the range bounds in NM
func (w GenericPolarWindow) Rho() (start, end float64) {
	return float64(w.RhoStart) * RhoLSB, float64(w.RhoEnd) * RhoLSB
}

// Theta returns the azimuth bounds in degrees
func (w GenericPolarWindow) Theta() (start, end float64) {
	return float64(w.ThetaStart) * ThetaLSB, float64(w.ThetaEnd) * ThetaLSB
}

// WireSize returns the encoded length
func (w GenericPolarWindow) WireSize() int { return GenericPolarWindowSize }

// MarshalWire encodes rho start, rho end, theta start, theta end
func (w GenericPolarWindow) MarshalWire() ([]byte, error) {
	b := make([]byte, GenericPolarWindowSize)
	binary.BigEndian.PutUint16(b[0:2], w.RhoStart)
	binary.BigEndian.PutUint16(b[2:4], w.RhoEnd)
	binary.BigEndian.PutUint16(b[4:6], w.ThetaStart)
	binary.BigEndian.PutUint16(b[6:8], w.ThetaEnd)
	return b, nil
}

// UnmarshalWire decodes the four window bounds
func (w *GenericPolarWindow) UnmarshalWire(b []byte) error {
	if err := checkSize("I034/100", b, GenericPolarWindowSize); err != nil {
		return err
	}
	w.RhoStart = binary.BigEndian.Uint16(b[0:2])
	w.RhoEnd = binary.BigEndian.Uint16(b[2:4])
	w.ThetaStart = binary.BigEndian.Uint16(b[4:6])
	w.ThetaEnd = binary.BigEndian.Uint16(b[6:8])
	return nil
}

// PositionSource is I034/120, the WGS-84 position of the radar. Latitude and
// Longitude hold signed 24-bit counts of 180/2^23 degrees.
type PositionSource struct {
	Height    int16
	Latitude  int32
	Longitude int32
}

// NewPositionSource builds a position from metres and degrees, truncating
func NewPositionSource(height, latitude, longitude float64) (PositionSource, error) {
	var p PositionSource

	h, err := toLSB("I034/120 height", height, HeightLSB, -1<<15, 1<<15-1)
	if err != nil {
		return p, err
	}
	if latitude < -90 || latitude > 90 {
		return p, fmt.Errorf("%w: I034/120 latitude %v", ErrValueRange, latitude)
	}
	lat, err := toLSB("I034/120 latitude", latitude, LatLonLSB, minInt24, maxInt24)
	if err != nil {
		return p, err
	}
	lon, err := toLSB("I034/120 longitude", longitude, LatLonLSB, minInt24, maxInt24)
	if err != nil {
		return p, err
	}

	p.Height = int16(h)
	p.Latitude = int32(lat)
	p.Longitude = int32(lon)
	return p, nil
}

// HeightMeters returns the height of the source
func (p PositionSource) HeightMeters() float64 {
	return float64(p.Height) * HeightLSB
}

// LatitudeDegrees returns the latitude
func (p PositionSource) LatitudeDegrees() float64 {
	return float64(p.Latitude) * LatLonLSB
}

// LongitudeDegrees returns the longitude
func (p PositionSource) LongitudeDegrees() float64 {
	return float64(p.Longitude) * LatLonLSB
}

// WireSize returns the encoded length
func (p PositionSource) WireSize() int { return PositionSourceSize }

// MarshalWire encodes height, latitude and longitude in two's complement
func (p PositionSource) MarshalWire() ([]byte, error) {
	if p.Latitude < minInt24 || p.Latitude > maxInt24 {
		return nil, fmt.Errorf("%w: I034/120 latitude count %d exceeds 24 bits", ErrValueRange, p.Latitude)
	}
	if p.Longitude < minInt24 || p.Longitude > maxInt24 {
		return nil, fmt.Errorf("%w: I034/120 longitude count %d exceeds 24 bits", ErrValueRange, p.Longitude)
	}

	b := make([]byte, PositionSourceSize)
	binary.BigEndian.PutUint16(b[0:2], uint16(p.Height))
	putUint24(b[2:5], uint32(p.Latitude))
	putUint24(b[5:8], uint32(p.Longitude))
	return b, nil
}

// UnmarshalWire decodes height, latitude and longitude
func (p *PositionSource) UnmarshalWire(b []byte) error {
	if err := checkSize("I034/120", b, PositionSourceSize); err != nil {
		return err
	}
	p.Height = int16(binary.BigEndian.Uint16(b[0:2]))
	p.Latitude = signExtend24(uint24(b[2:5]))
	p.Longitude = signExtend24(uint24(b[5:8]))
	return nil
}

// CollimationError is I034/090: averaged range and azimuth bias of the radar
type CollimationError struct {
	Range   int8
	Azimuth int8
}

// NewCollimationError builds the item from NM and degrees, truncating
func NewCollimationError(rangeNM, azimuth float64) (CollimationError, error) {
	var c CollimationError

	r, err := toLSB("I034/090 range", rangeNM, CollimationRangeLSB, -128, 127)
	if err != nil {
		return c, err
	}
	a, err := toLSB("I034/090 azimuth", azimuth, CollimationAzLSB, -128, 127)
	if err != nil {
		return c, err
	}

	c.Range = int8(r)
	c.Azimuth = int8(a)
	return c, nil
}

// RangeNM returns the range error
func (c CollimationError) RangeNM() float64 {
	return float64(c.Range) * CollimationRangeLSB
}

// AzimuthDegrees returns the azimuth error
func (c CollimationError) AzimuthDegrees() float64 {
	return float64(c.Azimuth) * CollimationAzLSB
}

// WireSize returns the encoded length
func (c CollimationError) WireSize() int { return CollimationErrorSize }

// MarshalWire encodes range then azimuth error
func (c CollimationError) MarshalWire() ([]byte, error) {
	return []byte{byte(c.Range), byte(c.Azimuth)}, nil
}

// UnmarshalWire decodes range then azimuth error
func (c *CollimationError) UnmarshalWire(b []byte) error {
	if err := checkSize("I034/090", b, CollimationErrorSize); err != nil {
		return err
	}
	c.Range = int8(b[0])
	c.Azimuth = int8(b[1])
	return nil
}

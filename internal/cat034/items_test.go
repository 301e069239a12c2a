package cat034

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// TestFields_WireForm checks each item against a hand-built wire image
func TestFields_WireForm(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		fresh func() Field
		wire  []byte
	}{
		{
			name:  "Data source",
			field: &DataSource{SAC: 0x7B, SIC: 0x2A},
			fresh: func() Field { return new(DataSource) },
			wire:  []byte{0x7B, 0x2A},
		},
		{
			name:  "Message type",
			field: ptr(SectorCrossing),
			fresh: func() Field { return new(MessageType) },
			wire:  []byte{0x02},
		},
		{
			name:  "Time of day",
			field: ptr(TimeOfDay(0x4E517B)),
			fresh: func() Field { return new(TimeOfDay) },
			wire:  []byte{0x4E, 0x51, 0x7B},
		},
		{
			name:  "Sector number",
			field: ptr(SectorNumber(0x40)),
			fresh: func() Field { return new(SectorNumber) },
			wire:  []byte{0x40},
		},
		{
			name:  "Antenna rotation",
			field: ptr(AntennaRotation(0x0100)),
			fresh: func() Field { return new(AntennaRotation) },
			wire:  []byte{0x01, 0x00},
		},
		{
			name:  "Polar window",
			field: &GenericPolarWindow{RhoStart: 0x0102, RhoEnd: 0x0304, ThetaStart: 0x0506, ThetaEnd: 0x0708},
			fresh: func() Field { return new(GenericPolarWindow) },
			wire:  []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		},
		{
			name:  "Position",
			field: &PositionSource{Height: 555, Latitude: 0x21FE5B, Longitude: 0x06990A},
			fresh: func() Field { return new(PositionSource) },
			wire:  []byte{0x02, 0x2B, 0x21, 0xFE, 0x5B, 0x06, 0x99, 0x0A},
		},
		{
			name:  "Position southern hemisphere",
			field: &PositionSource{Height: -12, Latitude: -1, Longitude: minInt24},
			fresh: func() Field { return new(PositionSource) },
			wire:  []byte{0xFF, 0xF4, 0xFF, 0xFF, 0xFF, 0x80, 0x00, 0x00},
		},
		{
			name:  "Collimation error",
			field: &CollimationError{Range: -2, Azimuth: 5},
			fresh: func() Field { return new(CollimationError) },
			wire:  []byte{0xFE, 0x05},
		},
		{
			name:  "Data filter",
			field: ptr(FilterJammingStrobe),
			fresh: func() Field { return new(DataFilter) },
			wire:  []byte{0x02},
		},
		{
			name:  "Message counts",
			field: &MessageCountValues{Counts: []MessageCount{{Type: CountSinglePSR, Counter: 300}, {Type: CountFilterAll, Counter: 0x7FF}}},
			fresh: func() Field { return new(MessageCountValues) },
			wire:  []byte{0x02, 0x09, 0x2C, 0x87, 0xFF},
		},
		{
			name:  "Explicit field",
			field: &ExplicitField{Data: []byte{0xAA, 0xBB}},
			fresh: func() Field { return new(ExplicitField) },
			wire:  []byte{0x03, 0xAA, 0xBB},
		},
		{
			name:  "System configuration COM only",
			field: &SystemConfigurationStatus{COM: ptr(ConfigCOM(0x00))},
			fresh: func() Field { return new(SystemConfigurationStatus) },
			wire:  []byte{0x80, 0x00},
		},
		{
			name: "System configuration every subfield",
			field: &SystemConfigurationStatus{
				COM: ptr(ConfigCOM(0x82)),
				PSR: ptr(ConfigRadar(0x40)),
				SSR: ptr(ConfigRadar(0x90)),
				MDS: ptr(ConfigMDS(0xA080)),
			},
			fresh: func() Field { return new(SystemConfigurationStatus) },
			wire:  []byte{0x9C, 0x82, 0x40, 0x90, 0xA0, 0x80},
		},
		{
			name:  "System processing PSR and MDS",
			field: &SystemProcessingMode{PSR: ptr(ProcessingPSR(0xA4)), MDS: ptr(ProcessingMDS(0x30))},
			fresh: func() Field { return new(SystemProcessingMode) },
			wire:  []byte{0x14, 0xA4, 0x30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, err := tt.field.MarshalWire()
			require.NoError(t, err)
			assert.Equal(t, tt.wire, wire)
			assert.Equal(t, len(tt.wire), tt.field.WireSize())

			decoded := tt.fresh()
			require.NoError(t, decoded.UnmarshalWire(wire))

			again, err := decoded.MarshalWire()
			require.NoError(t, err)
			assert.Equal(t, tt.wire, again)
		})
	}
}

func TestFields_WrongSliceLength(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		input []byte
	}{
		{"Data source short", new(DataSource), []byte{0x01}},
		{"Data source long", new(DataSource), []byte{0x01, 0x02, 0x03}},
		{"Message type empty", new(MessageType), []byte{}},
		{"Time of day short", new(TimeOfDay), []byte{0x01, 0x02}},
		{"Sector number long", new(SectorNumber), []byte{0x01, 0x02}},
		{"Antenna rotation short", new(AntennaRotation), []byte{0x01}},
		{"Polar window short", new(GenericPolarWindow), make([]byte, 7)},
		{"Position long", new(PositionSource), make([]byte, 9)},
		{"Collimation short", new(CollimationError), []byte{0x01}},
		{"Data filter empty", new(DataFilter), nil},
		{"Message counts truncated", new(MessageCountValues), []byte{0x02, 0x00, 0x01}},
		{"Explicit zero length", new(ExplicitField), []byte{0x00}},
		{"Explicit truncated", new(ExplicitField), []byte{0x04, 0x01}},
		{"Configuration missing COM", new(SystemConfigurationStatus), []byte{0x80}},
		{"Configuration primary FX", new(SystemConfigurationStatus), []byte{0x81, 0x00, 0x00}},
		{"Processing trailing byte", new(SystemProcessingMode), []byte{0x80, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.field.UnmarshalWire(tt.input), ErrSizeInvalid)
		})
	}
}

func TestSystemConfigurationStatus_Flags(t *testing.T) {
	var s SystemConfigurationStatus
	require.NoError(t, s.UnmarshalWire([]byte{0x9C, 0x82, 0x40, 0x90, 0xA0, 0x80}))

	require.NotNil(t, s.COM)
	assert.True(t, s.COM.NoGo())
	assert.True(t, s.COM.TSV())
	assert.False(t, s.COM.RDPC())

	require.NotNil(t, s.PSR)
	assert.Equal(t, uint8(0), s.PSR.Antenna())
	assert.Equal(t, uint8(2), s.PSR.Channels())

	require.NotNil(t, s.SSR)
	assert.Equal(t, uint8(1), s.SSR.Antenna())
	assert.True(t, s.SSR.Overload())

	require.NotNil(t, s.MDS)
	assert.Equal(t, uint8(1), s.MDS.Antenna())
	assert.Equal(t, uint8(1), s.MDS.Channels())
	assert.True(t, s.MDS.OverloadDLF())
	assert.False(t, s.MDS.SCF())
}

func TestSystemProcessingMode_Flags(t *testing.T) {
	var s SystemProcessingMode
	require.NoError(t, s.UnmarshalWire([]byte{0x9C, 0x5A, 0xA4, 0x60, 0x30}))

	assert.Equal(t, uint8(5), s.COM.ReductionRDP())
	assert.Equal(t, uint8(5), s.COM.ReductionXMT())
	assert.Equal(t, uint8(1), s.PSR.Polarization())
	assert.Equal(t, uint8(2), s.PSR.ReductionRadar())
	assert.Equal(t, uint8(1), s.PSR.STC())
	assert.Equal(t, uint8(3), s.SSR.ReductionRadar())
	assert.Equal(t, uint8(1), s.MDS.ReductionRadar())
	assert.True(t, s.MDS.Clustering())
}

// TestScaledFields_WithinOneLSB covers the physical constructors
func TestScaledFields_WithinOneLSB(t *testing.T) {
	t.Run("Time of day", func(t *testing.T) {
		for _, v := range []float64{0, 3.0, 12345.6, 40098.96, 86399.99} {
			tod, err := TimeOfDayFromSeconds(v)
			require.NoError(t, err)
			assert.InDelta(t, v, tod.Seconds(), TimeLSB)
			assert.LessOrEqual(t, tod.Seconds(), v)
		}
	})

	t.Run("Sector number", func(t *testing.T) {
		for _, v := range []float64{0, 3.0, 90, 180.7, 359.9} {
			s, err := SectorNumberFromDegrees(v)
			require.NoError(t, err)
			assert.Less(t, math.Abs(s.Degrees()-v), SectorLSB)
		}
	})

	t.Run("Antenna rotation", func(t *testing.T) {
		for _, v := range []float64{0, 2.0, 5.2, 511.99} {
			a, err := AntennaRotationFromSeconds(v)
			require.NoError(t, err)
			assert.Less(t, math.Abs(a.Seconds()-v), TimeLSB)
		}
	})

	t.Run("Polar window", func(t *testing.T) {
		w, err := NewGenericPolarWindow(0.1, 123.4, 0.1, 12.34)
		require.NoError(t, err)
		rs, re := w.Rho()
		ts, te := w.Theta()
		assert.Less(t, math.Abs(rs-0.1), RhoLSB)
		assert.Less(t, math.Abs(re-123.4), RhoLSB)
		assert.Less(t, math.Abs(ts-0.1), ThetaLSB)
		assert.Less(t, math.Abs(te-12.34), ThetaLSB)
	})

	t.Run("Position", func(t *testing.T) {
		p, err := NewPositionSource(555, 47.8034663200378, 9.27816867828369)
		require.NoError(t, err)
		assert.Equal(t, int16(555), p.Height)
		assert.Less(t, math.Abs(p.LatitudeDegrees()-47.8034663200378), LatLonLSB)
		assert.Less(t, math.Abs(p.LongitudeDegrees()-9.27816867828369), LatLonLSB)

		south, err := NewPositionSource(-10.5, -33.9, -151.2)
		require.NoError(t, err)
		assert.Equal(t, int16(-10), south.Height)
		assert.Less(t, math.Abs(south.LatitudeDegrees()+33.9), LatLonLSB)
		assert.GreaterOrEqual(t, south.LongitudeDegrees(), -151.2)
	})

	t.Run("Collimation error", func(t *testing.T) {
		c, err := NewCollimationError(-0.5, 1.0)
		require.NoError(t, err)
		assert.Equal(t, int8(-64), c.Range)
		assert.InDelta(t, -0.5, c.RangeNM(), CollimationRangeLSB)
		assert.Less(t, math.Abs(c.AzimuthDegrees()-1.0), CollimationAzLSB)
	})
}

func TestScaledFields_ExactRoundTrip(t *testing.T) {
	// Every LSB is a dyadic fraction, so count*lsb/lsb is exact
	for _, count := range []int32{minInt24, -2227803, -1, 0, 1, 2227803, maxInt24} {
		p, err := NewPositionSource(0, 0, float64(count)*LatLonLSB)
		require.NoError(t, err)
		assert.Equal(t, count, p.Longitude)
	}

	for count := 0; count <= 0xFF; count++ {
		s, err := SectorNumberFromDegrees(SectorNumber(count).Degrees())
		require.NoError(t, err)
		assert.Equal(t, SectorNumber(count), s)
	}
}

func TestScaledFields_OutOfRange(t *testing.T) {
	_, err := TimeOfDayFromSeconds(-1)
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = TimeOfDayFromSeconds(math.NaN())
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = SectorNumberFromDegrees(360)
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = AntennaRotationFromSeconds(512)
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = NewPositionSource(0, 91, 0)
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = NewPositionSource(40000, 0, 0)
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = NewGenericPolarWindow(256, 0, 0, 0)
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = TimeOfDay(1 << 24).MarshalWire()
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = PositionSource{Latitude: maxInt24 + 1}.MarshalWire()
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = MessageCountValues{Counts: []MessageCount{{Type: 32}}}.MarshalWire()
	assert.ErrorIs(t, err, ErrValueRange)

	_, err = ExplicitField{Data: make([]byte, 255)}.MarshalWire()
	assert.ErrorIs(t, err, ErrValueRange)
}

func TestTimeOfDay_Duration(t *testing.T) {
	tod := TimeOfDay(0x4E517B)
	assert.Equal(t, 40098.9609375, tod.Seconds())
	assert.Equal(t, 11*time.Hour+8*time.Minute+18*time.Second+960937500*time.Nanosecond, tod.Duration())
}

func TestMessageType_Names(t *testing.T) {
	assert.Equal(t, "north_marker", NorthMarker.String())
	assert.Equal(t, "message_type_9", MessageType(9).String())
	assert.True(t, ModeSJammingStrobe.Known())
	assert.False(t, MessageType(0).Known())

	m, ok := ParseMessageType("solar_storm")
	assert.True(t, ok)
	assert.Equal(t, SolarStorm, m)

	_, ok = ParseMessageType("unknown")
	assert.False(t, ok)
}

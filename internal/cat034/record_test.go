package cat034

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullRecord sets every item of the UAP
func fullRecord() *Record {
	return &Record{
		DataSource:      &DataSource{SAC: 26, SIC: 42},
		MessageType:     ptr(JammingStrobe),
		TimeOfDay:       ptr(TimeOfDay(1580236)),
		SectorNumber:    ptr(SectorNumber(17)),
		AntennaRotation: ptr(AntennaRotation(512)),
		SystemConfiguration: &SystemConfigurationStatus{
			COM: ptr(ConfigCOM(0x04)),
			MDS: ptr(ConfigMDS(0x8100)),
		},
		SystemProcessing: &SystemProcessingMode{
			SSR: ptr(ProcessingSSR(0x40)),
		},
		MessageCount: &MessageCountValues{Counts: []MessageCount{{Type: CountSingleSSR, Counter: 12}}},
		PolarWindow:  &GenericPolarWindow{RhoStart: 25, RhoEnd: 31590, ThetaStart: 18, ThetaEnd: 2246},
		DataFilter:   ptr(FilterWeather),
		Position:     &PositionSource{Height: 555, Latitude: 0x21FE5B, Longitude: 0x06990A},
		CollimationError: &CollimationError{
			Range:   -3,
			Azimuth: 7,
		},
		ReservedExpansion: &ExplicitField{Data: []byte{0x01, 0x02}},
		SpecialPurpose:    &ExplicitField{},
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		record *Record
	}{
		{
			name:   "Empty record",
			record: &Record{},
		},
		{
			name: "North marker",
			record: &Record{
				DataSource:  &DataSource{SAC: 0x7B, SIC: 0x2A},
				MessageType: ptr(NorthMarker),
				TimeOfDay:   ptr(TimeOfDay(0x4E517B)),
			},
		},
		{
			name: "Sector crossing",
			record: &Record{
				DataSource:   &DataSource{SAC: 1, SIC: 2},
				MessageType:  ptr(SectorCrossing),
				TimeOfDay:    ptr(TimeOfDay(100)),
				SectorNumber: ptr(SectorNumber(64)),
			},
		},
		{
			name: "Second octet only",
			record: &Record{
				Position: &PositionSource{Height: -5, Latitude: -100, Longitude: 100},
			},
		},
		{
			name:   "Every item",
			record: fullRecord(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := tt.record.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.record.EncodedLength(), len(encoded))

			decoded, n, err := DecodeRecord(encoded)
			require.NoError(t, err)
			assert.Equal(t, len(encoded), n)
			assert.Equal(t, tt.record, decoded)

			again, err := decoded.Encode()
			require.NoError(t, err)
			assert.Equal(t, encoded, again)
		})
	}
}

func TestRecord_FSPECMatchesItems(t *testing.T) {
	encoded, err := fullRecord().Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFE}, encoded[:2])

	inputs := [][]byte{
		encoded,
		{0xE0, 0x01, 0x02, 0x01, 0x00, 0x00, 0x10},
		{0x01, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{0x00},
	}

	for _, input := range inputs {
		decoded, _, err := DecodeRecord(input)
		require.NoError(t, err)

		chain, err := ReadFSPEC(input, MaxFSPECOctets)
		require.NoError(t, err)

		for frn := 1; frn <= 14; frn++ {
			assert.Equal(t, FRNPresent(chain, frn), decoded.Has(frn), "FRN %d (%s)", frn, ItemID(frn))
		}
	}
}

func TestRecord_FieldOrderIsFRNOrder(t *testing.T) {
	r := &Record{
		Position:    &PositionSource{Height: 1},
		TimeOfDay:   ptr(TimeOfDay(2)),
		DataSource:  &DataSource{SAC: 3, SIC: 4},
		MessageType: ptr(NorthMarker),
	}

	encoded, err := r.Encode()
	require.NoError(t, err)

	expected := []byte{
		0xE1, 0x10, // FSPEC: FRN 1, 2, 3, FX; FRN 11
		0x03, 0x04, // I034/010
		0x01,             // I034/000
		0x00, 0x00, 0x02, // I034/030
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // I034/120
	}
	assert.Equal(t, expected, encoded)
	assert.Equal(t, []int{1, 2, 3, 11}, r.PresentFRNs())
}

func TestDecodeRecord_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{
			name:  "Empty",
			input: []byte{},
		},
		{
			name:  "FSPEC with FX everywhere",
			input: []byte{0xFF, 0xFF, 0xFF, 0xFF},
		},
		{
			name:  "Data source truncated",
			input: []byte{0x80, 0x01},
		},
		{
			name:  "Position truncated",
			input: []byte{0x01, 0x10, 0x00, 0x00, 0x00},
		},
		{
			name:  "Compound subfield missing",
			input: []byte{0x04, 0x9C, 0x00},
		},
		{
			name:  "Message counts overrun",
			input: []byte{0x01, 0x80, 0x05, 0x00, 0x00},
		},
		{
			name:  "Special purpose overrun",
			input: []byte{0x01, 0x02, 0x09, 0x00},
		},
		{
			name:  "Item present but no bytes",
			input: []byte{0x20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, n, err := DecodeRecord(tt.input)
			assert.ErrorIs(t, err, ErrSizeInvalid)
			assert.Nil(t, r)
			assert.Zero(t, n)
		})
	}
}

func TestDecodeRecord_ConsumesOnlyItsBytes(t *testing.T) {
	input := []byte{0xC0, 0x01, 0x02, 0x01, 0xAA, 0xBB}

	r, n, err := DecodeRecord(input)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, &DataSource{SAC: 1, SIC: 2}, r.DataSource)
	assert.Equal(t, NorthMarker, *r.MessageType)
}

func TestRecord_EncodeRejectsUnrepresentableValues(t *testing.T) {
	r := &Record{
		DataSource: &DataSource{SAC: 1, SIC: 1},
		TimeOfDay:  ptr(TimeOfDay(1 << 24)),
	}

	encoded, err := r.Encode()
	assert.ErrorIs(t, err, ErrValueRange)
	assert.Nil(t, encoded)
}

func TestItemID(t *testing.T) {
	assert.Equal(t, "I034/010", ItemID(FRNDataSource))
	assert.Equal(t, "I034/120", ItemID(FRNPosition))
	assert.Equal(t, "SP", ItemID(FRNSpecialPurpose))
	assert.Equal(t, "", ItemID(0))
	assert.Equal(t, "", ItemID(15))
}

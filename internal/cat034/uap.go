package cat034

// Field Reference Numbers of the CAT034 standard UAP
const (
	FRNDataSource          = 1  // I034/010
	FRNMessageType         = 2  // I034/000
	FRNTimeOfDay           = 3  // I034/030
	FRNSectorNumber        = 4  // I034/020
	FRNAntennaRotation     = 5  // I034/041
	FRNSystemConfiguration = 6  // I034/050
	FRNSystemProcessing    = 7  // I034/060
	FRNMessageCount        = 8  // I034/070
	FRNPolarWindow         = 9  // I034/100
	FRNDataFilter          = 10 // I034/110
	FRNPosition            = 11 // I034/120
	FRNCollimationError    = 12 // I034/090
	FRNReservedExpansion   = 13 // RE
	FRNSpecialPurpose      = 14 // SP
)

// uapEntry binds one FRN to its item: how long the item is at the cursor,
// how to read it from a Record and how to store a decoded value.
type uapEntry struct {
	frn    int
	item   string
	size   func(b []byte) (int, error)
	get    func(r *Record) Field
	decode func(r *Record, b []byte) error
}

func fixedSize(n int) func([]byte) (int, error) {
	return func([]byte) (int, error) { return n, nil }
}

// uap lists the items in FRN order; encode and decode both iterate it
var uap = []uapEntry{
	{
		frn: FRNDataSource, item: "I034/010", size: fixedSize(DataSourceSize),
		get: func(r *Record) Field {
			if r.DataSource == nil {
				return nil
			}
			return r.DataSource
		},
		decode: func(r *Record, b []byte) error {
			r.DataSource = new(DataSource)
			return r.DataSource.UnmarshalWire(b)
		},
	},
	{
		frn: FRNMessageType, item: "I034/000", size: fixedSize(MessageTypeSize),
		get: func(r *Record) Field {
			if r.MessageType == nil {
				return nil
			}
			return r.MessageType
		},
		decode: func(r *Record, b []byte) error {
			r.MessageType = new(MessageType)
			return r.MessageType.UnmarshalWire(b)
		},
	},
	{
		frn: FRNTimeOfDay, item: "I034/030", size: fixedSize(TimeOfDaySize),
		get: func(r *Record) Field {
			if r.TimeOfDay == nil {
				return nil
			}
			return r.TimeOfDay
		},
		decode: func(r *Record, b []byte) error {
			r.TimeOfDay = new(TimeOfDay)
			return r.TimeOfDay.UnmarshalWire(b)
		},
	},
	{
		frn: FRNSectorNumber, item: "I034/020", size: fixedSize(SectorNumberSize),
		get: func(r *Record) Field {
			if r.SectorNumber == nil {
				return nil
			}
			return r.SectorNumber
		},
		decode: func(r *Record, b []byte) error {
			r.SectorNumber = new(SectorNumber)
			return r.SectorNumber.UnmarshalWire(b)
		},
	},
	{
		frn: FRNAntennaRotation, item: "I034/041", size: fixedSize(AntennaRotationSize),
		get: func(r *Record) Field {
			if r.AntennaRotation == nil {
				return nil
			}
			return r.AntennaRotation
		},
		decode: func(r *Record, b []byte) error {
			r.AntennaRotation = new(AntennaRotation)
			return r.AntennaRotation.UnmarshalWire(b)
		},
	},
	{
		frn: FRNSystemConfiguration, item: "I034/050",
		size: func(b []byte) (int, error) { return compoundSize("I034/050", b, configurationLayout) },
		get: func(r *Record) Field {
			if r.SystemConfiguration == nil {
				return nil
			}
			return r.SystemConfiguration
		},
		decode: func(r *Record, b []byte) error {
			r.SystemConfiguration = new(SystemConfigurationStatus)
			return r.SystemConfiguration.UnmarshalWire(b)
		},
	},
	{
		frn: FRNSystemProcessing, item: "I034/060",
		size: func(b []byte) (int, error) { return compoundSize("I034/060", b, processingLayout) },
		get: func(r *Record) Field {
			if r.SystemProcessing == nil {
				return nil
			}
			return r.SystemProcessing
		},
		decode: func(r *Record, b []byte) error {
			r.SystemProcessing = new(SystemProcessingMode)
			return r.SystemProcessing.UnmarshalWire(b)
		},
	},
	{
		frn: FRNMessageCount, item: "I034/070", size: messageCountsSize,
		get: func(r *Record) Field {
			if r.MessageCount == nil {
				return nil
			}
			return r.MessageCount
		},
		decode: func(r *Record, b []byte) error {
			r.MessageCount = new(MessageCountValues)
			return r.MessageCount.UnmarshalWire(b)
		},
	},
	{
		frn: FRNPolarWindow, item: "I034/100", size: fixedSize(GenericPolarWindowSize),
		get: func(r *Record) Field {
			if r.PolarWindow == nil {
				return nil
			}
			return r.PolarWindow
		},
		decode: func(r *Record, b []byte) error {
			r.PolarWindow = new(GenericPolarWindow)
			return r.PolarWindow.UnmarshalWire(b)
		},
	},
	{
		frn: FRNDataFilter, item: "I034/110", size: fixedSize(DataFilterSize),
		get: func(r *Record) Field {
			if r.DataFilter == nil {
				return nil
			}
			return r.DataFilter
		},
		decode: func(r *Record, b []byte) error {
			r.DataFilter = new(DataFilter)
			return r.DataFilter.UnmarshalWire(b)
		},
	},
	{
		frn: FRNPosition, item: "I034/120", size: fixedSize(PositionSourceSize),
		get: func(r *Record) Field {
			if r.Position == nil {
				return nil
			}
			return r.Position
		},
		decode: func(r *Record, b []byte) error {
			r.Position = new(PositionSource)
			return r.Position.UnmarshalWire(b)
		},
	},
	{
		frn: FRNCollimationError, item: "I034/090", size: fixedSize(CollimationErrorSize),
		get: func(r *Record) Field {
			if r.CollimationError == nil {
				return nil
			}
			return r.CollimationError
		},
		decode: func(r *Record, b []byte) error {
			r.CollimationError = new(CollimationError)
			return r.CollimationError.UnmarshalWire(b)
		},
	},
	{
		frn: FRNReservedExpansion, item: "RE", size: explicitSize,
		get: func(r *Record) Field {
			if r.ReservedExpansion == nil {
				return nil
			}
			return r.ReservedExpansion
		},
		decode: func(r *Record, b []byte) error {
			r.ReservedExpansion = new(ExplicitField)
			return r.ReservedExpansion.UnmarshalWire(b)
		},
	},
	{
		frn: FRNSpecialPurpose, item: "SP", size: explicitSize,
		get: func(r *Record) Field {
			if r.SpecialPurpose == nil {
				return nil
			}
			return r.SpecialPurpose
		},
		decode: func(r *Record, b []byte) error {
			r.SpecialPurpose = new(ExplicitField)
			return r.SpecialPurpose.UnmarshalWire(b)
		},
	},
}

// ItemID returns the data item identifier for an FRN, e.g. "I034/030"
func ItemID(frn int) string {
	if frn < 1 || frn > len(uap) {
		return ""
	}
	return uap[frn-1].item
}

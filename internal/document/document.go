// Package document is the human-facing view of CAT034 messages: physical
// units and named enums, serialised as JSON or YAML.
package document

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"asterix034/internal/cat034"
)

// Document is one data block
type Document struct {
	Category uint8    `json:"category" yaml:"category"`
	Length   int      `json:"length,omitempty" yaml:"length,omitempty"`
	Records  []Record `json:"records" yaml:"records"`
}

// Record is one data record. Absent items are omitted.
type Record struct {
	DataSource          *DataSource          `json:"data_source,omitempty" yaml:"data_source,omitempty"`
	MessageType         string               `json:"message_type,omitempty" yaml:"message_type,omitempty"`
	TimeOfDay           *float64             `json:"time_of_day,omitempty" yaml:"time_of_day,omitempty"`
	SectorNumber        *float64             `json:"sector_deg,omitempty" yaml:"sector_deg,omitempty"`
	AntennaRotation     *float64             `json:"antenna_rotation_s,omitempty" yaml:"antenna_rotation_s,omitempty"`
	SystemConfiguration *SystemConfiguration `json:"system_configuration,omitempty" yaml:"system_configuration,omitempty"`
	SystemProcessing    *SystemProcessing    `json:"system_processing,omitempty" yaml:"system_processing,omitempty"`
	MessageCount        *MessageCount        `json:"message_count,omitempty" yaml:"message_count,omitempty"`
	PolarWindow         *PolarWindow         `json:"polar_window,omitempty" yaml:"polar_window,omitempty"`
	DataFilter          *uint8               `json:"data_filter,omitempty" yaml:"data_filter,omitempty"`
	Position            *Position            `json:"position,omitempty" yaml:"position,omitempty"`
	CollimationError    *Collimation         `json:"collimation_error,omitempty" yaml:"collimation_error,omitempty"`
	ReservedExpansion   *string              `json:"re,omitempty" yaml:"re,omitempty"`
	SpecialPurpose      *string              `json:"sp,omitempty" yaml:"sp,omitempty"`
}

// DataSource identifies the radar
type DataSource struct {
	SAC uint8 `json:"sac" yaml:"sac"`
	SIC uint8 `json:"sic" yaml:"sic"`
}

// SystemConfiguration holds the raw subfield octets of I034/050
type SystemConfiguration struct {
	COM *uint8  `json:"com,omitempty" yaml:"com,omitempty"`
	PSR *uint8  `json:"psr,omitempty" yaml:"psr,omitempty"`
	SSR *uint8  `json:"ssr,omitempty" yaml:"ssr,omitempty"`
	MDS *uint16 `json:"mds,omitempty" yaml:"mds,omitempty"`
	// Decoded flags, output only
	NoGo bool `json:"nogo,omitempty" yaml:"nogo,omitempty"`
}

// SystemProcessing holds the raw subfield octets of I034/060
type SystemProcessing struct {
	COM *uint8 `json:"com,omitempty" yaml:"com,omitempty"`
	PSR *uint8 `json:"psr,omitempty" yaml:"psr,omitempty"`
	SSR *uint8 `json:"ssr,omitempty" yaml:"ssr,omitempty"`
	MDS *uint8 `json:"mds,omitempty" yaml:"mds,omitempty"`
}

// MessageCount is I034/070
type MessageCount struct {
	Counts []Count `json:"counts" yaml:"counts"`
}

// Count is one counter of I034/070
type Count struct {
	Type    uint8  `json:"type" yaml:"type"`
	Counter uint16 `json:"counter" yaml:"counter"`
}

// PolarWindow is I034/100 in NM and degrees
type PolarWindow struct {
	RhoStart   float64 `json:"rho_start_nm" yaml:"rho_start_nm"`
	RhoEnd     float64 `json:"rho_end_nm" yaml:"rho_end_nm"`
	ThetaStart float64 `json:"theta_start_deg" yaml:"theta_start_deg"`
	ThetaEnd   float64 `json:"theta_end_deg" yaml:"theta_end_deg"`
}

// Position is I034/120 in metres and degrees
type Position struct {
	Height    float64 `json:"height_m" yaml:"height_m"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Collimation is I034/090 in NM and degrees
type Collimation struct {
	Range   float64 `json:"range_nm" yaml:"range_nm"`
	Azimuth float64 `json:"azimuth_deg" yaml:"azimuth_deg"`
}

// FromMessage renders a decoded message
func FromMessage(m *cat034.Message) *Document {
	doc := &Document{
		Category: m.Category,
		Records:  make([]Record, 0, len(m.Records)),
	}
	length := cat034.HeaderLength
	for _, r := range m.Records {
		doc.Records = append(doc.Records, FromRecord(r))
		length += r.EncodedLength()
	}
	doc.Length = length
	return doc
}

// FromRecord renders one record
func FromRecord(r *cat034.Record) Record {
	var out Record

	if r.DataSource != nil {
		out.DataSource = &DataSource{SAC: r.DataSource.SAC, SIC: r.DataSource.SIC}
	}
	if r.MessageType != nil {
		out.MessageType = r.MessageType.String()
	}
	if r.TimeOfDay != nil {
		out.TimeOfDay = float(r.TimeOfDay.Seconds())
	}
	if r.SectorNumber != nil {
		out.SectorNumber = float(r.SectorNumber.Degrees())
	}
	if r.AntennaRotation != nil {
		out.AntennaRotation = float(r.AntennaRotation.Seconds())
	}
	if c := r.SystemConfiguration; c != nil {
		sc := &SystemConfiguration{}
		if c.COM != nil {
			sc.COM = u8(uint8(*c.COM))
			sc.NoGo = c.COM.NoGo()
		}
		if c.PSR != nil {
			sc.PSR = u8(uint8(*c.PSR))
		}
		if c.SSR != nil {
			sc.SSR = u8(uint8(*c.SSR))
		}
		if c.MDS != nil {
			v := uint16(*c.MDS)
			sc.MDS = &v
		}
		out.SystemConfiguration = sc
	}
	if p := r.SystemProcessing; p != nil {
		sp := &SystemProcessing{}
		if p.COM != nil {
			sp.COM = u8(uint8(*p.COM))
		}
		if p.PSR != nil {
			sp.PSR = u8(uint8(*p.PSR))
		}
		if p.SSR != nil {
			sp.SSR = u8(uint8(*p.SSR))
		}
		if p.MDS != nil {
			sp.MDS = u8(uint8(*p.MDS))
		}
		out.SystemProcessing = sp
	}
	if r.MessageCount != nil {
		mc := &MessageCount{Counts: make([]Count, 0, len(r.MessageCount.Counts))}
		for _, c := range r.MessageCount.Counts {
			mc.Counts = append(mc.Counts, Count{Type: c.Type, Counter: c.Counter})
		}
		out.MessageCount = mc
	}
	if w := r.PolarWindow; w != nil {
		pw := &PolarWindow{}
		pw.RhoStart, pw.RhoEnd = w.Rho()
		pw.ThetaStart, pw.ThetaEnd = w.Theta()
		out.PolarWindow = pw
	}
	if r.DataFilter != nil {
		out.DataFilter = u8(uint8(*r.DataFilter))
	}
	if p := r.Position; p != nil {
		out.Position = &Position{
			Height:    p.HeightMeters(),
			Latitude:  p.LatitudeDegrees(),
			Longitude: p.LongitudeDegrees(),
		}
	}
	if c := r.CollimationError; c != nil {
		out.CollimationError = &Collimation{Range: c.RangeNM(), Azimuth: c.AzimuthDegrees()}
	}
	if r.ReservedExpansion != nil {
		s := hex.EncodeToString(r.ReservedExpansion.Data)
		out.ReservedExpansion = &s
	}
	if r.SpecialPurpose != nil {
		s := hex.EncodeToString(r.SpecialPurpose.Data)
		out.SpecialPurpose = &s
	}

	return out
}

// Message converts the document back into a CAT034 message. Physical values
// are truncated to their wire resolution.
func (d *Document) Message() (*cat034.Message, error) {
	m := &cat034.Message{Category: d.Category}
	for i := range d.Records {
		r, err := d.Records[i].Record()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		m.Records = append(m.Records, r)
	}
	return m, nil
}

// Record converts one document record into a CAT034 record
func (rec *Record) Record() (*cat034.Record, error) {
	r := &cat034.Record{}

	if rec.DataSource != nil {
		r.DataSource = &cat034.DataSource{SAC: rec.DataSource.SAC, SIC: rec.DataSource.SIC}
	}
	if rec.MessageType != "" {
		mt, err := parseMessageType(rec.MessageType)
		if err != nil {
			return nil, err
		}
		r.MessageType = &mt
	}
	if rec.TimeOfDay != nil {
		tod, err := cat034.TimeOfDayFromSeconds(*rec.TimeOfDay)
		if err != nil {
			return nil, err
		}
		r.TimeOfDay = &tod
	}
	if rec.SectorNumber != nil {
		sn, err := cat034.SectorNumberFromDegrees(*rec.SectorNumber)
		if err != nil {
			return nil, err
		}
		r.SectorNumber = &sn
	}
	if rec.AntennaRotation != nil {
		ar, err := cat034.AntennaRotationFromSeconds(*rec.AntennaRotation)
		if err != nil {
			return nil, err
		}
		r.AntennaRotation = &ar
	}
	if c := rec.SystemConfiguration; c != nil {
		sc := &cat034.SystemConfigurationStatus{}
		if c.COM != nil {
			v := cat034.ConfigCOM(*c.COM)
			sc.COM = &v
		}
		if c.PSR != nil {
			v := cat034.ConfigRadar(*c.PSR)
			sc.PSR = &v
		}
		if c.SSR != nil {
			v := cat034.ConfigRadar(*c.SSR)
			sc.SSR = &v
		}
		if c.MDS != nil {
			v := cat034.ConfigMDS(*c.MDS)
			sc.MDS = &v
		}
		r.SystemConfiguration = sc
	}
	if p := rec.SystemProcessing; p != nil {
		sp := &cat034.SystemProcessingMode{}
		if p.COM != nil {
			v := cat034.ProcessingCOM(*p.COM)
			sp.COM = &v
		}
		if p.PSR != nil {
			v := cat034.ProcessingPSR(*p.PSR)
			sp.PSR = &v
		}
		if p.SSR != nil {
			v := cat034.ProcessingSSR(*p.SSR)
			sp.SSR = &v
		}
		if p.MDS != nil {
			v := cat034.ProcessingMDS(*p.MDS)
			sp.MDS = &v
		}
		r.SystemProcessing = sp
	}
	if rec.MessageCount != nil {
		mc := &cat034.MessageCountValues{}
		for _, c := range rec.MessageCount.Counts {
			mc.Counts = append(mc.Counts, cat034.MessageCount{Type: c.Type, Counter: c.Counter})
		}
		r.MessageCount = mc
	}
	if w := rec.PolarWindow; w != nil {
		pw, err := cat034.NewGenericPolarWindow(w.RhoStart, w.RhoEnd, w.ThetaStart, w.ThetaEnd)
		if err != nil {
			return nil, err
		}
		r.PolarWindow = &pw
	}
	if rec.DataFilter != nil {
		df := cat034.DataFilter(*rec.DataFilter)
		r.DataFilter = &df
	}
	if p := rec.Position; p != nil {
		pos, err := cat034.NewPositionSource(p.Height, p.Latitude, p.Longitude)
		if err != nil {
			return nil, err
		}
		r.Position = &pos
	}
	if c := rec.CollimationError; c != nil {
		ce, err := cat034.NewCollimationError(c.Range, c.Azimuth)
		if err != nil {
			return nil, err
		}
		r.CollimationError = &ce
	}
	if rec.ReservedExpansion != nil {
		f, err := explicit("re", *rec.ReservedExpansion)
		if err != nil {
			return nil, err
		}
		r.ReservedExpansion = f
	}
	if rec.SpecialPurpose != nil {
		f, err := explicit("sp", *rec.SpecialPurpose)
		if err != nil {
			return nil, err
		}
		r.SpecialPurpose = f
	}

	return r, nil
}

// JSON returns the document as a single line of JSON
func (d *Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}

// YAML returns the document as YAML
func (d *Document) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseYAML reads every document of a YAML stream. A document without a
// category is taken as CAT034.
func ParseYAML(r io.Reader) ([]*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var docs []*Document
	for {
		doc := &Document{}
		err := dec.Decode(doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", len(docs), err)
		}
		if doc.Category == 0 {
			doc.Category = cat034.Category
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ParseJSON reads one JSON document
func ParseJSON(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	if doc.Category == 0 {
		doc.Category = cat034.Category
	}
	return doc, nil
}

func parseMessageType(name string) (cat034.MessageType, error) {
	if mt, ok := cat034.ParseMessageType(name); ok {
		return mt, nil
	}
	var n uint8
	if _, err := fmt.Sscanf(name, "message_type_%d", &n); err == nil {
		return cat034.MessageType(n), nil
	}
	return 0, fmt.Errorf("%w: unknown message type %q", cat034.ErrValueRange, name)
}

func explicit(name, s string) (*cat034.ExplicitField, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(data) == 0 {
		data = nil
	}
	return &cat034.ExplicitField{Data: data}, nil
}

func float(v float64) *float64 { return &v }

func u8(v uint8) *uint8 { return &v }

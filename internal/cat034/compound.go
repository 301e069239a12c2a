package cat034

import (
	"encoding/binary"
	"fmt"
)

// compoundPart describes one subfield of a compound item: its presence bit
// in the primary octet and its fixed length.
type compoundPart struct {
	bit  int
	size int
}

// Subfield presence bits shared by I034/050 and I034/060
const (
	subfieldCOM = 8
	subfieldPSR = 5
	subfieldSSR = 4
	subfieldMDS = 3
)

var (
	configurationLayout = []compoundPart{{subfieldCOM, 1}, {subfieldPSR, 1}, {subfieldSSR, 1}, {subfieldMDS, 2}}
	processingLayout    = []compoundPart{{subfieldCOM, 1}, {subfieldPSR, 1}, {subfieldSSR, 1}, {subfieldMDS, 1}}
)

// compoundSize walks the primary subfield at the start of b and returns the
// length of the whole item. CAT034 defines a single primary octet.
func compoundSize(item string, b []byte, layout []compoundPart) (int, error) {
	primary, err := ReadFSPEC(b, 1)
	if err != nil {
		return 0, fmt.Errorf("%s primary subfield: %w", item, err)
	}

	size := len(primary)
	for _, p := range layout {
		if primary[0].Bit(p.bit) {
			size += p.size
		}
	}
	return size, nil
}

// splitCompound returns the subfield slices of b in layout order, nil for
// absent subfields. b must hold exactly one item.
func splitCompound(item string, b []byte, layout []compoundPart) ([][]byte, error) {
	size, err := compoundSize(item, b, layout)
	if err != nil {
		return nil, err
	}
	if err := checkSize(item, b, size); err != nil {
		return nil, err
	}

	primary := FieldSpec(b[0])
	parts := make([][]byte, len(layout))
	cursor := 1
	for i, p := range layout {
		if primary.Bit(p.bit) {
			parts[i] = b[cursor : cursor+p.size]
			cursor += p.size
		}
	}
	return parts, nil
}

// joinCompound derives the primary octet from which parts are non-nil and
// appends the parts in layout order.
func joinCompound(layout []compoundPart, parts [][]byte) []byte {
	var primary FieldSpec
	out := []byte{0}
	for i, p := range layout {
		if parts[i] == nil {
			continue
		}
		primary.SetBit(p.bit)
		out = append(out, parts[i]...)
	}
	out[0] = byte(primary)
	return out
}

func bitSet(v uint16, n int) bool {
	return v&(1<<(n-1)) != 0
}

// ConfigCOM is the common part of I034/050
type ConfigCOM uint8

// NoGo reports that the system is inhibited
func (c ConfigCOM) NoGo() bool { return bitSet(uint16(c), 8) }

// RDPC reports that RDP chain 2 is selected
func (c ConfigCOM) RDPC() bool { return bitSet(uint16(c), 7) }

// RDPR reports an RDP reset event
func (c ConfigCOM) RDPR() bool { return bitSet(uint16(c), 6) }

// OverloadRDP reports RDP overload
func (c ConfigCOM) OverloadRDP() bool { return bitSet(uint16(c), 5) }

// OverloadXMT reports transmission subsystem overload
func (c ConfigCOM) OverloadXMT() bool { return bitSet(uint16(c), 4) }

// MSC reports the monitoring system disconnected
func (c ConfigCOM) MSC() bool { return bitSet(uint16(c), 3) }

// TSV reports time source invalid
func (c ConfigCOM) TSV() bool { return bitSet(uint16(c), 2) }

// ConfigRadar is the PSR or SSR part of I034/050
type ConfigRadar uint8

// Antenna returns the selected antenna (0 = antenna 1, 1 = antenna 2)
func (c ConfigRadar) Antenna() uint8 { return uint8(c) >> 7 }

// Channels returns CH-A/B: 0 none, 1 A only, 2 B only, 3 invalid combination
func (c ConfigRadar) Channels() uint8 { return (uint8(c) >> 5) & 0x03 }

// Overload reports radar overload
func (c ConfigRadar) Overload() bool { return bitSet(uint16(c), 5) }

// MSC reports the monitoring system disconnected
func (c ConfigRadar) MSC() bool { return bitSet(uint16(c), 4) }

// ConfigMDS is the Mode S part of I034/050
type ConfigMDS uint16

// Antenna returns the selected antenna (0 = antenna 1, 1 = antenna 2)
func (c ConfigMDS) Antenna() uint8 { return uint8(c >> 15) }

// Channels returns CH-A/B: 0 none, 1 A only, 2 B only, 3 illegal
func (c ConfigMDS) Channels() uint8 { return uint8(c>>13) & 0x03 }

// OverloadSUR reports overload in the surveillance function
func (c ConfigMDS) OverloadSUR() bool { return bitSet(uint16(c), 13) }

// MSC reports the monitoring system disconnected
func (c ConfigMDS) MSC() bool { return bitSet(uint16(c), 12) }

// SCF reports channel B for the surveillance coordination function
func (c ConfigMDS) SCF() bool { return bitSet(uint16(c), 11) }

// DLF reports channel B for the data link function
func (c ConfigMDS) DLF() bool { return bitSet(uint16(c), 10) }

// OverloadSCF reports overload in the surveillance coordination function
func (c ConfigMDS) OverloadSCF() bool { return bitSet(uint16(c), 9) }

// OverloadDLF reports overload in the data link function
func (c ConfigMDS) OverloadDLF() bool { return bitSet(uint16(c), 8) }

// SystemConfigurationStatus is I034/050. The primary octet is derived from
// which subfields are set.
type SystemConfigurationStatus struct {
	COM *ConfigCOM
	PSR *ConfigRadar
	SSR *ConfigRadar
	MDS *ConfigMDS
}

func (s SystemConfigurationStatus) parts() [][]byte {
	parts := make([][]byte, len(configurationLayout))
	if s.COM != nil {
		parts[0] = []byte{byte(*s.COM)}
	}
	if s.PSR != nil {
		parts[1] = []byte{byte(*s.PSR)}
	}
	if s.SSR != nil {
		parts[2] = []byte{byte(*s.SSR)}
	}
	if s.MDS != nil {
		parts[3] = make([]byte, 2)
		binary.BigEndian.PutUint16(parts[3], uint16(*s.MDS))
	}
	return parts
}

// WireSize returns the encoded length including the primary octet
func (s SystemConfigurationStatus) WireSize() int {
	size := 1
	for _, p := range s.parts() {
		size += len(p)
	}
	return size
}

// MarshalWire encodes the primary octet and the present subfields
func (s SystemConfigurationStatus) MarshalWire() ([]byte, error) {
	return joinCompound(configurationLayout, s.parts()), nil
}

// UnmarshalWire decodes the primary octet and the subfields it announces
func (s *SystemConfigurationStatus) UnmarshalWire(b []byte) error {
	parts, err := splitCompound("I034/050", b, configurationLayout)
	if err != nil {
		return err
	}

	*s = SystemConfigurationStatus{}
	if parts[0] != nil {
		com := ConfigCOM(parts[0][0])
		s.COM = &com
	}
	if parts[1] != nil {
		psr := ConfigRadar(parts[1][0])
		s.PSR = &psr
	}
	if parts[2] != nil {
		ssr := ConfigRadar(parts[2][0])
		s.SSR = &ssr
	}
	if parts[3] != nil {
		mds := ConfigMDS(binary.BigEndian.Uint16(parts[3]))
		s.MDS = &mds
	}
	return nil
}

// ProcessingCOM is the common part of I034/060
type ProcessingCOM uint8

// ReductionRDP returns the RDP reduction step (0 = no reduction)
func (p ProcessingCOM) ReductionRDP() uint8 { return (uint8(p) >> 4) & 0x07 }

// ReductionXMT returns the transmission subsystem reduction step
func (p ProcessingCOM) ReductionXMT() uint8 { return (uint8(p) >> 1) & 0x07 }

// ProcessingPSR is the PSR part of I034/060
type ProcessingPSR uint8

// Polarization returns 0 for linear and 1 for circular polarization
func (p ProcessingPSR) Polarization() uint8 { return uint8(p) >> 7 }

// ReductionRadar returns the PSR reduction step
func (p ProcessingPSR) ReductionRadar() uint8 { return (uint8(p) >> 4) & 0x07 }

// STC returns the sensitivity time control map in use
func (p ProcessingPSR) STC() uint8 { return (uint8(p) >> 2) & 0x03 }

// ProcessingSSR is the SSR part of I034/060
type ProcessingSSR uint8

// ReductionRadar returns the SSR reduction step
func (p ProcessingSSR) ReductionRadar() uint8 { return uint8(p) >> 5 }

// ProcessingMDS is the Mode S part of I034/060
type ProcessingMDS uint8

// ReductionRadar returns the Mode S reduction step
func (p ProcessingMDS) ReductionRadar() uint8 { return uint8(p) >> 5 }

// Clustering reports autonomous (false) or not autonomous (true) cluster state
func (p ProcessingMDS) Clustering() bool { return bitSet(uint16(p), 5) }

// SystemProcessingMode is I034/060
type SystemProcessingMode struct {
	COM *ProcessingCOM
	PSR *ProcessingPSR
	SSR *ProcessingSSR
	MDS *ProcessingMDS
}

func (s SystemProcessingMode) parts() [][]byte {
	parts := make([][]byte, len(processingLayout))
	if s.COM != nil {
		parts[0] = []byte{byte(*s.COM)}
	}
	if s.PSR != nil {
		parts[1] = []byte{byte(*s.PSR)}
	}
	if s.SSR != nil {
		parts[2] = []byte{byte(*s.SSR)}
	}
	if s.MDS != nil {
		parts[3] = []byte{byte(*s.MDS)}
	}
	return parts
}

// WireSize returns the encoded length including the primary octet
func (s SystemProcessingMode) WireSize() int {
	size := 1
	for _, p := range s.parts() {
		size += len(p)
	}
	return size
}

// MarshalWire encodes the primary octet and the present subfields
func (s SystemProcessingMode) MarshalWire() ([]byte, error) {
	return joinCompound(processingLayout, s.parts()), nil
}

// UnmarshalWire decodes the primary octet and the subfields it announces
func (s *SystemProcessingMode) UnmarshalWire(b []byte) error {
	parts, err := splitCompound("I034/060", b, processingLayout)
	if err != nil {
		return err
	}

	*s = SystemProcessingMode{}
	if parts[0] != nil {
		com := ProcessingCOM(parts[0][0])
		s.COM = &com
	}
	if parts[1] != nil {
		psr := ProcessingPSR(parts[1][0])
		s.PSR = &psr
	}
	if parts[2] != nil {
		ssr := ProcessingSSR(parts[2][0])
		s.SSR = &ssr
	}
	if parts[3] != nil {
		mds := ProcessingMDS(parts[3][0])
		s.MDS = &mds
	}
	return nil
}

// Package validate checks decoded CAT034 records against the mandatory and
// forbidden items of their message type.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"asterix034/internal/cat034"
)

// ErrItemInvalid is matched by every ItemError
var ErrItemInvalid = errors.New("item invalid")

// Problem kinds reported by ItemError
const (
	Missing   = "missing"
	Forbidden = "forbidden"
	BadValue  = "bad value"
)

// ItemError names the offending item of a record
type ItemError struct {
	Record      int
	Item        string
	FRN         int
	Kind        string
	MessageType cat034.MessageType
}

func (e *ItemError) Error() string {
	var b strings.Builder
	if e.Record >= 0 {
		fmt.Fprintf(&b, "record %d: ", e.Record)
	}
	fmt.Fprintf(&b, "%s %s", e.Item, e.Kind)
	if e.MessageType != 0 {
		fmt.Fprintf(&b, " for %s", e.MessageType)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrItemInvalid) true for any ItemError
func (e *ItemError) Is(target error) bool {
	return target == ErrItemInvalid
}

type rule struct {
	required  []int
	forbidden []int
}

var rules = map[cat034.MessageType]rule{
	cat034.NorthMarker: {
		required:  []int{cat034.FRNDataSource, cat034.FRNTimeOfDay},
		forbidden: []int{cat034.FRNSectorNumber, cat034.FRNPolarWindow, cat034.FRNDataFilter},
	},
	cat034.SectorCrossing: {
		required:  []int{cat034.FRNDataSource, cat034.FRNSectorNumber, cat034.FRNTimeOfDay},
		forbidden: []int{cat034.FRNAntennaRotation, cat034.FRNPolarWindow, cat034.FRNDataFilter, cat034.FRNPosition},
	},
	cat034.GeographicalFiltering: {
		required: []int{cat034.FRNDataSource, cat034.FRNDataFilter},
		forbidden: []int{
			cat034.FRNSectorNumber, cat034.FRNAntennaRotation, cat034.FRNSystemConfiguration,
			cat034.FRNSystemProcessing, cat034.FRNMessageCount, cat034.FRNCollimationError, cat034.FRNPosition,
		},
	},
	cat034.JammingStrobe:      strobeRule,
	cat034.SolarStorm:         strobeRule,
	cat034.SSRJammingStrobe:   strobeRule,
	cat034.ModeSJammingStrobe: strobeRule,
}

var strobeRule = rule{
	required: []int{cat034.FRNDataSource, cat034.FRNPolarWindow},
	forbidden: []int{
		cat034.FRNSectorNumber, cat034.FRNAntennaRotation, cat034.FRNSystemConfiguration,
		cat034.FRNSystemProcessing, cat034.FRNMessageCount, cat034.FRNCollimationError,
		cat034.FRNDataFilter, cat034.FRNPosition,
	},
}

// Record checks a single record and returns the first problem found
func Record(r *cat034.Record) error {
	return check(-1, r)
}

// Message checks every record of m in order
func Message(m *cat034.Message) error {
	for i, r := range m.Records {
		if err := check(i, r); err != nil {
			return err
		}
	}
	return nil
}

// Problems returns every problem of r instead of stopping at the first one
func Problems(r *cat034.Record) []*ItemError {
	var out []*ItemError
	if r.MessageType == nil {
		return append(out, itemError(-1, cat034.FRNMessageType, Missing, 0))
	}

	mt := *r.MessageType
	rl, ok := rules[mt]
	if !ok {
		return append(out, itemError(-1, cat034.FRNMessageType, BadValue, mt))
	}

	for _, frn := range rl.required {
		if !r.Has(frn) {
			out = append(out, itemError(-1, frn, Missing, mt))
		}
	}
	for _, frn := range rl.forbidden {
		if r.Has(frn) {
			out = append(out, itemError(-1, frn, Forbidden, mt))
		}
	}
	return out
}

func check(index int, r *cat034.Record) error {
	if r == nil {
		return fmt.Errorf("record %d is nil", index)
	}
	problems := Problems(r)
	if len(problems) == 0 {
		return nil
	}
	problems[0].Record = index
	return problems[0]
}

func itemError(index, frn int, kind string, mt cat034.MessageType) *ItemError {
	return &ItemError{
		Record:      index,
		Item:        cat034.ItemID(frn),
		FRN:         frn,
		Kind:        kind,
		MessageType: mt,
	}
}

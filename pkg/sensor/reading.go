package sensor

import (
	"errors"
	"fmt"
)

// Units is the unit label carried by every blood pressure reading.
const Units = "mmHg"

// Simulation ranges, inclusive.
const (
	SystolicMin  = 70
	SystolicMax  = 89
	DiastolicMin = 110
	DiastolicMax = 129
	PulseMin     = 50
	PulseMax     = 69
)

// ErrOutOfRange is returned by Validate for values outside the simulation ranges.
var ErrOutOfRange = errors.New("reading out of range")

// Reading is one blood pressure and pulse measurement.
type Reading struct {
	Systolic  int64
	Diastolic int64
	Pulse     int64
	Units     string
}

// NewReading returns a Reading with the standard unit label.
func NewReading(systolic, diastolic, pulse int64) Reading {
	return Reading{
		Systolic:  systolic,
		Diastolic: diastolic,
		Pulse:     pulse,
		Units:     Units,
	}
}

// Validate checks the reading against the simulation ranges.
func (r Reading) Validate() error {
	if r.Systolic < SystolicMin || r.Systolic > SystolicMax {
		return fmt.Errorf("%w: systolic %d not in [%d,%d]", ErrOutOfRange, r.Systolic, SystolicMin, SystolicMax)
	}
	if r.Diastolic < DiastolicMin || r.Diastolic > DiastolicMax {
		return fmt.Errorf("%w: diastolic %d not in [%d,%d]", ErrOutOfRange, r.Diastolic, DiastolicMin, DiastolicMax)
	}
	if r.Pulse < PulseMin || r.Pulse > PulseMax {
		return fmt.Errorf("%w: pulse %d not in [%d,%d]", ErrOutOfRange, r.Pulse, PulseMin, PulseMax)
	}
	return nil
}

// String returns a compact human-readable form.
func (r Reading) String() string {
	return fmt.Sprintf("%d/%d %s, pulse %d", r.Systolic, r.Diastolic, r.Units, r.Pulse)
}

// Package tariff models time-of-use electricity prices over a single day.
package tariff

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/loadshift/core/model"
)

// Hours is the number of hourly price slots in a Schedule.
const Hours = model.HoursPerDay

// Band classifies an hour as peak or off-peak.
type Band int

const (
	OffPeak Band = iota
	Peak
)

func (b Band) String() string {
	switch b {
	case Peak:
		return "peak"
	case OffPeak:
		return "off-peak"
	default:
		return "unknown"
	}
}

// Schedule holds the price per kWh for each hour of the day.
type Schedule [Hours]float64

// Price returns the price for hour h, wrapping h into the day.
func (s Schedule) Price(h int) float64 {
	return s[Wrap(h)]
}

// Validate rejects negative or non-finite prices.
func (s Schedule) Validate() error {
	for h, p := range s {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fmt.Errorf("tariff hour %d: invalid price %v", h, p)
		}
	}
	return nil
}

// Wrap maps any integer hour onto [0, Hours).
func Wrap(h int) int {
	h %= Hours
	if h < 0 {
		h += Hours
	}
	return h
}

// TOU describes a two-band time-of-use tariff. Hours in [PeakStart, PeakEnd)
// are charged PeakPrice and every other hour OffPeakPrice. A window with
// PeakStart > PeakEnd wraps over midnight.
type TOU struct {
	PeakStart    int     `json:"peak_start"`
	PeakEnd      int     `json:"peak_end"`
	PeakPrice    float64 `json:"peak_price"`
	OffPeakPrice float64 `json:"off_peak_price"`
}

// Malaysian TOU tariff: peak 08:00-22:00 at 0.35 RM, off-peak otherwise at 0.20 RM.
const (
	DefaultPeakStart    = 8
	DefaultPeakEnd      = 22
	DefaultPeakPrice    = 0.35
	DefaultOffPeakPrice = 0.20
)

// DefaultTOU returns the Malaysian domestic time-of-use bands.
func DefaultTOU() TOU {
	return TOU{
		PeakStart:    DefaultPeakStart,
		PeakEnd:      DefaultPeakEnd,
		PeakPrice:    DefaultPeakPrice,
		OffPeakPrice: DefaultOffPeakPrice,
	}
}

// SetDefaults fills a zero-valued TOU with the default bands.
func (t *TOU) SetDefaults() {
	if *t == (TOU{}) {
		*t = DefaultTOU()
	}
}

// Validate checks the band boundaries and prices.
func (t TOU) Validate() error {
	if t.PeakStart < 0 || t.PeakStart >= Hours || t.PeakEnd < 0 || t.PeakEnd > Hours {
		return fmt.Errorf("peak window [%d,%d) outside the day", t.PeakStart, t.PeakEnd)
	}
	if t.PeakPrice < 0 || t.OffPeakPrice < 0 {
		return errors.New("tariff prices must not be negative")
	}
	return nil
}

// Band returns the band hour h falls in.
func (t TOU) Band(h int) Band {
	h = Wrap(h)
	if t.PeakStart <= t.PeakEnd {
		if h >= t.PeakStart && h < t.PeakEnd {
			return Peak
		}
		return OffPeak
	}
	if h >= t.PeakStart || h < t.PeakEnd {
		return Peak
	}
	return OffPeak
}

// Schedule expands the bands into hourly prices.
func (t TOU) Schedule() Schedule {
	var s Schedule
	for h := range s {
		if t.Band(h) == Peak {
			s[h] = t.PeakPrice
		} else {
			s[h] = t.OffPeakPrice
		}
	}
	return s
}

// Default returns the hourly schedule of DefaultTOU.
func Default() Schedule {
	return DefaultTOU().Schedule()
}

package model

import (
	"errors"
	"fmt"
	"math"
)

// HoursPerDay is the length of the scheduling horizon. Every hour index is
// taken modulo this value.
const HoursPerDay = 24

// ErrInvalidTask is returned when a task definition cannot produce a
// meaningful load profile.
var ErrInvalidTask = errors.New("invalid task")

// Task describes one appliance run: where the owner would like it to start,
// how many whole hours it lasts and its average draw.
type Task struct {
	PreferredStartHour int     `json:"preferred_start_hour" yaml:"preferred_start_hour"`
	DurationHours      int     `json:"duration_hours" yaml:"duration_hours"`
	AvgPowerKW         float64 `json:"avg_power_kw" yaml:"avg_power_kw"`
}

// Validate rejects tasks outside the day, with empty or self-overlapping
// durations, or without a positive power draw.
func (t Task) Validate() error {
	if t.PreferredStartHour < 0 || t.PreferredStartHour >= HoursPerDay {
		return fmt.Errorf("%w: preferred start hour %d outside [0,%d]", ErrInvalidTask, t.PreferredStartHour, HoursPerDay-1)
	}
	if t.DurationHours <= 0 {
		return fmt.Errorf("%w: duration %dh must be positive", ErrInvalidTask, t.DurationHours)
	}
	if t.DurationHours > HoursPerDay {
		return fmt.Errorf("%w: duration %dh exceeds the %dh horizon", ErrInvalidTask, t.DurationHours, HoursPerDay)
	}
	if math.IsNaN(t.AvgPowerKW) || math.IsInf(t.AvgPowerKW, 0) || t.AvgPowerKW <= 0 {
		return fmt.Errorf("%w: average power %v kW must be positive", ErrInvalidTask, t.AvgPowerKW)
	}
	return nil
}

// EnergyKWh returns the energy drawn over the whole run.
func (t Task) EnergyKWh() float64 {
	return t.AvgPowerKW * float64(t.DurationHours)
}

// Appliance is a named task together with its shiftability flag. Fixed
// appliances always run at their preferred hour; shiftable ones are placed by
// the optimizer.
type Appliance struct {
	Name      string `json:"name" yaml:"name"`
	Shiftable bool   `json:"shiftable" yaml:"shiftable"`
	Task      `yaml:",inline"`
}

// Validate checks the embedded task and annotates errors with the name.
func (a Appliance) Validate() error {
	if err := a.Task.Validate(); err != nil {
		return fmt.Errorf("appliance %q: %w", a.Name, err)
	}
	return nil
}

// Split partitions appliances into fixed and shiftable task lists, keeping the
// input order. The returned names line up with the shiftable tasks so that
// assignment index i belongs to shiftableNames[i].
func Split(appliances []Appliance) (fixed, shiftable []Task, shiftableNames []string) {
	for _, a := range appliances {
		if a.Shiftable {
			shiftable = append(shiftable, a.Task)
			shiftableNames = append(shiftableNames, a.Name)
			continue
		}
		fixed = append(fixed, a.Task)
	}
	return fixed, shiftable, shiftableNames
}

// ValidateTasks validates every task and reports the first failure with its
// index.
func ValidateTasks(kind string, tasks []Task) error {
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%s task %d: %w", kind, i, err)
		}
	}
	return nil
}

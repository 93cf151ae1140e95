// Package schedule turns an optimised assignment into a per-appliance plan
// that can be exported or published to smart plugs.
package schedule

import (
	"context"
	"fmt"

	"github.com/kilianp07/loadshift/core/fitness"
	"github.com/kilianp07/loadshift/core/model"
	"github.com/kilianp07/loadshift/core/tariff"
)

// Entry is the placement of one appliance.
type Entry struct {
	Appliance     string  `json:"appliance"`
	Shiftable     bool    `json:"shiftable"`
	StartHour     int     `json:"start_hour"`
	EndHour       int     `json:"end_hour"`
	PreferredHour int     `json:"preferred_hour"`
	DurationHours int     `json:"duration_hours"`
	PowerKW       float64 `json:"power_kw"`
	// Shift is StartHour - PreferredHour.
	Shift int `json:"shift"`
}

// Plan is the full day schedule produced by one run.
type Plan struct {
	RunID   string  `json:"run_id"`
	Entries []Entry `json:"entries"`
}

// Publisher delivers a plan to the appliances.
type Publisher interface {
	Publish(ctx context.Context, plan Plan) error
}

// NopPublisher drops plans.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Plan) error { return nil }

// Build places fixed appliances at their preferred hour and shiftable ones at
// the effective start derived from best. best is indexed in the order
// shiftable appliances appear in appliances.
func Build(runID string, appliances []model.Appliance, best []float64) (Plan, error) {
	plan := Plan{RunID: runID, Entries: make([]Entry, 0, len(appliances))}
	next := 0
	for _, a := range appliances {
		start := a.PreferredStartHour
		if a.Shiftable {
			if next >= len(best) {
				return Plan{}, fmt.Errorf("%w: no start hour for %q", fitness.ErrAssignmentLength, a.Name)
			}
			start = fitness.StartHour(best[next])
			next++
		}
		plan.Entries = append(plan.Entries, Entry{
			Appliance:     a.Name,
			Shiftable:     a.Shiftable,
			StartHour:     start,
			EndHour:       tariff.Wrap(start + a.DurationHours),
			PreferredHour: a.PreferredStartHour,
			DurationHours: a.DurationHours,
			PowerKW:       a.AvgPowerKW,
			Shift:         start - a.PreferredStartHour,
		})
	}
	if next != len(best) {
		return Plan{}, fmt.Errorf("%w: %d start hours for %d shiftable appliances", fitness.ErrAssignmentLength, len(best), next)
	}
	return plan, nil
}

// Shifted returns the entries whose start differs from the preference.
func (p Plan) Shifted() []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if e.Shift != 0 {
			out = append(out, e)
		}
	}
	return out
}

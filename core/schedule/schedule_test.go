package schedule

import (
	"errors"
	"testing"

	"github.com/kilianp07/loadshift/core/fitness"
	"github.com/kilianp07/loadshift/core/model"
)

func appliances() []model.Appliance {
	return []model.Appliance{
		{Name: "fridge", Task: model.Task{PreferredStartHour: 0, DurationHours: 24, AvgPowerKW: 0.2}},
		{Name: "washer", Shiftable: true, Task: model.Task{PreferredStartHour: 9, DurationHours: 2, AvgPowerKW: 0.5}},
		{Name: "ev", Shiftable: true, Task: model.Task{PreferredStartHour: 19, DurationHours: 4, AvgPowerKW: 3.6}},
	}
}

func TestBuild(t *testing.T) {
	plan, err := Build("run-1", appliances(), []float64{9.2, 22.6})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if plan.RunID != "run-1" || len(plan.Entries) != 3 {
		t.Fatalf("unexpected plan %#v", plan)
	}
	fridge, washer, ev := plan.Entries[0], plan.Entries[1], plan.Entries[2]
	if fridge.StartHour != 0 || fridge.EndHour != 0 || fridge.Shift != 0 {
		t.Fatalf("fridge misplaced %#v", fridge)
	}
	if washer.StartHour != 9 || washer.Shift != 0 {
		t.Fatalf("washer misplaced %#v", washer)
	}
	if ev.StartHour != 23 || ev.EndHour != 3 || ev.Shift != 4 {
		t.Fatalf("ev misplaced %#v", ev)
	}
	shifted := plan.Shifted()
	if len(shifted) != 1 || shifted[0].Appliance != "ev" {
		t.Fatalf("unexpected shifted %v", shifted)
	}
}

func TestBuildLengthMismatch(t *testing.T) {
	if _, err := Build("r", appliances(), []float64{1}); !errors.Is(err, fitness.ErrAssignmentLength) {
		t.Fatalf("expected length error got %v", err)
	}
	if _, err := Build("r", appliances(), []float64{1, 2, 3}); !errors.Is(err, fitness.ErrAssignmentLength) {
		t.Fatalf("expected length error got %v", err)
	}
}

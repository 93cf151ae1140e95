package fitness

import (
	"testing"

	"github.com/kilianp07/loadshift/core/model"
)

func TestBaseline(t *testing.T) {
	tasks := []model.Task{{PreferredStartHour: 4}, {PreferredStartHour: 21}}
	b := Baseline(tasks)
	if len(b) != 2 || b[0] != 4 || b[1] != 21 {
		t.Fatalf("unexpected baseline %v", b)
	}
}

func TestCompare(t *testing.T) {
	base := Result{Cost: 10, PeakLoad: 6, Discomfort: 0}
	opt := Result{Cost: 8, PeakLoad: 4.5, Discomfort: 5}
	s := Compare(base, opt)
	if s.Savings != 2 {
		t.Fatalf("expected savings 2 got %v", s.Savings)
	}
	if s.EfficiencyGainPct != 20 {
		t.Fatalf("expected 20%% got %v", s.EfficiencyGainPct)
	}
	if s.PeakReductionKW != 1.5 || s.DiscomfortDelta != 5 {
		t.Fatalf("bad summary %#v", s)
	}
}

func TestCompareZeroBaseline(t *testing.T) {
	s := Compare(Result{}, Result{Cost: 1})
	if s.EfficiencyGainPct != 0 {
		t.Fatalf("expected 0 got %v", s.EfficiencyGainPct)
	}
}

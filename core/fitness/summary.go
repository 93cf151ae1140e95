package fitness

import "github.com/kilianp07/loadshift/core/model"

// Summary compares an optimized schedule against the owner's preferred one.
type Summary struct {
	BaselineCost      float64 `json:"baseline_cost"`
	OptimizedCost     float64 `json:"optimized_cost"`
	Savings           float64 `json:"savings"`
	EfficiencyGainPct float64 `json:"efficiency_gain_pct"`
	PeakReductionKW   float64 `json:"peak_reduction_kw"`
	DiscomfortDelta   float64 `json:"discomfort_delta"`
}

// Baseline returns the assignment that starts every shiftable task at its
// preferred hour.
func Baseline(shiftable []model.Task) []float64 {
	out := make([]float64, len(shiftable))
	for i, t := range shiftable {
		out[i] = float64(t.PreferredStartHour)
	}
	return out
}

// Compare reports savings of optimized over baseline. EfficiencyGainPct is 0
// when the baseline costs nothing.
func Compare(baseline, optimized Result) Summary {
	s := Summary{
		BaselineCost:    baseline.Cost,
		OptimizedCost:   optimized.Cost,
		Savings:         baseline.Cost - optimized.Cost,
		PeakReductionKW: baseline.PeakLoad - optimized.PeakLoad,
		DiscomfortDelta: optimized.Discomfort - baseline.Discomfort,
	}
	if baseline.Cost != 0 {
		s.EfficiencyGainPct = s.Savings / baseline.Cost * 100
	}
	return s
}

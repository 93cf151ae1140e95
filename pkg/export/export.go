// Package export writes optimised plans in machine-readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/loadshift/core/schedule"
)

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{
	"run_id", "appliance", "shiftable", "preferred_hour", "start_hour",
	"end_hour", "duration_hours", "power_kw", "shift",
}

// WriteJSON writes the plan to w as indented JSON.
func WriteJSON(w io.Writer, plan schedule.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// WriteCSV writes one row per plan entry.
func WriteCSV(w io.Writer, plan schedule.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range plan.Entries {
		rec := []string{
			plan.RunID,
			e.Appliance,
			strconv.FormatBool(e.Shiftable),
			strconv.Itoa(e.PreferredHour),
			strconv.Itoa(e.StartHour),
			strconv.Itoa(e.EndHour),
			strconv.Itoa(e.DurationHours),
			strconv.FormatFloat(e.PowerKW, 'f', -1, 64),
			strconv.Itoa(e.Shift),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Package dataset reads household appliance lists from CSV, YAML or JSON
// files.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/loadshift/core/model"
)

// ErrUnsupportedFormat is returned for file extensions Load does not know.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// CSV column names, matched case-insensitively.
const (
	ColAppliance = "appliance"
	ColPreferred = "preferred_start_hour"
	ColDuration  = "duration_hours"
	ColPower     = "avg_power_kw"
	ColShiftable = "is_shiftable"
)

var requiredColumns = []string{ColAppliance, ColPreferred, ColDuration, ColPower, ColShiftable}

// Load reads the appliances stored at path. The format is chosen from the
// extension: .csv, .yaml, .yml or .json.
func Load(path string) ([]model.Appliance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var apps []model.Appliance
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		apps, err = ReadCSV(f)
	case ".yaml", ".yml":
		apps, err = ReadYAML(f)
	case ".json":
		apps, err = ReadJSON(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return apps, nil
}

// ReadCSV parses a header row followed by one appliance per row. Columns may
// appear in any order and extra columns are ignored.
func ReadCSV(r io.Reader) ([]model.Appliance, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var apps []model.Appliance
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		a, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		apps = append(apps, a)
	}
	return apps, validate(apps)
}

func parseRow(rec []string, idx map[string]int) (model.Appliance, error) {
	field := func(c string) string { return strings.TrimSpace(rec[idx[c]]) }
	var a model.Appliance
	var err error
	a.Name = field(ColAppliance)
	if a.PreferredStartHour, err = strconv.Atoi(field(ColPreferred)); err != nil {
		return a, fmt.Errorf("%s: %w", ColPreferred, err)
	}
	if a.DurationHours, err = strconv.Atoi(field(ColDuration)); err != nil {
		return a, fmt.Errorf("%s: %w", ColDuration, err)
	}
	if a.AvgPowerKW, err = strconv.ParseFloat(field(ColPower), 64); err != nil {
		return a, fmt.Errorf("%s: %w", ColPower, err)
	}
	if a.Shiftable, err = ParseBool(field(ColShiftable)); err != nil {
		return a, fmt.Errorf("%s: %w", ColShiftable, err)
	}
	return a, nil
}

// ParseBool accepts the strconv spellings plus yes/no and y/n.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// ReadYAML parses a YAML sequence of appliances.
func ReadYAML(r io.Reader) ([]model.Appliance, error) {
	var apps []model.Appliance
	if err := yaml.NewDecoder(r).Decode(&apps); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return apps, validate(apps)
}

// ReadJSON parses a JSON array of appliances.
func ReadJSON(r io.Reader) ([]model.Appliance, error) {
	var apps []model.Appliance
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&apps); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return apps, validate(apps)
}

func validate(apps []model.Appliance) error {
	if len(apps) == 0 {
		return fmt.Errorf("%w: dataset is empty", model.ErrInvalidTask)
	}
	for _, a := range apps {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("%w: appliance without a name", model.ErrInvalidTask)
		}
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

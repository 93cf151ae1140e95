package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadshift/app"
	"github.com/kilianp07/loadshift/pkg/export"
)

const testData = `Appliance,Preferred_Start_Hour,Duration_Hours,Avg_Power_kW,Is_Shiftable
Fridge,0,24,0.15,False
Washer,19,2,0.5,True
Dryer,21,2,2.8,True
`

func setup(t *testing.T) (cfgPath, dataPath string) {
	t.Helper()
	dir := t.TempDir()
	dataPath = filepath.Join(dir, "apps.csv")
	require.NoError(t, os.WriteFile(dataPath, []byte(testData), 0o600))
	cfgPath = filepath.Join(dir, "config.yaml")
	cfg := "optimizer:\n  iterations: 15\n  swarm:\n    swarm_size: 8\n    seed: 3\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath, dataPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestOptimizeJSON(t *testing.T) {
	cfgPath, dataPath := setup(t)
	out, err := execute(t, "optimize", "-c", cfgPath, "--data", dataPath, "--iterations", "12", "--format", "json")
	require.NoError(t, err)

	var rep app.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Len(t, rep.History, 12)
	assert.Equal(t, int64(3), rep.Seed)
	assert.Len(t, rep.Best, 2)
	assert.Len(t, rep.Plan.Entries, 3)
	assert.Equal(t, 8*13, rep.Evaluations)
}

func TestOptimizeCSV(t *testing.T) {
	cfgPath, dataPath := setup(t)
	out, err := execute(t, "optimize", "-c", cfgPath, "--data", dataPath, "--format", "csv", "--swarm-size", "5")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, export.CSVHeader, rows[0])
	assert.Equal(t, "Fridge", rows[1][1])
}

func TestOptimizeText(t *testing.T) {
	cfgPath, dataPath := setup(t)
	out, err := execute(t, "optimize", "-c", cfgPath, "--data", dataPath, "--seed", "11", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "seed 11")
	assert.Contains(t, out, "APPLIANCE")
	assert.Contains(t, out, "Dryer")
}

func TestOptimizeRejectsBadInput(t *testing.T) {
	cfgPath, dataPath := setup(t)
	_, err := execute(t, "optimize", "-c", cfgPath, "--data", dataPath, "--format", "xml")
	assert.Error(t, err)
	_, err = execute(t, "optimize", "-c", cfgPath, "--data", dataPath, "--iterations", "0")
	assert.Error(t, err)
	_, err = execute(t, "optimize", "-c", cfgPath, "--data", filepath.Join(t.TempDir(), "none.csv"))
	assert.Error(t, err)
	_, err = execute(t, "optimize", "-c", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestEvaluateBaseline(t *testing.T) {
	cfgPath, dataPath := setup(t)
	out, err := execute(t, "evaluate", "-c", cfgPath, "--data", dataPath, "--format", "json")
	require.NoError(t, err)

	var got evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	// Fridge 24h at 0.15 plus washer 19-20 and dryer 21-22, all at preferred hours.
	assert.Zero(t, got.Discomfort)
	assert.Zero(t, got.Penalty)
	assert.InDelta(t, 2.95, got.PeakLoad, 1e-9)
	assert.Equal(t, 21, got.Plan.Entries[2].StartHour)
}

func TestEvaluateHours(t *testing.T) {
	cfgPath, dataPath := setup(t)
	out, err := execute(t, "evaluate", "-c", cfgPath, "--data", dataPath, "--hours", "22,2.6", "--format", "json")
	require.NoError(t, err)

	var got evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	// |22-19| + |3-21|
	assert.Equal(t, 21.0, got.Discomfort)
	assert.Equal(t, 3, got.Plan.Entries[2].StartHour)

	_, err = execute(t, "evaluate", "-c", cfgPath, "--data", dataPath, "--hours", "1")
	assert.Error(t, err)

	out, err = execute(t, "evaluate", "-c", cfgPath, "--data", dataPath)
	require.NoError(t, err)
	assert.Contains(t, out, "HOUR")
}

func TestTariff(t *testing.T) {
	cfgPath, _ := setup(t)
	out, err := execute(t, "tariff", "-c", cfgPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 25)
	assert.Contains(t, lines[1], "off-peak")
	assert.Contains(t, lines[1], "0.20")
	assert.Contains(t, lines[9], "peak")
	assert.Contains(t, lines[9], "0.35")
	assert.Contains(t, lines[23], "off-peak")
}

package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/loadshift/core/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "apps.csv", `Appliance,Preferred_Start_Hour,Duration_Hours,Avg_Power_kW,Is_Shiftable
Refrigerator,0,24,0.15,False
Washing Machine,19,2,0.5,True
`)
	apps, err := Load(path)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, model.Appliance{Name: "Refrigerator", Task: model.Task{PreferredStartHour: 0, DurationHours: 24, AvgPowerKW: 0.15}}, apps[0])
	assert.Equal(t, model.Appliance{Name: "Washing Machine", Shiftable: true, Task: model.Task{PreferredStartHour: 19, DurationHours: 2, AvgPowerKW: 0.5}}, apps[1])
}

func TestReadCSVColumnOrderAndCase(t *testing.T) {
	in := "\ufeffis_shiftable, AVG_POWER_KW,notes,appliance,duration_hours,preferred_start_hour\n" +
		"yes, 2.8,noisy,Dryer,2,21\n" +
		"0,1.0,,Kettle,1,7\n"
	apps, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "Dryer", apps[0].Name)
	assert.True(t, apps[0].Shiftable)
	assert.Equal(t, 21, apps[0].PreferredStartHour)
	assert.Equal(t, 2.8, apps[0].AvgPowerKW)
	assert.False(t, apps[1].Shiftable)
}

func TestReadCSVErrors(t *testing.T) {
	header := "Appliance,Preferred_Start_Hour,Duration_Hours,Avg_Power_kW,Is_Shiftable\n"
	cases := map[string]string{
		"missing column": "Appliance,Duration_Hours,Avg_Power_kW,Is_Shiftable\nA,1,1,true\n",
		"bad hour":       header + "A,x,1,1,true\n",
		"bad duration":   header + "A,1,1.5,1,true\n",
		"bad power":      header + "A,1,1,kw,true\n",
		"bad flag":       header + "A,1,1,1,maybe\n",
		"hour range":     header + "A,24,1,1,true\n",
		"zero duration":  header + "A,3,0,1,true\n",
		"empty":          header,
		"no name":        header + " ,3,1,1,true\n",
		"no header":      "",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestReadCSVValidationWrapsSentinel(t *testing.T) {
	in := "Appliance,Preferred_Start_Hour,Duration_Hours,Avg_Power_kW,Is_Shiftable\nA,3,1,-1,true\n"
	_, err := ReadCSV(strings.NewReader(in))
	assert.ErrorIs(t, err, model.ErrInvalidTask)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "apps.yaml", `
- name: Fridge
  preferred_start_hour: 0
  duration_hours: 24
  avg_power_kw: 0.15
- name: Dishwasher
  shiftable: true
  preferred_start_hour: 20
  duration_hours: 2
  avg_power_kw: 1.2
`)
	apps, err := Load(path)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.True(t, apps[1].Shiftable)
	assert.Equal(t, 20, apps[1].PreferredStartHour)
	assert.Equal(t, 1.2, apps[1].AvgPowerKW)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "apps.json", `[
  {"name": "EV", "shiftable": true, "preferred_start_hour": 18, "duration_hours": 4, "avg_power_kw": 3.3}
]`)
	apps, err := Load(path)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, model.Appliance{Name: "EV", Shiftable: true, Task: model.Task{PreferredStartHour: 18, DurationHours: 4, AvgPowerKW: 3.3}}, apps[0])
}

func TestLoadJSONUnknownField(t *testing.T) {
	path := writeFile(t, "apps.json", `[{"name": "EV", "power": 3}]`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := writeFile(t, "apps.txt", "x")
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	path = writeFile(t, "empty.yaml", "")
	_, err = Load(path)
	assert.ErrorIs(t, err, model.ErrInvalidTask)
}

func TestLoadBundledDataset(t *testing.T) {
	apps, err := Load(filepath.Join("..", "..", "data", "appliances.csv"))
	require.NoError(t, err)
	_, shiftable, names := model.Split(apps)
	assert.Len(t, shiftable, 5)
	assert.Contains(t, names, "EV Charger")
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"True": true, "false": false, "YES": true, "n": false, "1": true, "0": false} {
		got, err := ParseBool(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBool("sometimes")
	assert.Error(t, err)
}

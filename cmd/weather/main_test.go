package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-stats/internal/source"
)

var dataLines = []string{
	"01/07/2019 09:00,7.38,267.7,13.78,15.378,15.66,174.9,75.8",
	"01/07/2019 10:00,6.83,265.1,14.38,15.476,15.78,149.7,76.6",
	"01/07/2019 11:00,5.525,272.4,17.87,15.7,15.96,107.6,75.5",
	"01/07/2019 12:00,7.95,283.2,14.51,18.59,19.03,564.8,62.77",
	"01/07/2019 13:00,7.83,285.7,16.51,18.334,18.71,676.8,57.59",
	"01/07/2019 14:00,7.1",
}

func writeWeatherFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weather.csv")
	content := source.Header + "\n" + strings.Join(dataLines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"plot"}, exitUsage},
		{"missing date", []string{"insolation", "weather.csv"}, exitUsage},
		{"unknown flag", []string{"stats", "--colour", "weather.csv"}, exitUsage},
		{"bad format", []string{"export", "--format", "xml", "weather.csv"}, exitUsage},
		{"help", []string{"--help"}, exitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI("version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "weather version "+version+"\n", out)
}

func TestRun_Insolation(t *testing.T) {
	path := writeWeatherFile(t)

	code, out, _ := runCLI("insolation", path, "2019-07-01")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "Insolation on 2019-07-01 = 6.026e+06 J/m²\nComputed for 5 hours of measurements\n", out)

	code, out, _ = runCLI("insolation", path, "2019-07-02")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "Date not found in dataset!\n", out)

	code, _, errOut := runCLI("insolation", path, "01/07/2019")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "Error: invalid date")
}

func TestRun_MissingFile(t *testing.T) {
	code, _, errOut := runCLI("stats", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "Error:")
}

func TestRun_Stats(t *testing.T) {
	path := writeWeatherFile(t)

	code, out, _ := runCLI("stats", "--reasons", path)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "5 valid records, 1 skipped")
	assert.Contains(t, out, "field_count   : 1")
	assert.Contains(t, out, "Highest wind speed = 8.0 m/s")
	assert.Contains(t, out, "Lowest humidity = 57.6%")
}

func TestRun_StatsJSON(t *testing.T) {
	path := writeWeatherFile(t)

	code, out, _ := runCLI("stats", "--json", path)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, `"records": 5`)
	assert.Contains(t, out, `"insolation": [`)
	assert.Contains(t, out, `"date": "2019-07-01"`)
}

func TestRun_StatsSave(t *testing.T) {
	path := writeWeatherFile(t)
	t.Setenv("WEATHER_CONFIG", "")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "reports.db"))

	code, out, errOut := runCLI("stats", "--save", "july", path)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, out, `Report "july" saved with id 1`)

	code, out, _ = runCLI("stats", "--save", "july-again", path)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, `Report "july-again" saved with id 2`)
}

func TestRun_ExportCSVRoundTrip(t *testing.T) {
	path := writeWeatherFile(t)
	exported := filepath.Join(t.TempDir(), "export.csv")

	code, _, errOut := runCLI("export", "-o", exported, path)
	require.Equal(t, exitOK, code, errOut)

	b, err := os.ReadFile(exported)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, source.Header, lines[0])
	assert.Equal(t, "01/07/2019 09:00,7.38,,,15.378,,174.9,75.8", lines[1])

	// the export is itself a valid weather file
	code, out, _ := runCLI("stats", exported)
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "5 valid records, 0 skipped")
}

func TestRun_ExportJSON(t *testing.T) {
	path := writeWeatherFile(t)

	code, out, _ := runCLI("export", "--format", "json", path)
	require.Equal(t, exitOK, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], `"wind_speed":7.38`)
}

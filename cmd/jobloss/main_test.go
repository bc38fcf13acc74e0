package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobloss/internal/catalog"
	"jobloss/internal/engine"
	"jobloss/internal/models"
)

func statsLine(fips, name, abbr, x01, metric string) string {
	fields := []string{fips, name, abbr, x01}
	for i := 1; i < models.NumRateColumns; i++ {
		fields = append(fields, "2.5")
	}
	return strings.Join(append(fields, metric), ",")
}

func writeStatsFile(t *testing.T, lines ...string) string {
	t.Helper()
	content := strings.Join(append([]string{strings.Join(models.RequiredColumns(), ",")}, lines...), "\n") + "\n"
	path := filepath.Join(t.TempDir(), "job_stats.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeStats(t *testing.T) string {
	t.Helper()
	return writeStatsFile(t,
		statsLine("06", "California", "CA", "5.0", "10"),
		statsLine("06", "California", "CA", "5.0", "20"),
		statsLine("48", "Texas", "TX", "3.5", "6"),
	)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProjectCommand(t *testing.T) {
	path := writeStats(t)

	out, err := run(t, "project", "--data", path, "--sector", string(catalog.Total))
	require.NoError(t, err)

	var p models.RenderPayload
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "Heat Map of Job Gain or Lost in: Total Job Loss Index Sector(s)", p.Title)
	require.Len(t, p.Points, 2)
	assert.Equal(t, "California: 15.0%", p.Points[0].Hover)
	assert.Equal(t, "Texas: 6.0%", p.Points[1].Hover)
}

func TestProjectCommandStateWithoutMetric(t *testing.T) {
	path := writeStatsFile(t,
		statsLine("06", "California", "CA", "5.0", "10"),
		statsLine("48", "Texas", "TX", "3.5", ""),
	)

	out, err := run(t, "project", "--data", path, "--sector", string(catalog.Total))
	require.NoError(t, err)

	var p models.RenderPayload
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	require.Len(t, p.Points, 2)
	require.NotNil(t, p.Points[0].Value)
	assert.Equal(t, 10.0, *p.Points[0].Value)
	assert.Nil(t, p.Points[1].Value)
	assert.Equal(t, "Texas: nan%", p.Points[1].Hover)
	assert.Contains(t, out, `"value": null`)
}

func TestProjectCommandUnknownSector(t *testing.T) {
	path := writeStats(t)

	_, err := run(t, "project", "--data", path, "--sector", "X99")
	var use *catalog.UnknownSectorError
	require.ErrorAs(t, err, &use)
}

func TestMissingDataIsFatal(t *testing.T) {
	_, err := run(t, "project", "--data", filepath.Join(t.TempDir(), "missing.csv"), "--sector", "X01")
	var dle *engine.DataLoadError
	require.True(t, errors.As(err, &dle), "got %v", err)
}

func TestExportCommand(t *testing.T) {
	path := writeStats(t)
	out := filepath.Join(t.TempDir(), "table.arrow")

	_, err := run(t, "export", "--data", path, "--out", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	r, err := ipc.NewReader(f)
	require.NoError(t, err)
	defer r.Release()
	require.True(t, r.Next())
	assert.EqualValues(t, 2, r.Record().NumRows())
}

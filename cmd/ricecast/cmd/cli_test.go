package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writePrices(t *testing.T, n int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("Bulan,Tanggal,Premium,Medium\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Maret,%d,%d,%d\n", i+1, 14000+i*10, 11000)
	}

	path := filepath.Join(t.TempDir(), "harga.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestColumnsCommand(t *testing.T) {
	path := writePrices(t, 5)

	out, err := execute(t, "columns", path)
	require.NoError(t, err)

	assert.Contains(t, out, "COLUMN")
	assert.Regexp(t, `1\s+Premium`, out)
	assert.Regexp(t, `2\s+Medium`, out)
	assert.Contains(t, out, "5 rows")
}

func TestColumnsCommandRequiresFile(t *testing.T) {
	_, err := execute(t, "columns")
	assert.Error(t, err)
}

func TestForecastCommandTables(t *testing.T) {
	path := writePrices(t, 40)

	out, err := execute(t, "forecast", path, "--column", "Premium", "--horizon", "7", "--alpha", "0.5")
	require.NoError(t, err)

	assert.Contains(t, out, "MEAN")
	assert.Contains(t, out, "STEP")
	assert.Regexp(t, `Dropped:\s+0 rows below 12000.00`, out)
	assert.NotContains(t, out, "note:")
}

func TestForecastCommandDefaultsToFirstColumn(t *testing.T) {
	path := writePrices(t, 3)

	out, err := execute(t, "forecast", path)
	require.NoError(t, err)

	assert.Regexp(t, `Column:\s+Premium`, out)
	assert.Regexp(t, `Horizon:\s+7 days`, out)
	assert.Contains(t, out, "note:")
}

func TestForecastCommandEmptyAfterFilter(t *testing.T) {
	path := writePrices(t, 10)

	out, err := execute(t, "forecast", path, "--column", "2", "--json")
	require.NoError(t, err)

	var report struct {
		Summary *struct{} `json:"summary"`
		Notices []struct {
			Kind string `json:"kind"`
		} `json:"notices"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Nil(t, report.Summary)
	require.Len(t, report.Notices, 1)
	assert.Equal(t, "empty_after_filter", report.Notices[0].Kind)
}

func TestForecastCommandWritesFiles(t *testing.T) {
	path := writePrices(t, 40)
	dir := t.TempDir()
	png := filepath.Join(dir, "chart.png")
	csvPath := filepath.Join(dir, "comparison.csv")
	xlsx := filepath.Join(dir, "report.xlsx")

	_, err := execute(t, "forecast", path, "--horizon", "14", "--alpha", "0.2",
		"--chart", png, "--csv", csvPath, "--xlsx", xlsx)
	require.NoError(t, err)

	img, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 15)

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Comparison")
}

func TestForecastCommandErrors(t *testing.T) {
	path := writePrices(t, 10)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown column", args: []string{"forecast", path, "--column", "Luar"}},
		{name: "horizon not offered", args: []string{"forecast", path, "--horizon", "9"}},
		{name: "alpha not offered", args: []string{"forecast", path, "--alpha", "0.3"}},
		{name: "missing file", args: []string{"forecast", filepath.Join(t.TempDir(), "none.csv")}},
		{name: "unsupported chart", args: []string{"forecast", path, "--chart", filepath.Join(t.TempDir(), "c.gif")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

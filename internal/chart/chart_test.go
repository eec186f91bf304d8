package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"ricecast/internal/dataset"
	"ricecast/internal/forecast"
)

func report(t *testing.T, prices ...float64) *forecast.Report {
	t.Helper()
	ds := &dataset.RawDataset{Columns: []string{"Medium"}}
	for i, p := range prices {
		ds.Rows = append(ds.Rows, dataset.Row{Position: i + 1, Prices: []float64{p}})
	}
	r, err := forecast.Run(ds, forecast.Params{Column: "Medium", Horizon: 7, Alpha: 0.5}, forecast.DefaultOptions())
	require.NoError(t, err)
	return r
}

func flat(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 15000 + float64(i%5)*100
	}
	return out
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, report(t, flat(40)...), Options{Width: 4 * vg.Inch, Height: 3 * vg.Inch, Format: FormatPNG}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, report(t, 12000, 13000, 14000), Options{Format: FormatSVG}))
	assert.Contains(t, buf.String(), "<svg")
}

func TestRenderIsIndependentPerCall(t *testing.T) {
	r := report(t, flat(35)...)
	var first, second bytes.Buffer
	require.NoError(t, Render(&first, r, Options{Format: FormatSVG}))
	require.NoError(t, Render(&second, r, Options{Format: FormatSVG}))
	assert.Equal(t, first.String(), second.String())
	assert.Contains(t, second.String(), "Actual price")
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, report(t, 100, 200), DefaultOptions()), ErrNothingToPlot)
	assert.ErrorIs(t, Render(&buf, nil, DefaultOptions()), ErrNothingToPlot)
	assert.ErrorIs(t, Render(&buf, report(t, 12000, 13000), Options{Format: "gif"}), ErrUnsupportedFormat)
}

func TestSegmentsSkipMissing(t *testing.T) {
	values := []forecast.NullFloat{forecast.Float(1), forecast.Missing(), forecast.Float(3), forecast.Float(4)}
	segs := segments([]int{10, 11, 12, 13}, values)
	require.Len(t, segs, 2)
	assert.Equal(t, 10.0, segs[0][0].X)
	assert.Equal(t, 12.0, segs[1][0].X)
	assert.Len(t, segs[1], 2)

	assert.Empty(t, segments([]int{1, 2}, []forecast.NullFloat{forecast.Missing(), forecast.Missing()}))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
	_, err = ParseFormat("jpeg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

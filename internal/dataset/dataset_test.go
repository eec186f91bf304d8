package dataset

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory xlsx from rows of cell values.
func workbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseWorkbook(t *testing.T) {
	buf := workbook(t, "Harga", [][]interface{}{
		{"Bulan", "Tanggal", "Medium", "Premium"},
		{"Jan", "2024-01-02", 13100, 14900},
		{"Jan", "2024-01-03", 13150.5, "15,000"},
		{"Jan", "2024-01-04", "", "n/a"},
	})

	ds, err := ParseWorkbook("harga.xlsx", buf, ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, "harga.xlsx", ds.Source)
	assert.Equal(t, "Harga", ds.Sheet)
	assert.Equal(t, "Bulan", ds.MonthHeader)
	assert.Equal(t, "Tanggal", ds.DateHeader)
	assert.Equal(t, []string{"Medium", "Premium"}, ds.Columns)
	require.Equal(t, 3, ds.Len())

	first := ds.Rows[0]
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, "Jan", first.Month)
	assert.Equal(t, "2024-01-02", first.Date)
	assert.Equal(t, 2024, first.Time.Year())
	assert.Equal(t, []float64{13100, 14900}, first.Prices)

	assert.Equal(t, 13150.5, ds.Rows[1].Prices[0])
	assert.Equal(t, 15000.0, ds.Rows[1].Prices[1])

	assert.True(t, math.IsNaN(ds.Rows[2].Prices[0]))
	assert.True(t, math.IsNaN(ds.Rows[2].Prices[1]))
}

func TestParseWorkbookNamedSheet(t *testing.T) {
	buf := workbook(t, "Data", [][]interface{}{
		{"Bulan", "Tanggal", "Medium"},
		{"Feb", "2024-02-01", 12500},
	})

	_, err := ParseWorkbook("x.xlsx", bytes.NewReader(buf.Bytes()), ParseOptions{Sheet: "Missing"})
	assert.ErrorIs(t, err, ErrSheetNotFound)

	ds, err := ParseWorkbook("x.xlsx", bytes.NewReader(buf.Bytes()), ParseOptions{Sheet: "Data"})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestParseWorkbookErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]interface{}
		want error
	}{
		{name: "empty sheet", rows: nil, want: ErrEmptyWorkbook},
		{name: "no price columns", rows: [][]interface{}{{"Bulan", "Tanggal"}, {"Jan", "2024-01-01"}}, want: ErrNoPriceColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorkbook("x.xlsx", workbook(t, "Sheet1", tt.rows), ParseOptions{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseWorkbookRejectsGarbage(t *testing.T) {
	_, err := ParseWorkbook("x.xlsx", strings.NewReader("not a zip"), ParseOptions{})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "comma", input: "Bulan,Tanggal,Medium,Premium\nJan,2024-01-02,13100,14900\nJan,2024-01-03,13200,15000\n"},
		{name: "semicolon", input: "Bulan;Tanggal;Medium;Premium\nJan;2024-01-02;13100;14900\nJan;2024-01-03;13200;15000\n"},
		{name: "tab with bom", input: "\xEF\xBB\xBFBulan\tTanggal\tMedium\tPremium\nJan\t2024-01-02\t13100\t14900\nJan\t2024-01-03\t13200\t15000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseCSV("harga.csv", strings.NewReader(tt.input), ParseOptions{})
			require.NoError(t, err)
			assert.Equal(t, "Bulan", ds.MonthHeader)
			assert.Equal(t, []string{"Medium", "Premium"}, ds.Columns)
			require.Equal(t, 2, ds.Len())
			assert.Equal(t, []float64{13200, 15000}, ds.Rows[1].Prices)
			assert.Equal(t, 2, ds.Rows[1].Position)
		})
	}
}

func TestParseKeepsPositionsAcrossBlankRows(t *testing.T) {
	input := "Bulan,Tanggal,Medium\nJan,2024-01-02,13100\n,,\nJan,2024-01-04,13300\n\n\n"
	ds, err := ParseCSV("harga.csv", strings.NewReader(input), ParseOptions{})
	require.NoError(t, err)

	require.Equal(t, 3, ds.Len())
	assert.True(t, math.IsNaN(ds.Rows[1].Prices[0]))
	assert.Equal(t, 3, ds.Rows[2].Position)
}

func TestColumnNames(t *testing.T) {
	got := columnNames([]string{"Medium", "", "Medium", " Premium "})
	assert.Equal(t, []string{"Medium", "Unnamed: 3", "Medium.1", "Premium"}, got)
}

func TestPriceColumnsReturnsCopy(t *testing.T) {
	ds := &RawDataset{Columns: []string{"Medium", "Premium"}}
	cols := ds.PriceColumns()
	cols[0] = "changed"
	assert.Equal(t, "Medium", ds.Columns[0])

	idx, ok := ds.ColumnIndex("Premium")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = ds.ColumnIndex("Super")
	assert.False(t, ok)
}

func TestParseDispatch(t *testing.T) {
	_, err := Parse("prices.pdf", strings.NewReader(""), ParseOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	ds, err := Parse("/tmp/uploads/prices.CSV", strings.NewReader("a,b,c\nJan,2024-01-01,12000\n"), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "prices.CSV", ds.Source)
	assert.Equal(t, []string{"c"}, ds.Columns)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"13100", 13100},
		{"13,100", 13100},
		{" Rp 13,100 ", 13100},
		{"12000.75", 12000.75},
		{"13.500", 13500},
		{"1.234.567", 1234567},
		{"Rp 14.000", 14000},
		{"Rp14.000,50", 14000.5},
		{"Rp. 13.500", 13500},
		{"rp 13500,5", 13500.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePrice(tt.in), tt.in)
	}

	for _, in := range []string{"", "-", "inf", "+Inf", "-inf", "Infinity", "nan", "NaN", "0x1p14", "1e400", "12.000.5"} {
		assert.True(t, math.IsNaN(parsePrice(in)), in)
	}
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, 2024, parseDate("2024-03-05", "").Year())
	assert.Equal(t, 2024, parseDate("5/3/2024", "").Year())
	assert.Equal(t, 2024, parseDate("03-05-24", "45356").Year())
	assert.True(t, parseDate("minggu pertama", "").IsZero())

	for _, in := range []string{"05/03/2024", "5/3/2024", "05-03-2024", "05-03-24", "5/3/24", "5 March 2024", "05 Mar 2024"} {
		got := parseDate(in, "")
		assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), got, in)
	}
}

func TestParseCSVRupiahAndNonFinitePrices(t *testing.T) {
	input := "Bulan;Tanggal;Medium;Premium\n" +
		"Maret;05/03/2024;Rp 13.500;Rp14.000,50\n" +
		"Maret;06/03/2024;1.234.567;inf\n" +
		"Maret;07/03/2024;NaN;Infinity\n"
	ds, err := ParseCSV("harga.csv", strings.NewReader(input), ParseOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	assert.Equal(t, []float64{13500, 14000.5}, ds.Rows[0].Prices)
	assert.Equal(t, time.March, ds.Rows[0].Time.Month())
	assert.Equal(t, 5, ds.Rows[0].Time.Day())

	assert.Equal(t, 1234567.0, ds.Rows[1].Prices[0])
	assert.True(t, math.IsNaN(ds.Rows[1].Prices[1]))
	for _, p := range ds.Rows[2].Prices {
		assert.True(t, math.IsNaN(p))
	}
}

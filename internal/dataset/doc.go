// Package dataset loads uploaded rice price spreadsheets into an immutable
// RawDataset.
//
// A spreadsheet has a header row followed by one row per day. The first
// column holds the month label, the second the date, and every column from
// the third onwards is a named price series:
//
//	Bulan | Tanggal    | Medium | Premium
//	Jan   | 2024-01-02 | 13,100 | 14,900
//
// Workbooks (.xlsx, .xlsm) are read with excelize; CSV files are accepted
// with the same layout.
//
//	ds, err := dataset.Parse("harga.xlsx", file, dataset.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(ds.Columns)
package dataset

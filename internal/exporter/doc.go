// Package exporter writes forecast reports as CSV or Excel workbooks.
//
// CSV output carries a UTF-8 BOM so Excel opens it with the right encoding.
// Missing values (no forecast, no look-back price) are written as empty cells.
//
//	if err := exporter.Write(w, report, exporter.FormatXLSX); err != nil {
//	    return err
//	}
package exporter

// Package exporter writes registration records and summaries as CSV.
//
// CSVWriter handles headers, streaming and the UTF-8 BOM Excel needs to
// detect the encoding. ExportView streams a filtered view with the sheet
// columns first and the derived columns appended; ExportSummary writes
// every frequency table of a summary as one long table.
//
// Example usage:
//
//	view := dataprocessing.ApplyFilters(ds, sel)
//	if err := exporter.ExportView(w, view); err != nil {
//	    return err
//	}
package exporter

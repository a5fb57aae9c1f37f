// Package dataprocessing turns the CRPD registration workbook into the
// figures the dashboard shows.
//
// # Data Flow
//
//	Workbook → LoadWorkbook → Sheet → Deriver → Dataset → ApplyFilters → View → Summarize
//
// LoadWorkbook reads the configured sheet and column range with excelize
// and fails with ErrWorkbookNotFound, ErrSheetNotFound or ErrMissingColumns.
// The Deriver computes age, age group, normalized gender, region membership
// and normalized registration once per load against a single reference
// date. Datasets are immutable after that; filtering builds index views and
// Summarize aggregates a view.
//
// Basic usage:
//
//	sheet, err := dataprocessing.LoadWorkbook(ctx, dataprocessing.LoadOptions{Path: "CRPD Final All Data.xlsx"})
//	if err != nil {
//	    return err
//	}
//	ds := dataprocessing.NewDeriver(nil).BuildDataset(sheet)
//	view := dataprocessing.ApplyFilters(ds, domain.DefaultSelection())
//	summary := dataprocessing.Summarize(view, domain.DefaultSelection())
//
// # Age Resolution
//
// ParseAge never fails. Unparseable, missing and boolean dates of birth
// resolve to domain.UnknownAge and are reported as "Unknown".
package dataprocessing

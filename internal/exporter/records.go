package exporter

import (
	"context"
	"fmt"
	"io"

	"crpdash/internal/config"
	"crpdash/internal/dataprocessing"
	"crpdash/pkg/contracts/domain"
)

// Derived column headers appended after the sheet columns
const (
	HeaderAge              = "Age"
	HeaderAgeGroup         = "Age Group"
	HeaderGenderNormalized = "Gender (Normalized)"
	HeaderInRegion         = "In Islamabad"
	HeaderRegNormalized    = "Reg (Normalized)"
)

var derivedHeaders = []string{
	HeaderAge,
	HeaderAgeGroup,
	HeaderGenderNormalized,
	HeaderInRegion,
	HeaderRegNormalized,
}

// RecordHeaders returns the sheet headers followed by the derived columns
func RecordHeaders(sheetHeaders []string) []string {
	out := make([]string, 0, len(sheetHeaders)+len(derivedHeaders))
	out = append(out, sheetHeaders...)
	return append(out, derivedHeaders...)
}

// RecordRow renders one record in RecordHeaders order
func RecordRow(rec *domain.Record, sheetHeaders []string) []string {
	row := make([]string, 0, len(sheetHeaders)+len(derivedHeaders))
	for _, h := range sheetHeaders {
		row = append(row, SheetValue(rec, h))
	}
	return append(row,
		formatAge(rec.Age),
		string(rec.AgeGroup),
		string(rec.GenderNormalized),
		formatBool(rec.InRegion),
		rec.RegNormalized,
	)
}

// SheetValue returns the raw value of a sheet column for a record
func SheetValue(rec *domain.Record, header string) string {
	switch header {
	case config.ColDateOfBirth:
		return rec.DateOfBirth.String()
	case config.ColGender:
		return rec.Gender
	case config.ColPresentAddress:
		return rec.PresentAddress
	case config.ColPermanentAddress:
		return rec.PermanentAddress
	case config.ColReg:
		return rec.Reg
	case config.ColQualification:
		return rec.Qualification
	case config.ColMaritalStatus:
		return rec.MaritalStatus
	case config.ColDisability:
		return rec.Disability
	default:
		return rec.Extra[header]
	}
}

// ExportView streams every record of the view as CSV with a UTF-8 BOM.
// The context is checked between chunks so abandoned downloads stop early.
func ExportView(ctx context.Context, w io.Writer, v dataprocessing.View) error {
	var headers []string
	if ds := v.Dataset(); ds != nil {
		headers = ds.Headers
	}

	stream, err := NewStreamWriter(w, RecordHeaders(headers), true)
	if err != nil {
		return err
	}
	for i := 0; i < v.Len(); i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := stream.WriteRecord(RecordRow(v.Record(i), headers)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Flush()
}

// SummaryHeaders are the columns of ExportSummary
var SummaryHeaders = []string{"Table", "Category", "Count"}

// SummaryRecords flattens a summary into Table,Category,Count rows: the
// total, the literal age-group counts, then every frequency table.
func SummaryRecords(s domain.Summary) [][]string {
	records := [][]string{{"Total", "Total", formatInt(s.Total)}}
	for _, c := range s.AgeGroupCounts {
		records = append(records, []string{"Age Groups", c.Category, formatInt(c.Count)})
	}
	for _, table := range []domain.FrequencyTable{s.AgeGroups, s.Genders, s.MaritalStatus, s.Education, s.Disability} {
		for _, c := range table.Counts {
			records = append(records, []string{table.Title, c.Category, formatInt(c.Count)})
		}
	}
	return records
}

// ExportSummary writes SummaryRecords as CSV with a UTF-8 BOM
func ExportSummary(w io.Writer, s domain.Summary) error {
	return NewCSVWriter(nil).Write(w, WriteOptions{Headers: SummaryHeaders, Records: SummaryRecords(s), BOMPrefix: true})
}

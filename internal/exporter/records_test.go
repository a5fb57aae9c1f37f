package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crpdash/internal/dataprocessing"
	"crpdash/pkg/contracts/domain"
)

func testDataset() *domain.Dataset {
	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	raw := []domain.Record{
		{Row: 2, DateOfBirth: domain.NumberCell(1990), Gender: "M", PresentAddress: "G-9, Islamabad", Reg: "crpd", Qualification: "Matric", Disability: "Blind", Extra: map[string]string{"Name": "Ali"}},
		{Row: 3, DateOfBirth: domain.TextCell("n/a"), Gender: "F", PresentAddress: "Lahore", Reg: "NCRPD", Disability: "Deaf"},
	}
	return &domain.Dataset{
		Records: dataprocessing.DeriveAt(raw, today),
		Headers: []string{"Name", "Date of Birth", "Gender", "Present Address", "Reg", "Disability"},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, utf8BOM), "export starts with a BOM")
	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportView(t *testing.T) {
	var buf bytes.Buffer
	view := dataprocessing.FullView(testDataset())
	require.NoError(t, ExportView(context.Background(), &buf, view))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"Name", "Date of Birth", "Gender", "Present Address", "Reg", "Disability",
		"Age", "Age Group", "Gender (Normalized)", "In Islamabad", "Reg (Normalized)",
	}, rows[0])
	assert.Equal(t, []string{"Ali", "1990", "M", "G-9, Islamabad", "crpd", "Blind", "35", "18 to 60", "Male", "Yes", "CRPD"}, rows[1])
	assert.Equal(t, []string{"", "n/a", "F", "Lahore", "NCRPD", "Deaf", "Unknown", "Unknown", "Female", "No", "NCRPD"}, rows[2])
}

func TestExportViewCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := ExportView(ctx, &buf, dataprocessing.FullView(testDataset()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportSummary(t *testing.T) {
	view := dataprocessing.FullView(testDataset())
	summary := dataprocessing.Summarize(view, domain.DefaultSelection())

	var buf bytes.Buffer
	require.NoError(t, ExportSummary(&buf, summary))

	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, SummaryHeaders, rows[0])
	assert.Equal(t, []string{"Total", "Total", "2"}, rows[1])
	assert.Contains(t, rows, []string{"Age Groups", "18 to 60", "1"})
	assert.Contains(t, rows, []string{"Gender Distribution", "Female", "1"})
	assert.Contains(t, rows, []string{"Disability Type Distribution", "Blind", "1"})
}

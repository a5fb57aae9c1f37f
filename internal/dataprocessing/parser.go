package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"crpdash/internal/config"
	"crpdash/pkg/contracts/domain"
)

var (
	// ErrWorkbookNotFound is returned when the workbook path does not exist
	ErrWorkbookNotFound = errors.New("workbook not found")
	// ErrSheetNotFound is returned when the configured sheet is absent
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrMissingColumns is returned when required headers are absent
	ErrMissingColumns = errors.New("missing required columns")
)

// SheetNotFoundError names the sheet that was requested and the ones the
// workbook actually has.
type SheetNotFoundError struct {
	Sheet     string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found (available sheets: %s)", e.Sheet, strings.Join(e.Available, ", "))
}

// Is lets errors.Is match ErrSheetNotFound
func (e *SheetNotFoundError) Is(target error) bool { return target == ErrSheetNotFound }

// MissingColumnsError lists every required header absent from the sheet
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// Is lets errors.Is match ErrMissingColumns
func (e *MissingColumnsError) Is(target error) bool { return target == ErrMissingColumns }

// LoadOptions controls which part of the workbook is read
type LoadOptions struct {
	Path    string
	Sheet   string
	Columns string
	MaxRows int
}

// LoadOptionsFrom builds load options from the data config section
func LoadOptionsFrom(cfg config.DataConfig) LoadOptions {
	return LoadOptions{
		Path:    cfg.WorkbookPath,
		Sheet:   cfg.SheetName,
		Columns: cfg.Columns,
		MaxRows: cfg.MaxRows,
	}
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.Sheet == "" {
		o.Sheet = config.DefaultSheetName
	}
	if o.Columns == "" {
		o.Columns = config.DefaultColumnRange
	}
	if o.MaxRows <= 0 {
		o.MaxRows = config.DefaultMaxRows
	}
	return o
}

// Sheet is the raw content of the registration sheet, before derivation
type Sheet struct {
	Path    string
	Name    string
	Headers []string
	Records []domain.Record
	// BlankRows counts fully empty rows that were skipped
	BlankRows int
}

// LoadWorkbook reads the registration sheet into raw records. Only the
// configured column range is read, headers are trimmed and fully blank
// rows are skipped. At most MaxRows sheet rows after the header are read.
func LoadWorkbook(ctx context.Context, opts LoadOptions) (*Sheet, error) {
	opts = opts.withDefaults()

	firstCol, lastCol, err := parseColumnRange(opts.Columns)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(opts.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrWorkbookNotFound, opts.Path)
		}
		return nil, fmt.Errorf("failed to stat workbook: %w", err)
	}

	f, err := excelize.OpenFile(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(opts.Sheet); idx < 0 {
		return nil, &SheetNotFoundError{Sheet: opts.Sheet, Available: f.GetSheetList()}
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	// Two cursors over the same sheet: raw values for every column, and the
	// formatted text used to recognise date-formatted numbers.
	raw, err := f.Rows(opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", opts.Sheet, err)
	}
	defer raw.Close()
	formatted, err := f.Rows(opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", opts.Sheet, err)
	}
	defer formatted.Close()

	sheet := &Sheet{Path: opts.Path, Name: opts.Sheet}
	var cols columnIndex
	rowNum := 0

	for raw.Next() {
		formatted.Next()
		rowNum++

		if rowNum%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rawCells, err := raw.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rowNum, err)
		}
		fmtCells, err := formatted.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rowNum, err)
		}
		rawCells = sliceColumns(rawCells, firstCol, lastCol)
		fmtCells = sliceColumns(fmtCells, firstCol, lastCol)

		if rowNum == 1 {
			sheet.Headers = trimHeaders(rawCells)
			cols, err = indexColumns(sheet.Headers)
			if err != nil {
				return nil, err
			}
			continue
		}
		if rowNum-1 > opts.MaxRows {
			break
		}
		if isBlank(rawCells) {
			sheet.BlankRows++
			continue
		}

		dobText, err := storedAsText(f, opts.Sheet, firstCol+cols.pos[config.ColDateOfBirth], rowNum)
		if err != nil {
			return nil, err
		}
		sheet.Records = append(sheet.Records, cols.record(rowNum, rawCells, fmtCells, dobText, date1904))
	}
	if err := raw.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet %q: %w", opts.Sheet, err)
	}

	if rowNum == 0 {
		return nil, &MissingColumnsError{Missing: append([]string(nil), config.RequiredColumns...)}
	}

	slog.Debug("workbook loaded",
		slog.String("path", opts.Path),
		slog.String("sheet", opts.Sheet),
		slog.Int("records", len(sheet.Records)),
		slog.Int("blank_rows", sheet.BlankRows))

	return sheet, nil
}

// parseColumnRange turns "A:L" into 1-based column bounds
func parseColumnRange(spec string) (int, int, error) {
	first, last, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(spec)), ":")
	if !ok {
		last = first
	}
	from, err := excelize.ColumnNameToNumber(first)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column range %q: %w", spec, err)
	}
	to, err := excelize.ColumnNameToNumber(last)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column range %q: %w", spec, err)
	}
	if to < from {
		return 0, 0, fmt.Errorf("invalid column range %q", spec)
	}
	return from, to, nil
}

// sliceColumns keeps the cells in [from, to], padding short rows
func sliceColumns(cells []string, from, to int) []string {
	out := make([]string, to-from+1)
	for i := range out {
		if idx := from - 1 + i; idx < len(cells) {
			out[i] = cells[idx]
		}
	}
	return out
}

func trimHeaders(cells []string) []string {
	headers := make([]string, len(cells))
	for i, c := range cells {
		headers[i] = strings.TrimSpace(c)
	}
	return headers
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// columnIndex maps headers to positions within the read range
type columnIndex struct {
	headers []string
	pos     map[string]int
}

func indexColumns(headers []string) (columnIndex, error) {
	idx := columnIndex{headers: headers, pos: make(map[string]int, len(headers))}
	for i, h := range headers {
		if h == "" {
			continue
		}
		if _, dup := idx.pos[h]; !dup {
			idx.pos[h] = i
		}
	}

	var missing []string
	for _, name := range config.RequiredColumns {
		if _, ok := idx.pos[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return idx, &MissingColumnsError{Missing: missing}
	}
	return idx, nil
}

func (c columnIndex) get(cells []string, name string) string {
	return cells[c.pos[name]]
}

func (c columnIndex) record(row int, rawCells, fmtCells []string, dobText, date1904 bool) domain.Record {
	dob := c.pos[config.ColDateOfBirth]
	rec := domain.Record{
		Row:              row,
		DateOfBirth:      classifyCell(rawCells[dob], fmtCells[dob], dobText, date1904),
		Gender:           c.get(rawCells, config.ColGender),
		PresentAddress:   c.get(rawCells, config.ColPresentAddress),
		PermanentAddress: c.get(rawCells, config.ColPermanentAddress),
		Reg:              c.get(rawCells, config.ColReg),
		Qualification:    c.get(rawCells, config.ColQualification),
		MaritalStatus:    c.get(rawCells, config.ColMaritalStatus),
		Disability:       c.get(rawCells, config.ColDisability),
	}

	for i, h := range c.headers {
		if h == "" || isRequired(h) || c.pos[h] != i || rawCells[i] == "" {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[h] = rawCells[i]
	}
	return rec
}

func isRequired(header string) bool {
	for _, name := range config.RequiredColumns {
		if name == header {
			return true
		}
	}
	return false
}

var isoLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// storedAsText reports whether the cell at (col, row) holds a shared or
// inline string, so "1990" typed as text stays text.
func storedAsText(f *excelize.File, sheet string, col, row int) (bool, error) {
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return false, fmt.Errorf("failed to read cell type of %s: %w", axis, err)
	}
	return typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString, nil
}

// classifyCell recovers the stored type of a cell. String cells are text
// whatever they contain. For the rest, numbers whose number format renders
// them as something that is no longer a number are dates, boolean cells
// render as TRUE/FALSE while storing 1/0, and ISO date cells store an ISO
// timestamp.
func classifyCell(raw, formatted string, isText, date1904 bool) domain.Cell {
	if raw == "" {
		return domain.Cell{}
	}
	if isText {
		return domain.TextCell(raw)
	}

	if raw != formatted {
		if (raw == "0" || raw == "1") && (formatted == "TRUE" || formatted == "FALSE") {
			n := 0.0
			if raw == "1" {
				n = 1
			}
			return domain.Cell{Kind: domain.CellBool, Number: n}
		}
		if strings.Contains(raw, "T") {
			for _, layout := range isoLayouts {
				if t, err := time.Parse(layout, raw); err == nil {
					return domain.DateCell(t)
				}
			}
		}
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.TextCell(raw)
	}
	if raw != formatted && !numericLike(formatted) {
		if t, err := excelize.ExcelDateToTime(n, date1904); err == nil {
			return domain.DateCell(t)
		}
	}
	return domain.NumberCell(n)
}

// numericLike reports whether a formatted value still reads as a plain
// number once grouping, currency and percent decorations are removed.
func numericLike(s string) bool {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '$', '%', '(', ')':
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return false
	}
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}

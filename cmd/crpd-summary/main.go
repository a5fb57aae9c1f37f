// Command crpd-summary loads the registration workbook, applies the same
// filters as the dashboard and prints the summary tables. With -csv it
// writes the summary as CSV; with -records it exports the filtered records.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"crpdash/internal/config"
	"crpdash/internal/dataprocessing"
	apierrors "crpdash/internal/errors"
	"crpdash/internal/exporter"
	"crpdash/internal/infrastructure"
	"crpdash/internal/middleware"
	"crpdash/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// options holds the parsed command line
type options struct {
	workbook string
	sheet    string
	columns  string
	maxRows  int
	today    string
	csv      bool
	records  bool
	out      string
	sel      domain.Selection
}

// createOutput opens the -out file
var createOutput = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return exitError
	}
	logger := infrastructure.NewLoggerTo(stderr, cfg.Logging)
	ctx = infrastructure.EnsureTraceID(ctx)

	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if err := middleware.NewValidator().Struct(opts.sel); err != nil {
		fmt.Fprintf(stderr, "invalid filter: %s\n", describe(err))
		return exitUsage
	}

	now := time.Now
	if opts.today != "" {
		today, err := time.Parse("2006-01-02", opts.today)
		if err != nil {
			fmt.Fprintf(stderr, "invalid -today %q: want YYYY-MM-DD\n", opts.today)
			return exitUsage
		}
		now = func() time.Time { return today }
	}

	workbook := opts.workbook
	if paths, err := config.GetPaths(); err == nil {
		workbook = paths.ResolveWorkbook(workbook)
	}

	start := time.Now()
	sheet, err := dataprocessing.LoadWorkbook(ctx, dataprocessing.LoadOptions{
		Path:    workbook,
		Sheet:   opts.sheet,
		Columns: opts.columns,
		MaxRows: opts.maxRows,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load workbook", slog.String("path", workbook), slog.String("error", err.Error()))
		return exitError
	}

	ds := dataprocessing.NewDeriver(now).BuildDataset(sheet)
	view := dataprocessing.ApplyFilters(ds, opts.sel)
	summary := dataprocessing.Summarize(view, opts.sel)

	logger.InfoContext(ctx, "Workbook summarized",
		slog.String("path", workbook),
		slog.Int("records", ds.Len()),
		slog.Int("blank_rows", sheet.BlankRows),
		slog.Int("unknown_ages", dataprocessing.UnknownAges(ds)),
		slog.Int("matched", view.Len()),
		slog.Duration("duration", time.Since(start)))

	if err := write(ctx, opts, summary, view, stdout, logger); err != nil {
		logger.ErrorContext(ctx, "Failed to write output", slog.String("error", err.Error()))
		return exitError
	}
	return exitOK
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("crpd-summary", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := options{sel: domain.DefaultSelection()}
	fs.StringVar(&opts.workbook, "workbook", cfg.Data.WorkbookPath, "path of the registration workbook")
	fs.StringVar(&opts.sheet, "sheet", cfg.Data.SheetName, "sheet to read")
	fs.StringVar(&opts.columns, "columns", cfg.Data.Columns, "column range to read, e.g. A:L")
	fs.IntVar(&opts.maxRows, "max-rows", cfg.Data.MaxRows, "maximum sheet rows to read after the header")
	fs.StringVar(&opts.today, "today", "", "reference date for ages (YYYY-MM-DD, default today)")

	fs.StringVar(&opts.sel.AgeGroup, "age-group", domain.SelectAll, "age group: All, Under 17, 18 to 60, Above 60")
	fs.StringVar(&opts.sel.Gender, "gender", domain.SelectAll, "gender: All, Male, Female, Unknown")
	fs.BoolVar(&opts.sel.RegionOnly, "region", false, "only Islamabad residents")
	fs.StringVar(&opts.sel.RegType, "reg-type", domain.SelectAll, "registration type: All, CRPD, NCRPD")
	fs.StringVar(&opts.sel.Education, "education", domain.SelectAll, "education level, or All")

	fs.BoolVar(&opts.csv, "csv", false, "write the summary as CSV")
	fs.BoolVar(&opts.records, "records", false, "export the filtered records as CSV instead of the summary")
	fs.StringVar(&opts.out, "out", "", "output file (default stdout)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return opts, fmt.Errorf("unexpected arguments")
	}
	return opts, nil
}

func write(ctx context.Context, opts options, summary domain.Summary, view dataprocessing.View, stdout io.Writer, logger *slog.Logger) error {
	if opts.csv && !opts.records && opts.out != "" {
		return exporter.NewCSVWriter(logger).WriteFile(opts.out, exporter.WriteOptions{
			Headers:   exporter.SummaryHeaders,
			Records:   exporter.SummaryRecords(summary),
			BOMPrefix: true,
		})
	}

	if opts.out == "" {
		return writeReport(ctx, opts, summary, view, stdout)
	}

	f, err := createOutput(opts.out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	err = writeReport(ctx, opts, summary, view, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close output file: %w", cerr)
	}
	return err
}

func writeReport(ctx context.Context, opts options, summary domain.Summary, view dataprocessing.View, w io.Writer) error {
	switch {
	case opts.records:
		return exporter.ExportView(ctx, w, view)
	case opts.csv:
		return exporter.ExportSummary(w, summary)
	default:
		return printSummary(w, summary)
	}
}

// printSummary renders the summary as aligned plain-text tables
func printSummary(w io.Writer, s domain.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Total number of disabled individuals\t%d\n", s.Total)
	for _, c := range s.AgeGroupCounts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Category, c.Count)
	}

	for _, table := range []domain.FrequencyTable{s.AgeGroups, s.Genders, s.MaritalStatus, s.Education, s.Disability} {
		fmt.Fprintf(tw, "\n%s\n", table.Title)
		if len(table.Counts) == 0 {
			fmt.Fprintln(tw, "  (no records)")
			continue
		}
		for _, c := range table.Counts {
			fmt.Fprintf(tw, "  %s\t%d\n", c.Category, c.Count)
		}
	}
	return tw.Flush()
}

// describe lists the invalid filter flags of a validation error
func describe(err error) string {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	details, ok := apiErr.Details.(apierrors.ValidationErrors)
	if !ok || len(details.Errors) == 0 {
		return apiErr.Message
	}
	parts := make([]string, 0, len(details.Errors))
	for _, fe := range details.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

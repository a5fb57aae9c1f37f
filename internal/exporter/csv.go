package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Write writes headers and records to w
func (c *CSVWriter) Write(w io.Writer, options WriteOptions) error {
	stream, err := NewStreamWriter(w, options.Headers, options.BOMPrefix)
	if err != nil {
		return err
	}
	for i, record := range options.Records {
		if err := stream.WriteRecord(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Flush()
}

// WriteFile writes a CSV file, creating parent directories as needed
func (c *CSVWriter) WriteFile(filePath string, options WriteOptions) error {
	c.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := c.Write(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and the header row, then returns
// a writer for the records.
func NewStreamWriter(w io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush flushes buffered rows and reports any write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

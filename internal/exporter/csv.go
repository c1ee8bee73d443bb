package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/analyst-reporting/internal/types"
)

// DateLayout is the cleaned-data date format.
const DateLayout = "2006-01-02"

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

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Debug("writing CSV file",
		slog.String("path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return file.Close()
}

// WriteCleanedCSV writes the fact table with a BOM so Excel opens it as
// UTF-8.
func (w *CSVWriter) WriteCleanedCSV(filePath string, fact *types.FactTable) error {
	headers, records := FactRecords(fact)
	if err := w.WriteCSV(filePath, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	}); err != nil {
		return err
	}

	w.logger.Info("wrote cleaned data", slog.String("path", filePath), slog.Int("rows", len(records)))
	return nil
}

// FactRecords renders a fact table as CSV headers and records, columns in
// fact order.
func FactRecords(fact *types.FactTable) ([]string, [][]string) {
	headers := append([]string(nil), fact.Columns...)
	records := make([][]string, fact.Len)
	for i := 0; i < fact.Len; i++ {
		record := make([]string, len(headers))
		for c, name := range headers {
			record[c] = FormatCell(fact, name, i)
		}
		records[i] = record
	}
	return headers, records
}

// FormatCell renders one cell. Nulls are empty; decimals keep their exact
// value; dates without a time of day print as 2006-01-02.
func FormatCell(fact *types.FactTable, name string, i int) string {
	if fact.IsNull(name, i) {
		return ""
	}
	switch name {
	case types.FieldDate:
		return formatDate(fact.Date[i].Time)
	case types.FieldRevenue, types.FieldCost, types.FieldUnits:
		return fact.Decimals(name)[i].Decimal.String()
	}
	return fact.Strings(name)[i].String
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format("2006-01-02 15:04:05")
}

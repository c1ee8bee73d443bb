// =============================================================================
// Analyst Reporting Suite - Demo Inputs
// =============================================================================
//
// This module writes a small, deterministic pair of monthly extracts so the
// whole pipeline can be tried without real data:
//
//   jan_dump.csv   60 rows dated 2025-01-01
//   feb_dump.xlsx  55 rows dated 2025-02-01 (real date cells)
//
// Both use the messy headers seen in raw ERP dumps:
//   Transaction Date | " State " | Sales($) | COGS | Qty | SKU
//
// January carries two defects on purpose: a blank revenue cell on data
// row 3 and the date "not a date" on data row 7 (both zero-based).
//
// =============================================================================

package demo

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ginjaninja78/analyst-reporting/internal/exporter"
	"github.com/ginjaninja78/analyst-reporting/pkg/utils"
)

// Demo file names.
const (
	JanuaryFile  = "jan_dump.csv"
	FebruaryFile = "feb_dump.xlsx"
)

// Seed makes every generation identical.
const Seed = 42

// Row counts per month.
const (
	JanuaryRows  = 60
	FebruaryRows = 55
)

// Zero-based January rows that carry defects.
const (
	BlankRevenueRow = 3
	BadDateRow      = 7
)

// DumpHeaders are the raw headers of every demo and split file, in the
// order they are written by Generate.
var DumpHeaders = []string{"Transaction Date", " State ", "Sales($)", "COGS", "Qty", "SKU"}

var (
	regions  = []string{"NSW", "VIC", "QLD", "WA"}
	products = []string{"Widget A", "Widget B", "Widget C"}
)

type sale struct {
	region  string
	product string
	revenue float64
	cogs    float64
	qty     int
}

// Generate writes the demo extracts into dir, creating it if needed.
//
// RETURNS:
//   - The paths written, January first.
//   - An error if a file cannot be written.
func Generate(dir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := utils.NewFileManager(dir, "").EnsureInputDirectory(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(Seed))
	jan := sales(rng, JanuaryRows)
	feb := sales(rng, FebruaryRows)

	janPath := filepath.Join(dir, JanuaryFile)
	if err := writeJanuary(janPath, jan, logger); err != nil {
		return nil, err
	}

	febPath := filepath.Join(dir, FebruaryFile)
	if err := writeFebruary(febPath, feb); err != nil {
		return nil, err
	}

	logger.Info("generated demo inputs", slog.String("dir", dir), slog.Int("files", 2))
	return []string{janPath, febPath}, nil
}

func sales(rng *rand.Rand, n int) []sale {
	out := make([]sale, n)
	for i := range out {
		out[i] = sale{
			region:  regions[rng.Intn(len(regions))],
			revenue: round2(100 + rng.Float64()*1100),
			cogs:    round2(40 + rng.Float64()*660),
			qty:     1 + rng.Intn(20),
			product: products[rng.Intn(len(products))],
		}
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func writeJanuary(path string, rows []sale, logger *slog.Logger) error {
	records := make([][]string, len(rows))
	for i, s := range rows {
		date := "2025-01-01"
		if i == BadDateRow {
			date = "not a date"
		}
		revenue := strconv.FormatFloat(s.revenue, 'f', 2, 64)
		if i == BlankRevenueRow {
			revenue = ""
		}
		records[i] = []string{
			date,
			s.region,
			revenue,
			strconv.FormatFloat(s.cogs, 'f', 2, 64),
			strconv.Itoa(s.qty),
			s.product,
		}
	}

	err := exporter.NewCSVWriter(logger).WriteCSV(path, exporter.WriteOptions{
		Headers: DumpHeaders,
		Records: records,
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeFebruary(path string, rows []sale) error {
	date := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

	cells := make([][]any, len(rows))
	for i, s := range rows {
		cells[i] = []any{date, s.region, s.revenue, s.cogs, s.qty, s.product}
	}

	if err := writeWorkbook(path, DumpHeaders, cells); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

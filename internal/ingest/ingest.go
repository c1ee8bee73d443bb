// =============================================================================
// Analyst Reporting Suite - Ingest Module
// =============================================================================
//
// This module turns a folder of monthly extracts into one raw table.
//
// INGEST PROCESS:
//   1. Discover .csv, .xlsx and .xls files recursively, sorted by path
//   2. Read files concurrently (bounded by MaxConcurrency)
//   3. Tag every row with its source file name (lineage)
//   4. Concatenate in discovery order with a union of columns
//
// Reading order never affects the result: tables are assembled in
// discovery order regardless of which read finishes first.
//
// =============================================================================

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/analyst-reporting/internal/csvparser"
	"github.com/ginjaninja78/analyst-reporting/internal/types"
	"github.com/ginjaninja78/analyst-reporting/internal/xlsxparser"
	"github.com/ginjaninja78/analyst-reporting/pkg/utils"
)

// ErrNoInputFiles is returned when there is nothing to read.
var ErrNoInputFiles = errors.New("no input files found")

// Options controls Load.
type Options struct {
	// MaxConcurrency bounds the reads in flight. Values below 1 mean 1.
	MaxConcurrency int

	// ContinueOnError skips unreadable files instead of failing.
	ContinueOnError bool

	// CSV holds the field splitting settings for .csv files.
	CSV csvparser.Settings

	Logger *slog.Logger
}

// Skipped is a file that could not be read.
type Skipped struct {
	Path string
	Err  error
}

// Result is the outcome of Load.
type Result struct {
	// Table is the concatenated raw table, including source_file.
	Table *types.Table

	// FilesRead lists the files that contributed rows, in discovery order.
	FilesRead []string

	// Skipped lists unreadable files when ContinueOnError is set.
	Skipped []Skipped
}

// =============================================================================
// DISCOVERY
// =============================================================================

// Discover lists the extracts under dir. A missing directory yields an
// empty list.
func Discover(dir string) ([]string, error) {
	return utils.NewFileManager(dir, "").DiscoverInputFiles(utils.InputExtensions...)
}

// ReadFile reads one extract, picking the reader by extension.
func ReadFile(path string, settings csvparser.Settings) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvparser.Parse(path, settings)
	case ".xlsx", ".xls":
		return xlsxparser.Parse(path)
	}
	return nil, fmt.Errorf("%w: %s", xlsxparser.ErrUnsupportedFormat, filepath.Base(path))
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads every file and concatenates the results.
//
// PARAMETERS:
//   - ctx: Cancels outstanding reads.
//   - files: Paths in the order they should be concatenated.
//   - opts: Concurrency and error handling.
//
// RETURNS:
//   - The concatenated table with lineage, and the per-file outcome.
//   - ErrNoInputFiles when files is empty or nothing could be read; the
//     first read error when ContinueOnError is off.
func Load(ctx context.Context, files []string, opts Options) (*Result, error) {
	if len(files) == 0 {
		return nil, ErrNoInputFiles
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	settings := opts.CSV
	if settings.Delimiter == "" {
		settings = csvparser.DefaultSettings()
	}

	tables := make([]*types.Table, len(files))
	readErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			table, err := ReadFile(path, settings)
			if err != nil {
				if opts.ContinueOnError {
					readErrs[i] = err
					return nil
				}
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			logger.Debug("read input file",
				slog.String("path", path),
				slog.Int("rows", table.RowCount()),
				slog.Int("columns", len(table.Columns)))
			tables[i] = WithSourceFile(table, filepath.Base(path))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	var read []*types.Table
	for i, path := range files {
		if readErrs[i] != nil {
			logger.Warn("skipping unreadable input file",
				slog.String("path", path),
				slog.String("error", readErrs[i].Error()))
			result.Skipped = append(result.Skipped, Skipped{Path: path, Err: readErrs[i]})
			continue
		}
		read = append(read, tables[i])
		result.FilesRead = append(result.FilesRead, path)
	}

	if len(read) == 0 {
		return result, fmt.Errorf("%w: none of %d files could be read", ErrNoInputFiles, len(files))
	}

	result.Table = Concat(read)
	return result, nil
}

// WithSourceFile returns t with a source_file column holding name on every
// row. An existing source_file column is replaced.
func WithSourceFile(t *types.Table, name string) *types.Table {
	n := t.RowCount()
	values := make([]any, n)
	for i := range values {
		values[i] = name
	}
	lineage := types.Column{Name: types.FieldSourceFile, Values: values}

	out := &types.Table{Columns: make([]types.Column, 0, len(t.Columns)+1)}
	replaced := false
	for _, c := range t.Columns {
		if c.Name == types.FieldSourceFile && !replaced {
			out.Columns = append(out.Columns, lineage)
			replaced = true
			continue
		}
		out.Columns = append(out.Columns, c)
	}
	if !replaced {
		out.Columns = append(out.Columns, lineage)
	}
	return out
}

// =============================================================================
// CONCATENATION
// =============================================================================

// slot identifies the k-th column of a given name, so repeated raw headers
// line up across files instead of collapsing into one.
type slot struct {
	name       string
	occurrence int
}

// Concat stacks tables row-wise. The result has the union of columns in
// first-appearance order; cells a table does not have are null.
func Concat(tables []*types.Table) *types.Table {
	var order []slot
	index := make(map[slot]int)
	total := 0

	for _, t := range tables {
		seen := make(map[string]int)
		for _, c := range t.Columns {
			s := slot{name: c.Name, occurrence: seen[c.Name]}
			seen[c.Name]++
			if _, ok := index[s]; !ok {
				index[s] = len(order)
				order = append(order, s)
			}
		}
		total += t.RowCount()
	}

	out := &types.Table{Columns: make([]types.Column, len(order))}
	for i, s := range order {
		out.Columns[i] = types.Column{Name: s.name, Values: make([]any, total)}
	}

	offset := 0
	for _, t := range tables {
		seen := make(map[string]int)
		for _, c := range t.Columns {
			s := slot{name: c.Name, occurrence: seen[c.Name]}
			seen[c.Name]++
			copy(out.Columns[index[s]].Values[offset:], c.Values)
		}
		offset += t.RowCount()
	}

	return out
}

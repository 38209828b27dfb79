// Package csvfile writes experiment results as plain comma separated rows
// with a fixed column schema.
//
// Values are never quoted, so they must not contain commas or newlines.
package csvfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
)

var (
	// ErrHeaderMismatch is returned when an existing file's first line does
	// not list the configured columns.
	ErrHeaderMismatch = errors.New("csv header does not match columns")
	// ErrInvalidRecord is returned by AddRecord for a record whose keys are
	// not exactly the configured columns.
	ErrInvalidRecord = errors.New("record columns do not match")
	// ErrDuplicateColumn is returned by New when a column name repeats.
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Record maps a column name to the value written under it.
type Record map[string]any

// CsvFile appends records to a results file.
type CsvFile struct {
	filename    string
	columnNames []string
	log         *slog.Logger
}

// Option configures a CsvFile.
type Option func(*CsvFile)

// WithLogger sets the logger used for file lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *CsvFile) {
		c.log = l
	}
}

// New opens filename for appending records with the given columns.
//
// The header line is written, truncating the file, when the file does not
// exist or overwrite is set. Otherwise the existing header is checked and
// the file is left untouched. Column names must be unique.
func New(filename string, columnNames []string, overwrite bool, opts ...Option) (*CsvFile, error) {
	c := &CsvFile{
		filename:    filename,
		columnNames: append([]string(nil), columnNames...),
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	seen := make(map[string]bool, len(columnNames))
	for _, name := range columnNames {
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = true
	}

	_, err := os.Stat(filename)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}

	if overwrite || !exists {
		header := strings.Join(c.columnNames, ",") + "\n"
		if err := writeLine(header, filename, os.O_TRUNC); err != nil {
			return nil, err
		}
		c.log.Debug("results file created", "file", filename, "columns", c.columnNames, "overwrite", overwrite)
		return c, nil
	}

	header, err := readFirstLine(filename)
	if err != nil {
		return nil, err
	}
	if err := ValidateHeader(header, c.columnNames); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	c.log.Debug("appending to existing results file", "file", filename)
	return c, nil
}

// Filename returns the path records are appended to.
func (c *CsvFile) Filename() string {
	return c.filename
}

// ColumnNames returns a copy of the configured columns in write order.
func (c *CsvFile) ColumnNames() []string {
	return append([]string(nil), c.columnNames...)
}

// ValidateColumns reports whether the record's keys are exactly the
// configured columns, in any order.
func (c *CsvFile) ValidateColumns(record Record) bool {
	if len(record) != len(c.columnNames) {
		return false
	}
	for _, name := range c.columnNames {
		if _, ok := record[name]; !ok {
			return false
		}
	}
	return true
}

// AddRecord appends one row holding the record's values in column order.
func (c *CsvFile) AddRecord(record Record) error {
	if !c.ValidateColumns(record) {
		return fmt.Errorf("%w: got %v, want %v", ErrInvalidRecord, keys(record), c.columnNames)
	}

	fields := make([]string, len(c.columnNames))
	for i, name := range c.columnNames {
		fields[i] = FormatValue(record[name])
	}
	return writeLine(strings.Join(fields, ",")+"\n", c.filename, os.O_APPEND)
}

// ValidateHeader checks that headerLine names columnNames in the same order.
func ValidateHeader(headerLine string, columnNames []string) error {
	got := strings.Split(strings.TrimRight(headerLine, "\r\n"), ",")
	if len(got) != len(columnNames) {
		return fmt.Errorf("%w: got %v, want %v", ErrHeaderMismatch, got, columnNames)
	}
	for i := range got {
		if got[i] != columnNames[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i, got[i], columnNames[i])
		}
	}
	return nil
}

func writeLine(line, filename string, mode int) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|mode, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return f.Close()
}

func readFirstLine(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read header of %s: %w", filename, err)
	}
	return line, nil
}

func keys(r Record) []string {
	return slices.Sorted(maps.Keys(r))
}

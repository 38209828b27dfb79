package csvfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"ANY_COLUMN", "OTHER_COLUMN"}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewCreatesFileWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	c, err := New(path, columns, false)
	require.NoError(t, err)

	assert.Equal(t, path, c.Filename())
	assert.Equal(t, columns, c.ColumnNames())
	assert.Equal(t, "ANY_COLUMN,OTHER_COLUMN\n", readFile(t, path))
}

func TestNewKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	existing := "ANY_COLUMN,OTHER_COLUMN\n1,2\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	_, err := New(path, columns, false)
	require.NoError(t, err)

	assert.Equal(t, existing, readFile(t, path))
}

func TestNewOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale,content\n1,2\n"), 0o644))

	_, err := New(path, columns, true)
	require.NoError(t, err)

	assert.Equal(t, "ANY_COLUMN,OTHER_COLUMN\n", readFile(t, path))
}

func TestNewRejectsMismatchedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	existing := "OTHER_COLUMN,ANY_COLUMN\n"
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	_, err := New(path, columns, false)
	require.ErrorIs(t, err, ErrHeaderMismatch)
	assert.Equal(t, existing, readFile(t, path), "file must not be written")
}

func TestNewRejectsEmptyExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := New(path, columns, false)
	assert.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	_, err := New(path, []string{"ANY_COLUMN", "ANY_COLUMN"}, false)
	require.ErrorIs(t, err, ErrDuplicateColumn)
	assert.NoFileExists(t, path)
}

func TestValidateColumns(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "results.csv"), columns, false)
	require.NoError(t, err)

	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{"same columns", Record{"ANY_COLUMN": "val", "OTHER_COLUMN": "val"}, true},
		{"different order", Record{"OTHER_COLUMN": "val", "ANY_COLUMN": "val"}, true},
		{"missing column", Record{"ANY_COLUMN": "val"}, false},
		{"additional column", Record{"ANY_COLUMN": "val", "OTHER_COLUMN": "val", "WRONG": "val"}, false},
		{"renamed column", Record{"ANY_COLUMN": "val", "WRONG": "val"}, false},
		{"empty", Record{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ValidateColumns(tt.record))
		})
	}
}

func TestAddRecordAppendsRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	c, err := New(path, columns, false)
	require.NoError(t, err)

	require.NoError(t, c.AddRecord(Record{"OTHER_COLUMN": "b", "ANY_COLUMN": "a"}))
	require.NoError(t, c.AddRecord(Record{"ANY_COLUMN": 1.0, "OTHER_COLUMN": nil}))

	assert.Equal(t, "ANY_COLUMN,OTHER_COLUMN\na,b\n1.0,None\n", readFile(t, path))
}

func TestAddRecordRejectsInvalidColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	c, err := New(path, columns, false)
	require.NoError(t, err)

	err = c.AddRecord(Record{"ANY_COLUMN": "val"})
	require.ErrorIs(t, err, ErrInvalidRecord)
	assert.Equal(t, "ANY_COLUMN,OTHER_COLUMN\n", readFile(t, path))
}

func TestAddRecordAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	first, err := New(path, columns, false)
	require.NoError(t, err)
	require.NoError(t, first.AddRecord(Record{"ANY_COLUMN": 1, "OTHER_COLUMN": true}))

	second, err := New(path, columns, false)
	require.NoError(t, err)
	require.NoError(t, second.AddRecord(Record{"ANY_COLUMN": 2, "OTHER_COLUMN": false}))

	assert.Equal(t, "ANY_COLUMN,OTHER_COLUMN\n1,True\n2,False\n", readFile(t, path))
}

func TestValidateHeader(t *testing.T) {
	header := "ANY_COLUMN,OTHER_COLUMN\n"

	assert.NoError(t, ValidateHeader(header, []string{"ANY_COLUMN", "OTHER_COLUMN"}))
	assert.NoError(t, ValidateHeader("ANY_COLUMN,OTHER_COLUMN\r\n", []string{"ANY_COLUMN", "OTHER_COLUMN"}))

	assert.ErrorIs(t, ValidateHeader(header, []string{"ANY_COLUMN"}), ErrHeaderMismatch)
	assert.ErrorIs(t, ValidateHeader(header, []string{"ANY_COLUMN", "SHOULDNT_BE_HERE"}), ErrHeaderMismatch)
	assert.ErrorIs(t, ValidateHeader(header, []string{"OTHER_COLUMN", "ANY_COLUMN"}), ErrHeaderMismatch)
	assert.ErrorIs(t, ValidateHeader(header, []string{"ANY_COLUMN", "OTHER_COLUMN", "THIRD"}), ErrHeaderMismatch)
}

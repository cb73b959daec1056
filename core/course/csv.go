package course

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aulaproject/aula/core"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// SchemaError is the single fatal ingestion failure: required CSV columns
// are missing from the header. No rows are processed past it.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid CSV: missing required columns: %s", strings.Join(e.Missing, ", "))
}

func IsSchemaError(err error) bool {
	_, ok := err.(*SchemaError)
	return ok
}

// Row is one labeled CSV record. Num starts at 2 (row 1 is the header).
type Row struct {
	Num    int
	Err    error // row could not be read; fields is empty
	fields map[string]string
}

// Get returns the trimmed cell under the given column (case-insensitive),
// or "" when the column is absent from this row.
func (r Row) Get(col string) string {
	return r.fields[strings.ToLower(col)]
}

// csvFile decodes a raw buffer into a lazy, single-pass row sequence.
// Decoding is best-effort: a BOM is stripped and invalid byte sequences are
// replaced, never rejected.
type csvFile struct {
	reader *csv.Reader
	header []string
	num    int
}

// newCSVFile validates the header against the required column set before any
// row can be read; a failed check yields *SchemaError.
func newCSVFile(data []byte, required ...string) (*csvFile, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("�"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil { // empty or unreadable header: all required columns missing
		missing := make([]string, len(required))
		copy(missing, required)
		sort.Strings(missing)
		return nil, &SchemaError{Missing: missing}
	}
	for i, col := range header {
		header[i] = core.CleanString(col, true /* lower */)
	}

	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range required {
		if !present[strings.ToLower(col)] {
			missing = append(missing, strings.ToLower(col))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &SchemaError{Missing: missing}
	}

	return &csvFile{reader: r, header: header, num: 1}, nil
}

// Next yields the next row; ok is false once the sequence is exhausted.
// A malformed record is returned with Err set so callers can collect it as a
// row error and keep going.
func (f *csvFile) Next() (row Row, ok bool) {
	record, err := f.reader.Read()
	if err == io.EOF {
		return Row{}, false
	}
	f.num++
	if err != nil {
		return Row{Num: f.num, Err: err}, true
	}

	fields := make(map[string]string, len(f.header))
	for i, col := range f.header {
		if i < len(record) {
			fields[col] = core.CleanString(record[i])
		} else {
			fields[col] = ""
		}
	}
	return Row{Num: f.num, fields: fields}, true
}

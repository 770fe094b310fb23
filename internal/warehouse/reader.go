package warehouse

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Record holds the raw text values of one extract row, aligned with the
// required columns the reader was opened with. A nil entry means the field
// was absent (a row shorter than the header); an empty string is a field
// that was present but empty.
type Record []*string

// ExtractReader streams one tab-separated extract file. Each open is a
// fresh pass over the file; row order is preserved.
type ExtractReader struct {
	path    string
	file    *os.File
	csv     *csv.Reader
	colIdx  []int // file position of each required column
	rowNum  int64
	columns []string
}

// OpenExtract opens path and validates that every required column appears
// in the header. Unknown extra columns are ignored; column order in the
// file is irrelevant.
func OpenExtract(path string, columns []string) (*ExtractReader, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingFileError{Path: path}
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	bufReader := bufio.NewReaderSize(file, 256*1024)

	// Skip UTF-8 BOM if present
	bom, err := bufReader.Peek(3)
	if err == nil && len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		bufReader.Discard(3)
	}

	reader := csv.NewReader(bufReader)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	r := &ExtractReader{
		path:    path,
		file:    file,
		csv:     reader,
		columns: columns,
	}

	if err := r.readHeader(); err != nil {
		file.Close()
		return nil, err
	}

	return r, nil
}

func (r *ExtractReader) readHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", r.path, err)
	}
	r.rowNum++

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	missing := make(map[string]bool)
	r.colIdx = make([]int, len(r.columns))
	for i, c := range r.columns {
		pos, ok := idx[c]
		if !ok {
			missing[c] = true
			pos = -1
		}
		r.colIdx[i] = pos
	}
	if len(missing) > 0 {
		return &SchemaMismatchError{Path: r.path, Missing: sortedMissing(missing)}
	}
	return nil
}

// Next returns the next data row, or io.EOF when the file is exhausted.
func (r *ExtractReader) Next() (Record, error) {
	row, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	r.rowNum++

	rec := make(Record, len(r.colIdx))
	for i, pos := range r.colIdx {
		if pos < len(row) {
			v := row[pos]
			rec[i] = &v
		}
	}
	return rec, nil
}

// RowNum returns the current file row number (1-based, header included).
func (r *ExtractReader) RowNum() int64 {
	return r.rowNum
}

func (r *ExtractReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

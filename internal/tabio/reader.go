// Package tabio reads the TAB-separated tables every pipeline input
// arrives as: window annotations, count matrices, sample tables, height
// matrices and regression result files. Files may be plain or gzipped;
// compression is detected from the magic bytes, not the file name.
package tabio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table is a fully read TAB-separated table with a header row.
type Table struct {
	Source string
	Header []string
	Rows   [][]string

	colIdx map[string]int
}

// Reader streams lines from a possibly gzipped file.
type Reader struct {
	scanner    *bufio.Scanner
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	source     string
}

// Open opens a TAB-separated file for reading. Gzipped files are
// detected by their magic number (0x1f, 0x8b) and decompressed
// transparently. Use "-" for stdin.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return newReader(os.Stdin, nil, nil, "stdin"), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}

	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read table header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek table: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return newReader(gz, file, gz, path), nil
	}
	return newReader(file, file, nil, path), nil
}

func newReader(r io.Reader, file *os.File, gz *gzip.Reader, source string) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{scanner: sc, file: file, gzipReader: gz, source: source}
}

// Next returns the fields of the next non-empty, non-comment line,
// or nil at end of input.
func (r *Reader) Next() ([]string, error) {
	for r.scanner.Scan() {
		r.lineNumber++
		line := strings.TrimRight(r.scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Split(line, "\t"), nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s line %d: %w", r.source, r.lineNumber, err)
	}
	return nil, nil
}

// Line returns the number of the most recently read line.
func (r *Reader) Line() int {
	return r.lineNumber
}

// Close releases the underlying file handles.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadTable reads an entire file into memory. The first non-comment
// line is the header; every following row must have the same number of
// fields as the header.
func ReadTable(path string) (*Table, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	header, err := r.Next()
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, fmt.Errorf("%s: no header line found", path)
	}

	t := &Table{Source: path, Header: header, colIdx: make(map[string]int, len(header))}
	for i, col := range header {
		t.colIdx[col] = i
	}

	for {
		fields, err := r.Next()
		if err != nil {
			return nil, err
		}
		if fields == nil {
			break
		}
		if len(fields) != len(header) {
			return nil, fmt.Errorf("%s line %d: %d fields, header has %d",
				path, r.Line(), len(fields), len(header))
		}
		t.Rows = append(t.Rows, fields)
	}
	return t, nil
}

// Col returns the index of a header column, or -1 when absent.
func (t *Table) Col(name string) int {
	if i, ok := t.colIdx[name]; ok {
		return i
	}
	return -1
}

// MissingColumns returns every name in required that is absent from the
// header, preserving the order of required.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if t.Col(name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

// Package matrix implements component B of the SNPsea statistical engine:
// loading the gene-by-condition GCT matrix and conditioning it into
// per-column specificity percentiles (spec.md §4.B).
package matrix

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/bio/geneset"
	"github.com/klauspost/compress/gzip"
)

const gctMagic = "#1.2"

// LoadGCT parses a GCT-format gene-by-condition matrix from r (spec.md §6).
func LoadGCT(r io.Reader) (*geneset.Matrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024*1024)

	if !scanner.Scan() {
		return nil, errors.E("malformed-gct", "empty file")
	}
	if strings.TrimSpace(scanner.Text()) != gctMagic {
		return nil, errors.E("malformed-gct", "missing #1.2 magic")
	}

	if !scanner.Scan() {
		return nil, errors.E("malformed-gct", "missing dimension line")
	}
	dims := strings.Fields(scanner.Text())
	if len(dims) != 2 {
		return nil, errors.E("malformed-gct", "dimension line must be 'R\\tC'")
	}
	rows, err := strconv.Atoi(dims[0])
	if err != nil {
		return nil, errors.E(err, "malformed-gct", "bad row count")
	}
	cols, err := strconv.Atoi(dims[1])
	if err != nil {
		return nil, errors.E(err, "malformed-gct", "bad column count")
	}

	if !scanner.Scan() {
		return nil, errors.E("malformed-gct", "missing header line")
	}
	header := strings.Split(scanner.Text(), "\t")
	if len(header) != cols+2 {
		return nil, errors.E("malformed-gct", "header column count mismatch")
	}
	colNames := make([]string, cols)
	copy(colNames, header[2:])

	m := &geneset.Matrix{
		Rows:    rows,
		Cols:    cols,
		Values:  make([]float64, rows*cols),
		RowName: make([]string, rows),
		ColName: colNames,
	}

	for r := 0; r < rows; r++ {
		if !scanner.Scan() {
			return nil, errors.E("malformed-gct", "fewer data rows than declared")
		}
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != cols+2 {
			return nil, errors.E("malformed-gct", "row column count mismatch at row", strconv.Itoa(r))
		}
		m.RowName[r] = fields[0]
		for c := 0; c < cols; c++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[c+2]), 64)
			if err != nil {
				return nil, errors.E(err, "malformed-gct", "non-numeric value")
			}
			m.Set(r, c, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "malformed-gct", "scan error")
	}
	return m, nil
}

// LoadGCTFromPath opens path (transparently gzip-decompressing) and parses
// it as GCT.
func LoadGCTFromPath(path string) (m *geneset.Matrix, err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return nil, errors.E(err, "missing-input-file", path)
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, gerr := gzip.NewReader(reader)
		if gerr != nil {
			return nil, errors.E(gerr, "malformed-gct", "gzip", path)
		}
		defer gz.Close()
		reader = gz
	}
	return LoadGCT(reader)
}

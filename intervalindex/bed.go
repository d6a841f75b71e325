package intervalindex

import (
	"bufio"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// Record is one BED4+ line: chrom, 0-based [start, end), and a name. Columns
// past the fourth are ignored, matching spec.md §6 ("additional columns
// ignored").
type Record struct {
	Chrom string
	Start int64
	End   int64
	Name  string
}

// getTokens splits curLine on runs of bytes <= ' ', writing up to len(tokens)
// fields into tokens and returning how many were found. Adapted from
// grailbio/bio's interval.getTokens (interval/bedunion.go), which favors this
// hand-rolled scan over strings.Fields/strings.Split for BED's 3-4 leading
// columns.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// ScanBED4 reads BED4+ records from r, invoking fn for each. Lines with fewer
// than four whitespace-delimited fields are skipped, as are blank lines and
// lines beginning with '#' (matching snplist.go's comment convention).
func ScanBED4(r io.Reader, fn func(Record) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var fields [4][]byte
	tokens := fields[:]
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		n := getTokens(tokens, line)
		if n < 4 {
			continue
		}
		start, err := strconv.ParseInt(string(fields[1]), 10, 64)
		if err != nil {
			return errors.E(err, "malformed BED start")
		}
		end, err := strconv.ParseInt(string(fields[2]), 10, 64)
		if err != nil {
			return errors.E(err, "malformed BED end")
		}
		rec := Record{
			Chrom: string(fields[0]),
			Start: start,
			End:   end,
			Name:  string(fields[3]),
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ScanBED4FromPath opens path (transparently gzip-decompressing if named
// accordingly) and scans it as BED4+. Mirrors
// interval.NewBEDUnionFromPath's open/gzip-detect pattern.
func ScanBED4FromPath(path string, fn func(Record) error) (err error) {
	ctx := vcontext.Background()
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return errors.E(err, "open", path)
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
			return errors.E(gerr, "gzip", path)
		}
		defer gz.Close()
		reader = gz
	}
	return ScanBED4(reader, fn)
}

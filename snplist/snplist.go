// Package snplist reads the plain-text list inputs SNPsea consumes: the
// user SNP list, the null SNP pool, and the conditions list (spec.md §6).
//
// The source tool detects a header row only when the first row contains one
// of a fixed set of known tokens; otherwise the first row is treated as
// data. Whether this was intentional is unclear in the original — this port
// preserves the behavior rather than "fixing" it (spec.md §9, Open Question
// 2).
package snplist

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// headerTokens are the literal tokens that trigger header auto-detection
// (spec.md §6: "a header row is auto-detected if the first row contains any
// of the literal tokens SNP, snp, name, marker").
var headerTokens = map[string]bool{
	"SNP": true, "snp": true, "name": true, "marker": true,
}

// looksLikeHeader reports whether fields (the first row's tab-delimited
// fields) contains any header token.
func looksLikeHeader(fields []string) bool {
	for _, f := range fields {
		if headerTokens[strings.TrimSpace(f)] {
			return true
		}
	}
	return false
}

// Read reads one identifier per line from the first tab-delimited column of
// r. Lines beginning with '#' are comments; a header row is dropped if
// detected per looksLikeHeader.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var out []string
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if first {
			first = false
			if looksLikeHeader(fields) {
				continue
			}
		}
		out = append(out, strings.TrimSpace(fields[0]))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "scan error")
	}
	return out, nil
}

// ReadFromPath opens path (transparently gzip-decompressing) and reads it as
// a SNP/null list.
func ReadFromPath(path string) (names []string, err error) {
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
			return nil, errors.E(gerr, "gzip", path)
		}
		defer gz.Close()
		reader = gz
	}
	return Read(reader)
}

// RandomN parses the --snps pseudo-argument "randomN" (spec.md §6), returning
// N and true if src matches that form.
func RandomN(src string) (n int, ok bool, err error) {
	const prefix = "random"
	if !strings.HasPrefix(src, prefix) {
		return 0, false, nil
	}
	numStr := src[len(prefix):]
	if numStr == "" {
		return 0, false, nil
	}
	n, err = strconv.Atoi(numStr)
	if err != nil {
		return 0, true, errors.E(err, "invalid-parameter", "malformed randomN argument", src)
	}
	if n <= 0 {
		return 0, true, errors.E("invalid-parameter", "randomN must be positive", src)
	}
	return n, true, nil
}

// ReadConditions reads one condition (column) name per line.
func ReadConditions(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var out []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// ReadConditionsFromPath opens path and reads its condition-name list.
func ReadConditionsFromPath(path string) (names []string, err error) {
	if path == "" {
		return nil, nil
	}
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
	return ReadConditions(infile.Reader(ctx))
}

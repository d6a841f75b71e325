// Package snpsea wires components A-F (intervalindex, matrix, resolve,
// nullpool, score, perm) into the end-to-end run described by spec.md §6: it
// owns the run context, the setup phase, and the four result files plus
// args.txt/log.txt.
package snpsea

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// Default parameter values (spec.md §6).
const (
	DefaultSlop            = 250000
	DefaultThreads         = 1
	DefaultNullSnpsets     = 10
	DefaultMinObservations = 25
	DefaultMaxIterations   = 1000
	DefaultScoreMethod     = "single"
)

// Args is the full, resolved set of CLI parameters for one run (spec.md §6).
// It is written to args.txt and is re-parsable from it, satisfying the
// round-trip property in spec.md §8.
type Args struct {
	Snps           string
	GeneMatrix     string
	GeneIntervals  string
	SnpIntervals   string
	NullSnps       string
	Out            string
	Conditions     []string
	Slop           int64
	Threads        int
	NullSnpsets    int
	MinObservations int
	MaxIterations  int
	Score          string
}

// WithDefaults returns a copy of a with every zero-valued optional field
// replaced by its documented default (spec.md §6).
func (a Args) WithDefaults() Args {
	if a.Slop == 0 {
		a.Slop = DefaultSlop
	}
	if a.Threads == 0 {
		a.Threads = DefaultThreads
	}
	if a.NullSnpsets == 0 {
		a.NullSnpsets = DefaultNullSnpsets
	}
	if a.MinObservations == 0 && a.MaxIterations == 0 {
		// Both unset: use documented defaults. If the caller explicitly set
		// MinObservations to 0 (a legal boundary value per spec.md §8), they
		// must also set MaxIterations so this branch is not taken.
		a.MinObservations = DefaultMinObservations
	}
	if a.MaxIterations == 0 {
		a.MaxIterations = DefaultMaxIterations
	}
	if a.Score == "" {
		a.Score = DefaultScoreMethod
	}
	return a
}

// Validate checks the invariant-parameter error class (spec.md §7:
// "invalid-parameter").
func (a Args) Validate() error {
	if a.Snps == "" || a.GeneMatrix == "" || a.GeneIntervals == "" || a.SnpIntervals == "" || a.NullSnps == "" || a.Out == "" {
		return errors.E("invalid-parameter", "missing required argument")
	}
	if a.MinObservations >= a.MaxIterations {
		return errors.E("invalid-parameter", "--min-observations must be less than --max-iterations")
	}
	if a.Slop < 0 {
		return errors.E("invalid-parameter", "--slop must be non-negative")
	}
	if a.Threads < 1 {
		return errors.E("invalid-parameter", "--threads must be positive")
	}
	if a.NullSnpsets < 0 {
		return errors.E("invalid-parameter", "--null-snpsets must be non-negative")
	}
	if a.MaxIterations <= 0 {
		return errors.E("invalid-parameter", "--max-iterations must be positive")
	}
	return nil
}

// argLines renders a as sorted "key=value" lines, with Conditions rendered
// as a single comma-joined value, for a deterministic, diffable args.txt.
func (a Args) argLines() []string {
	kv := map[string]string{
		"snps":             a.Snps,
		"gene-matrix":      a.GeneMatrix,
		"gene-intervals":   a.GeneIntervals,
		"snp-intervals":    a.SnpIntervals,
		"null-snps":        a.NullSnps,
		"out":              a.Out,
		"condition":        strings.Join(a.Conditions, ","),
		"slop":             strconv.FormatInt(a.Slop, 10),
		"threads":          strconv.Itoa(a.Threads),
		"null-snpsets":     strconv.Itoa(a.NullSnpsets),
		"min-observations": strconv.Itoa(a.MinObservations),
		"max-iterations":   strconv.Itoa(a.MaxIterations),
		"score":            a.Score,
	}
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s=%s", k, kv[k]))
	}
	return lines
}

// WriteArgs writes a's resolved parameters to w, one "key=value" line each,
// sorted by key (spec.md §6: "args.txt - parameters used").
func WriteArgs(w io.Writer, a Args) error {
	for _, line := range a.argLines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ReadArgs parses an args.txt written by WriteArgs back into an Args,
// satisfying the round-trip property of spec.md §8.
func ReadArgs(r io.Reader) (Args, error) {
	var a Args
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return a, errors.E("malformed args.txt line", line)
		}
		key, val := parts[0], parts[1]
		var err error
		switch key {
		case "snps":
			a.Snps = val
		case "gene-matrix":
			a.GeneMatrix = val
		case "gene-intervals":
			a.GeneIntervals = val
		case "snp-intervals":
			a.SnpIntervals = val
		case "null-snps":
			a.NullSnps = val
		case "out":
			a.Out = val
		case "condition":
			if val != "" {
				a.Conditions = strings.Split(val, ",")
			}
		case "slop":
			a.Slop, err = strconv.ParseInt(val, 10, 64)
		case "threads":
			a.Threads, err = strconv.Atoi(val)
		case "null-snpsets":
			a.NullSnpsets, err = strconv.Atoi(val)
		case "min-observations":
			a.MinObservations, err = strconv.Atoi(val)
		case "max-iterations":
			a.MaxIterations, err = strconv.Atoi(val)
		case "score":
			a.Score = val
		}
		if err != nil {
			return a, errors.E(err, "malformed args.txt value", line)
		}
	}
	return a, scanner.Err()
}

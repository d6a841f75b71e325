// Package geneset defines the core data types shared by the SNPsea
// statistical engine: genomic intervals, genesets, and loci.
package geneset

import (
	"sort"
	"strings"
)

// MaxGenes is the upper bound used as a bin key for size-matched sampling
// (spec.md §3: "Geneset"). Genesets larger than MaxGenes still carry their
// full row-index list; only the bin lookup key is clamped.
const MaxGenes = 10

// Interval is a half-open genomic interval [Start, End), keyed by a stable
// name (a SNP or gene identifier).
type Interval struct {
	Chrom string
	Start int64
	End   int64
	Name  string
}

// Clamp returns a copy of i extended by slop on each side, with the low end
// clamped at genome coordinate 1 (spec.md §4.C).
func (i Interval) Clamp(slop int64) Interval {
	start := i.Start - slop
	if start < 1 {
		start = 1
	}
	return Interval{Chrom: i.Chrom, Start: start, End: i.End + slop, Name: i.Name}
}

// Geneset is an unordered collection of distinct gene row-indices associated
// with one SNP or one merged locus.
type Geneset []int

// Len returns the geneset's cardinality.
func (g Geneset) Len() int { return len(g) }

// BinKey returns the bin-table key this geneset would be sampled from:
// its size, clamped at MaxGenes.
func (g Geneset) BinKey() int {
	n := len(g)
	if n > MaxGenes {
		return MaxGenes
	}
	if n < 1 {
		return 1
	}
	return n
}

// Sorted returns a sorted copy of g, used wherever a deterministic row order
// matters (hashing, "most specific gene" tie-breaking, testing).
func (g Geneset) Sorted() Geneset {
	out := make(Geneset, len(g))
	copy(out, g)
	sort.Ints(out)
	return out
}

// Overlaps reports whether g and other share at least one row-index.
func (g Geneset) Overlaps(other Geneset) bool {
	if len(g) == 0 || len(other) == 0 {
		return false
	}
	seen := make(map[int]struct{}, len(g))
	for _, r := range g {
		seen[r] = struct{}{}
	}
	for _, r := range other {
		if _, ok := seen[r]; ok {
			return true
		}
	}
	return false
}

// Union returns the union of g and other, deduplicated but not sorted.
func (g Geneset) Union(other Geneset) Geneset {
	seen := make(map[int]struct{}, len(g)+len(other))
	out := make(Geneset, 0, len(g)+len(other))
	for _, r := range g {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	for _, r := range other {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// Locus is a user-supplied SNP, or several SNPs merged because their
// genesets overlap (spec.md §3: "User locus").
type Locus struct {
	// Name is the SNP name, or a comma-joined chain of SNP names in input
	// order.
	Name string
	// Genes is the locus's geneset (the union of its member SNPs' genesets).
	Genes Geneset
	// Interval is the locus's reported bounding interval: (chrom,
	// min(start), max(end)) across its member SNPs.
	Interval Interval
	// Members lists the SNP names that were merged into this locus, in
	// input order.
	Members []string
	// Missing is true if this SNP name had no resolved interval, or
	// resolved to zero genes even after slop.
	Missing bool
}

// JoinNames comma-joins SNP names in the order given, preserving input
// iteration order as required by spec.md §4.F "Merging".
func JoinNames(names []string) string {
	return strings.Join(names, ",")
}

// Matrix is the dense gene-by-condition matrix (spec.md §3: "Gene matrix").
// Values are stored row-major: Values[r*C+c].
type Matrix struct {
	Rows    int
	Cols    int
	Values  []float64
	RowName []string
	ColName []string

	// Binary is true if the matrix is in binary mode; it is set by
	// matrix.ComputeBinaryStats (spec.md §3: "Mode is decided by inspecting
	// column 0").
	Binary bool
	// Sum and Prob are populated only in binary mode: Sum[c] is the count
	// of nonzero rows in column c, Prob[c] = Sum[c]/Rows.
	Sum  []float64
	Prob []float64
}

// At returns Values[r*Cols+c].
func (m *Matrix) At(r, c int) float64 { return m.Values[r*m.Cols+c] }

// Set assigns Values[r*Cols+c] = v.
func (m *Matrix) Set(r, c int, v float64) { m.Values[r*m.Cols+c] = v }

// RowIndex returns a map from each row name to its row index.
func (m *Matrix) RowIndex() map[string]int {
	idx := make(map[string]int, m.Rows)
	for i, n := range m.RowName {
		idx[n] = i
	}
	return idx
}

// ColIndex returns a map from each column name to its column index.
func (m *Matrix) ColIndex() map[string]int {
	idx := make(map[string]int, m.Cols)
	for i, n := range m.ColName {
		idx[n] = i
	}
	return idx
}

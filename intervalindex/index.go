// Package intervalindex implements component A of the SNPsea statistical
// engine: per-chromosome interval trees mapping genomic intervals to gene
// matrix row-indices (spec.md §4.A).
//
// The tree implementation is github.com/biogo/store/interval, the augmented
// interval-tree package in the same module as biogo/store/llrb, which
// grailbio/bio already depends on for its own sorted-key structures
// (encoding/bampair/shard_info.go, cmd/bio-bam-sort/sorter/sort.go).
package intervalindex

import (
	"sync/atomic"

	"github.com/biogo/store/interval"
	"github.com/grailbio/base/log"
)

// entry implements interval.Interface, mapping a genomic range to a gene
// matrix row-index.
type entry struct {
	r   interval.IntRange
	id  uintptr
	Row int
}

func (e *entry) Overlap(b interval.IntRange) bool {
	return e.r.Start < b.End && b.Start < e.r.End
}
func (e *entry) ID() uintptr              { return e.id }
func (e *entry) Range() interval.IntRange { return e.r }
func (e *entry) String() string           { return "" }

var nextID uint64

func newID() uintptr {
	return uintptr(atomic.AddUint64(&nextID, 1))
}

// Index maps chromosome name to an interval tree of gene row-indices. Only
// genes present in the gene matrix are indexed (spec.md §4.A).
type Index struct {
	trees map[string]*interval.Tree
}

// Stats reports counts needed for R_effective and operator diagnostics
// (spec.md §4.A).
type Stats struct {
	// GenesInMatrix is the total number of rows in the gene matrix.
	GenesInMatrix int
	// GenesIndexed is the number of BED records (named after a matrix row)
	// that were inserted into the tree.
	GenesIndexed int
	// GenesAbsentFromMatrix counts BED records whose name is not a matrix
	// row name; these are reported but never indexed.
	GenesAbsentFromMatrix int
	// GenesMissingFromIntervalFile counts matrix rows with no corresponding
	// BED record. REffective = GenesInMatrix - GenesMissingFromIntervalFile.
	GenesMissingFromIntervalFile int
}

// REffective is the hypergeometric-denominator gene count (spec.md §4.A).
func (s Stats) REffective() int {
	return s.GenesInMatrix - s.GenesMissingFromIntervalFile
}

// Build constructs an Index from a stream of BED records, keeping only
// records whose Name is a key of rowIndex (the matrix's row-name -> row-index
// map).
func Build(records []Record, rowIndex map[string]int) (*Index, Stats) {
	idx := &Index{trees: make(map[string]*interval.Tree)}
	stats := Stats{GenesInMatrix: len(rowIndex)}
	seen := make(map[int]bool, len(rowIndex))

	for _, rec := range records {
		row, ok := rowIndex[rec.Name]
		if !ok {
			stats.GenesAbsentFromMatrix++
			continue
		}
		tr, ok := idx.trees[rec.Chrom]
		if !ok {
			tr = &interval.Tree{}
			idx.trees[rec.Chrom] = tr
		}
		e := &entry{
			r:   interval.IntRange{Start: int(rec.Start), End: int(rec.End)},
			id:  newID(),
			Row: row,
		}
		if err := tr.Insert(e, false); err != nil {
			log.Error.Printf("intervalindex: insert %s:%d-%d (%s): %v", rec.Chrom, rec.Start, rec.End, rec.Name, err)
			continue
		}
		seen[row] = true
		stats.GenesIndexed++
	}
	for _, tr := range idx.trees {
		tr.AdjustRanges()
	}
	stats.GenesMissingFromIntervalFile = len(rowIndex) - len(seen)
	return idx, stats
}

// Query returns the row-indices of every indexed gene whose interval
// intersects the query range [start, end] on chrom. The query's end
// coordinate is included; each gene interval is half-open [Start, End) as
// drawn from the BED file, so a query starting at a gene's End does not hit
// that gene.
func (idx *Index) Query(chrom string, start, end int64) []int {
	tr, ok := idx.trees[chrom]
	if !ok {
		return nil
	}
	q := interval.IntRange{Start: int(start), End: int(end) + 1}
	hits := tr.Get(q)
	rows := make([]int, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, h.(*entry).Row)
	}
	return rows
}

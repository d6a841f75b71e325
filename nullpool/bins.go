// Package nullpool implements component D of the SNPsea statistical engine:
// binning null-pool SNP genesets by cardinality, and sampling size-matched
// or random replacement sets from them (spec.md §4.D).
package nullpool

import (
	"runtime"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bio/geneset"
	"github.com/grailbio/bio/resolve"
)

// Table maps geneset cardinality (clamped to geneset.MaxGenes) to the list
// of null-pool genesets of that effective size (spec.md §3: "Bin table").
// Lists are fixed once BuildTable returns.
type Table struct {
	bins [geneset.MaxGenes + 1][]geneset.Geneset
}

// Bin returns the genesets in bin k, with k clamped to [1, geneset.MaxGenes].
func (t *Table) Bin(k int) []geneset.Geneset {
	if k < 1 {
		k = 1
	}
	if k > geneset.MaxGenes {
		k = geneset.MaxGenes
	}
	return t.bins[k]
}

// BuildTable resolves every SNP in names via r and pushes non-empty genesets
// into their cardinality bin. Resolution is split across threads workers,
// each appending to a local slice that is merged at the end, avoiding a
// shared lock in the hot loop (spec.md §5: "Shared vs per-thread state").
// Returns errors.E("empty-null-pool", ...) if no SNP resolves to any gene.
func BuildTable(names []string, r *resolve.Resolver, threads int) (*Table, error) {
	if threads < 1 {
		threads = 1
	}
	if max := runtime.NumCPU(); threads > max {
		threads = max
	}

	type localResult struct {
		genesets [geneset.MaxGenes + 1][]geneset.Geneset
	}
	results := make([]localResult, threads)

	var wg sync.WaitGroup
	chunk := (len(names) + threads - 1) / threads
	if chunk == 0 {
		chunk = 1
	}
	for w := 0; w < threads; w++ {
		lo := w * chunk
		hi := lo + chunk
		if lo >= len(names) {
			break
		}
		if hi > len(names) {
			hi = len(names)
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			for _, name := range names[lo:hi] {
				res := r.Resolve(name)
				if res.Absent || len(res.Genes) == 0 {
					continue
				}
				k := res.Genes.BinKey()
				results[w].genesets[k] = append(results[w].genesets[k], res.Genes)
			}
		}(w, lo, hi)
	}
	wg.Wait()

	t := &Table{}
	total := 0
	for _, lr := range results {
		for k := 1; k <= geneset.MaxGenes; k++ {
			t.bins[k] = append(t.bins[k], lr.genesets[k]...)
			total += len(lr.genesets[k])
		}
	}
	if total == 0 {
		return nil, errors.E("empty-null-pool", "no SNP in the null list resolves to any gene")
	}
	return t, nil
}

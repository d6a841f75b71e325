// Package resolve implements component C of the SNPsea statistical engine:
// resolving a SNP name to the gene-matrix row-indices of the genes it
// overlaps, with a slop fallback (spec.md §4.C).
package resolve

import (
	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio/geneset"
	"github.com/grailbio/bio/intervalindex"
)

// IntervalMap is the immutable SNP-name -> interval mapping populated once
// from the SNP-interval collaborator (spec.md §3: "SNP-interval map").
type IntervalMap map[string]geneset.Interval

// Resolver resolves SNP names to genesets using a gene interval index and a
// slop fallback.
type Resolver struct {
	Index    *intervalindex.Index
	Snps     IntervalMap
	SlopBP   int64
	suggestN int // max IntervalMap keys scanned for a Levenshtein "did you mean" hint
}

// New builds a Resolver. slop is in base pairs (spec.md §6: "--slop",
// default 250000).
func New(index *intervalindex.Index, snps IntervalMap, slop int64) *Resolver {
	return &Resolver{Index: index, Snps: snps, SlopBP: slop, suggestN: 2000}
}

// Result is the outcome of resolving one SNP name.
type Result struct {
	Name     string
	Interval geneset.Interval
	Genes    geneset.Geneset
	// Absent is true if name has no entry in the SNP-interval map.
	Absent bool
	// UsedSlop is true if the exact-interval query returned no genes and the
	// slop-extended query was used instead (spec.md §8: "Slop extension is
	// applied iff the exact-interval query returns empty").
	UsedSlop bool
}

// Resolve looks up name's interval and queries the gene interval index,
// falling back to a slop-extended query if the exact query returns no genes
// (spec.md §4.C). A name absent from the SNP-interval map fails silently,
// returning an empty Result with Absent set; it is reported and carried
// through downstream reporting rather than treated as fatal.
func (r *Resolver) Resolve(name string) Result {
	iv, ok := r.Snps[name]
	if !ok {
		if hint := r.suggest(name); hint != "" {
			log.Debug.Printf("resolve: SNP %q not found in SNP-interval map; did you mean %q?", name, hint)
		} else {
			log.Debug.Printf("resolve: SNP %q not found in SNP-interval map", name)
		}
		return Result{Name: name, Absent: true}
	}
	genes := r.Index.Query(iv.Chrom, iv.Start, iv.End)
	if len(genes) > 0 {
		return Result{Name: name, Interval: iv, Genes: genes}
	}
	expanded := iv.Clamp(r.SlopBP)
	genes = r.Index.Query(expanded.Chrom, expanded.Start, expanded.End)
	if len(genes) == 0 {
		log.Debug.Printf("resolve: SNP %q overlaps zero genes even after %d bp slop", name, r.SlopBP)
		return Result{Name: name, Interval: iv}
	}
	return Result{Name: name, Interval: iv, Genes: genes, UsedSlop: true}
}

// suggest returns the SNP-interval-map key with the smallest Levenshtein
// distance to name among the first r.suggestN keys visited (in map
// iteration order), or "" if that distance is greater than 2. Uses
// github.com/antzucaro/matchr.Levenshtein — the same edit-distance primitive
// grailbio/bio cross-checks its own hand-rolled implementation against in
// util/distance_test.go. Purely diagnostic: it never changes resolution
// outcome.
func (r *Resolver) suggest(name string) string {
	best := ""
	bestDist := -1
	n := 0
	for key := range r.Snps {
		if n >= r.suggestN {
			break
		}
		n++
		d := matchr.Levenshtein(name, key)
		if bestDist == -1 || d < bestDist {
			bestDist = d
			best = key
		}
	}
	if bestDist >= 0 && bestDist <= 2 && best != name {
		return best
	}
	return ""
}

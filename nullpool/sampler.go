package nullpool

import (
	"math/rand"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/bio/geneset"
	"github.com/grailbio/bio/resolve"
)

// Sampler draws size-matched or random genesets from a Table. The spec
// permits either a serialized shared generator or one independent substream
// per worker (spec.md §4.D, §9); this port gives each caller its own
// *rand.Rand, so concurrent callers must each hold a distinct Sampler (see
// perm.Scheduler.workerRNGs).
type Sampler struct {
	table *Table
	rng   *rand.Rand
}

// NewSampler wraps table with a private RNG substream.
func NewSampler(table *Table, rng *rand.Rand) *Sampler {
	return &Sampler{table: table, rng: rng}
}

// MatchDraw draws one geneset per entry of sizes, each uniformly sampled
// (with replacement, both within and across calls) from the bin matching
// that size (spec.md §4.D: "Match draw"). sizes are expected already clamped
// to geneset.MaxGenes by the caller (spec.md §4.F: "geneset sizes are
// clamped at MAX_GENES for bin lookups").
func (s *Sampler) MatchDraw(sizes []int) []geneset.Geneset {
	out := make([]geneset.Geneset, len(sizes))
	for i, size := range sizes {
		bin := s.table.Bin(size)
		if len(bin) == 0 {
			out[i] = nil
			continue
		}
		out[i] = bin[s.rng.Intn(len(bin))]
	}
	return out
}

// RandomDraw uniformly samples n distinct SNP names (by name) from pool,
// rejecting any that resolve to an empty geneset, and returns their resolved
// genesets (spec.md §4.D: "Random draw", used only for the --snps randomN
// pseudo-argument).
func RandomDraw(n int, pool []string, r *resolve.Resolver, rng *rand.Rand) ([]geneset.Geneset, error) {
	if n <= 0 {
		return nil, errors.E("invalid-parameter", "randomN count must be positive")
	}
	if len(pool) == 0 {
		return nil, errors.E("empty-null-pool", "null SNP pool is empty")
	}
	seen := newConcurrentSet()
	out := make([]geneset.Geneset, 0, n)

	// Bound attempts so a pathological pool (mostly zero-gene SNPs) cannot
	// spin forever; this is a generous multiple of what a healthy pool needs.
	maxAttempts := len(pool) * 10
	if maxAttempts < n*50 {
		maxAttempts = n * 50
	}
	for attempt := 0; len(out) < n && attempt < maxAttempts; attempt++ {
		name := pool[rng.Intn(len(pool))]
		if !seen.addIfAbsent(name) {
			continue
		}
		res := r.Resolve(name)
		if res.Absent || len(res.Genes) == 0 {
			continue
		}
		out = append(out, res.Genes)
	}
	if len(out) < n {
		return nil, errors.E("empty-null-pool", "could not draw", n, "distinct non-empty SNPs from the null pool")
	}
	return out, nil
}

package perm

import (
	"math/rand"
	"sync"

	"github.com/grailbio/bio/geneset"
	"github.com/grailbio/bio/nullpool"
	"github.com/grailbio/bio/score"
)

// ColumnResult is one row of condition_pvalues.txt or null_pvalues.txt
// (spec.md §6).
type ColumnResult struct {
	Column         int
	ConditionName  string
	PValue         float64
	NullsObserved  int
	NullsTested    int
	Replicate      int // -1 for the user-SNP pass (no replicate index applies)
	BestGeneByCond map[string]int
}

// Scheduler evaluates per-column scoring functions in parallel, doubling
// iteration budgets until enough null exceedances are observed (spec.md
// §4.F). One Scheduler instance is reused across all columns of a run;
// per-column worker RNG substreams are re-derived deterministically from
// BaseSeed so that re-running the same args reproduces the same p-values.
type Scheduler struct {
	Matrix          *geneset.Matrix
	Scorer          *score.Scorer
	Table           *nullpool.Table
	Threads         int
	MinObservations int
	MaxIterations   int
	BaseSeed        uint64
}

// splitmix64 derives an independent-looking substream seed from a base seed
// and a stream index, giving each (column, worker) pair its own generator
// without serializing on one shared source (spec.md §4.D: "the sampler is
// the sole consumer... must either serialize access or grant each worker an
// independent substream"; spec.md §9 permits either as long as total draws
// equal nulls_tested).
func splitmix64(seed uint64, stream uint64) uint64 {
	z := seed + stream*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// workerRNGs derives one substream per worker for a given (column,
// replicate) pair. replicate is -1 for the user-SNP pass and >= 0 for each
// null-replicate pass; mixing it into the stream index keeps the user pass
// and every null replicate drawing independent sequences for the same
// column, rather than replaying the same draws (spec.md §4.D: draws must be
// "independent with replacement across a call and across calls").
func (s *Scheduler) workerRNGs(column int, replicate int) []*rand.Rand {
	rngs := make([]*rand.Rand, s.Threads)
	pass := uint64(replicate+1) * 1000003
	for w := 0; w < s.Threads; w++ {
		seed := splitmix64(s.BaseSeed, pass+uint64(column)*10007+uint64(w))
		rngs[w] = rand.New(rand.NewSource(int64(seed)))
	}
	return rngs
}

// ScoreColumn runs the adaptive permutation loop for one column against one
// set of user (or replicate) genesets (spec.md §4.F, steps 1-5).
func (s *Scheduler) ScoreColumn(column int, conditionName string, userGenesets []geneset.Geneset, replicate int) ColumnResult {
	userScore := s.Scorer.Score(column, userGenesets, s.Matrix)
	result := ColumnResult{Column: column, ConditionName: conditionName, Replicate: replicate}
	if userScore <= 0 {
		result.PValue = 1.0
		return result
	}

	sizes := make([]int, len(userGenesets))
	for i, g := range userGenesets {
		sizes[i] = g.BinKey()
	}

	rngs := s.workerRNGs(column, replicate)
	nullsObserved, nullsTested := 0, 0
	batch := 100
	for nullsTested < s.MaxIterations {
		if remaining := s.MaxIterations - nullsTested; batch > remaining {
			batch = remaining
		}
		nullsObserved += s.runBatch(batch, sizes, column, userScore, rngs)
		nullsTested += batch
		if nullsObserved >= s.MinObservations {
			break
		}
		batch *= 2
	}

	result.NullsObserved = nullsObserved
	result.NullsTested = nullsTested
	result.PValue = float64(nullsObserved+1) / float64(nullsTested+1)
	return result
}

// runBatch statically partitions count draws among s.Threads workers, each
// scoring its share against a local Sampler and its own RNG substream, and
// sums the per-worker exceedance counts once all workers have finished
// (spec.md §4.F step 3); each worker writes only its own slot, so the sum
// takes no lock.
func (s *Scheduler) runBatch(count int, sizes []int, column int, userScore float64, rngs []*rand.Rand) int {
	threads := s.Threads
	if threads > count {
		threads = count
	}
	if threads < 1 {
		threads = 1
	}
	counts := make([]int, threads)
	base := count / threads
	extra := count % threads

	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		n := base
		if w < extra {
			n++
		}
		wg.Add(1)
		go func(w, n int) {
			defer wg.Done()
			sampler := nullpool.NewSampler(s.Table, rngs[w])
			local := 0
			for i := 0; i < n; i++ {
				draws := sampler.MatchDraw(sizes)
				if s.Scorer.Score(column, draws, s.Matrix) >= userScore {
					local++
				}
			}
			counts[w] = local
		}(w, n)
	}
	// Workers only write their own counts[w]; wg.Wait() is the
	// happens-before edge that makes this final sum race-free, so no
	// separate critical section is needed to read the results back.
	wg.Wait()
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// RunUser evaluates every column against userGenesets, in column order
// (spec.md §4.F, §5: "Per-column p-values are emitted in column order").
func (s *Scheduler) RunUser(userGenesets []geneset.Geneset) []ColumnResult {
	results := make([]ColumnResult, s.Matrix.Cols)
	for c := 0; c < s.Matrix.Cols; c++ {
		results[c] = s.ScoreColumn(c, s.Matrix.ColName[c], userGenesets, -1)
	}
	return results
}

// RunNullReplicates draws replicateCount fresh size-matched whole genesets
// (one per replicate, using the user loci's bin sizes) and reruns the
// scheduler once per replicate, writing to a separate output (spec.md §4.F:
// "The... null-replicates phase... reruns the same scheduler with one fresh
// size-matched whole set of genesets per replicate").
func (s *Scheduler) RunNullReplicates(userLocusSizes []int, replicateCount int, rng *rand.Rand) [][]ColumnResult {
	out := make([][]ColumnResult, replicateCount)
	sampler := nullpool.NewSampler(s.Table, rng)
	for rep := 0; rep < replicateCount; rep++ {
		replicateGenesets := sampler.MatchDraw(userLocusSizes)
		results := make([]ColumnResult, s.Matrix.Cols)
		for c := 0; c < s.Matrix.Cols; c++ {
			results[c] = s.ScoreColumn(c, s.Matrix.ColName[c], replicateGenesets, rep)
		}
		out[rep] = results
	}
	return out
}

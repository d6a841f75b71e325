package score

import (
	"math"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio/geneset"
)

// Kind is the tagged variant selecting one of the four scoring functions
// (spec.md §9: "Inheritance or function-pointer selection of scoring
// functions becomes a tagged variant").
type Kind int

const (
	BinarySingle Kind = iota
	BinaryTotal
	QuantitativeSingle
	QuantitativeTotal
)

// Method names accepted by --score (spec.md §6).
const (
	MethodSingle = "single"
	MethodTotal  = "total"
)

// Select chooses a Kind from the matrix mode and the requested method
// (spec.md §4.E: "Selection is (mode, method)... Default is single").
func Select(binary bool, method string) (Kind, error) {
	if method == "" {
		method = MethodSingle
	}
	switch {
	case binary && method == MethodSingle:
		return BinarySingle, nil
	case binary && method == MethodTotal:
		return BinaryTotal, nil
	case !binary && method == MethodSingle:
		return QuantitativeSingle, nil
	case !binary && method == MethodTotal:
		return QuantitativeTotal, nil
	default:
		return 0, errors.E("invalid-parameter", "unknown --score method", method)
	}
}

// Scorer evaluates a column-scoring function over a list of genesets
// (spec.md §4.E). REffective is the hypergeometric population size
// (spec.md §4.A: "R_effective"), used only by the binary kinds.
type Scorer struct {
	Kind       Kind
	REffective int
}

// New builds a Scorer for the given (mode, method) selection.
func New(binary bool, method string, rEffective int) (*Scorer, error) {
	k, err := Select(binary, method)
	if err != nil {
		return nil, err
	}
	return &Scorer{Kind: k, REffective: rEffective}, nil
}

// fingerprintKey hashes a (column, geneset-size-bucket) pair into a stable
// ordering key, the same way the teacher's kmer_index.go packs a value into
// the seed argument of farm.Hash64WithSeed rather than the data argument.
// The key has no effect on scoring math; it only gives concurrent scoring
// workers (perm.Scheduler.runBatch) a reproducible label to sort their
// interleaved log.Debug output by.
func fingerprintKey(column, sizeBucket int) uint64 {
	return farm.Hash64WithSeed(nil, uint64(column)<<32|uint64(uint32(sizeBucket)))
}

// Score computes the non-negative, finite score of column c over genesets
// gs (spec.md §4.E). Higher is more enriched.
func (s *Scorer) Score(c int, gs []geneset.Geneset, m *geneset.Matrix) float64 {
	switch s.Kind {
	case BinarySingle:
		return s.binarySingle(c, gs, m)
	case BinaryTotal:
		return s.binaryTotal(c, gs, m)
	case QuantitativeSingle:
		return quantitativeSingle(c, gs, m)
	case QuantitativeTotal:
		return quantitativeTotal(c, gs, m)
	default:
		return 0
	}
}

func (s *Scorer) binarySingle(c int, gs []geneset.Geneset, m *geneset.Matrix) float64 {
	n1 := int(m.Sum[c])
	n2 := s.REffective - n1
	total := 0.0
	for _, g := range gs {
		log.Debug.Printf("binarySingle key=%x column=%d bucket=%d", fingerprintKey(c, g.BinKey()), c, g.BinKey())
		hit := false
		for _, row := range g {
			if m.At(row, c) > 0 {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		p0 := hypergeomPMF(n1, n2, len(g), 0)
		total += clamp(-math.Log(1 - p0))
	}
	return clamp(total)
}

func (s *Scorer) binaryTotal(c int, gs []geneset.Geneset, m *geneset.Matrix) float64 {
	n1 := int(m.Sum[c])
	n2 := s.REffective - n1
	total := 0.0
	for _, g := range gs {
		log.Debug.Printf("binaryTotal key=%x column=%d bucket=%d", fingerprintKey(c, g.BinKey()), c, g.BinKey())
		k := 0
		for _, row := range g {
			if m.At(row, c) > 0 {
				k++
			}
		}
		if k == 0 {
			continue
		}
		q := hypergeomUpperTail(n1, n2, len(g), k)
		total += clamp(-math.Log(q))
	}
	return clamp(total)
}

func quantitativeSingle(c int, gs []geneset.Geneset, m *geneset.Matrix) float64 {
	total := 0.0
	for _, g := range gs {
		if len(g) == 0 {
			continue
		}
		log.Debug.Printf("quantitativeSingle key=%x column=%d bucket=%d", fingerprintKey(c, g.BinKey()), c, g.BinKey())
		p := m.At(g[0], c)
		for _, row := range g[1:] {
			if v := m.At(row, c); v < p {
				p = v
			}
		}
		if p >= 1 {
			continue
		}
		total += clamp(-math.Log(1 - math.Pow(1-p, float64(len(g)))))
	}
	return clamp(total)
}

func quantitativeTotal(c int, gs []geneset.Geneset, m *geneset.Matrix) float64 {
	total := 0.0
	for _, g := range gs {
		if len(g) == 0 {
			continue
		}
		log.Debug.Printf("quantitativeTotal key=%x column=%d bucket=%d", fingerprintKey(c, g.BinKey()), c, g.BinKey())
		s := 0.0
		for _, row := range g {
			s += -math.Log(m.At(row, c))
		}
		upper := gammaUpperTail(s, float64(len(g)))
		total += clamp(-math.Log(upper))
	}
	return clamp(total)
}

// MostSpecificGene returns the row-index within g with the smallest
// quantitative-mode value in column c (spec.md §6:
// "snp_condition_scores.txt"... "gene is the single most specific gene").
// Callers must not invoke this in binary mode.
func MostSpecificGene(c int, g geneset.Geneset, m *geneset.Matrix) (row int, ok bool) {
	if len(g) == 0 {
		return 0, false
	}
	best := g[0]
	bestV := m.At(best, c)
	for _, row := range g[1:] {
		if v := m.At(row, c); v < bestV {
			bestV = v
			best = row
		}
	}
	return best, true
}

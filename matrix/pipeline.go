package matrix

import (
	"math"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/bio/geneset"
)

// DetectBinary reports whether every entry in m's column 0 is exactly 0 or 1
// (spec.md §4.B: "detect_binary"). This decision is process-global and fixed
// for the run (spec.md §3).
func DetectBinary(m *geneset.Matrix) bool {
	for r := 0; r < m.Rows; r++ {
		v := m.At(r, 0)
		if v != 0 && v != 1 {
			return false
		}
	}
	return true
}

// ComputeBinaryStats fills m.Sum and m.Prob from the current matrix values
// (spec.md §3: "binary mode").
func ComputeBinaryStats(m *geneset.Matrix) {
	m.Binary = true
	m.Sum = make([]float64, m.Cols)
	m.Prob = make([]float64, m.Cols)
	for c := 0; c < m.Cols; c++ {
		n := 0.0
		for r := 0; r < m.Rows; r++ {
			if m.At(r, c) != 0 {
				n++
			}
		}
		m.Sum[c] = n
		m.Prob[c] = n / float64(m.Rows)
	}
}

// Condition applies Gram-Schmidt-style removal of each named condition
// column from every remaining column, then drops the condition columns
// (spec.md §4.B, operation 2). Only valid in quantitative mode; callers must
// not invoke this in binary mode.
func Condition(m *geneset.Matrix, conditionNames []string) error {
	for _, name := range conditionNames {
		colIdx := m.ColIndex()
		b, ok := colIdx[name]
		if !ok {
			return errors.E("missing-condition", name)
		}
		bNorm2 := 0.0
		for r := 0; r < m.Rows; r++ {
			v := m.At(r, b)
			bNorm2 += v * v
		}
		if bNorm2 == 0 {
			log.Error.Printf("matrix: condition column %q is entirely zero, skipping projection", name)
			continue
		}
		for a := 0; a < m.Cols; a++ {
			if a == b {
				continue
			}
			dot := 0.0
			for r := 0; r < m.Rows; r++ {
				dot += m.At(r, a) * m.At(r, b)
			}
			scale := dot / bNorm2
			if scale == 0 {
				continue
			}
			for r := 0; r < m.Rows; r++ {
				m.Set(r, a, m.At(r, a)-scale*m.At(r, b))
			}
		}
	}
	dropColumns(m, conditionNames)
	return nil
}

// dropColumns removes the named columns from m, preserving the relative
// order of the remaining columns.
func dropColumns(m *geneset.Matrix, names []string) {
	drop := make(map[int]bool, len(names))
	colIdx := m.ColIndex()
	for _, name := range names {
		if c, ok := colIdx[name]; ok {
			drop[c] = true
		}
	}
	newCols := m.Cols - len(drop)
	newValues := make([]float64, m.Rows*newCols)
	newColName := make([]string, 0, newCols)
	for c := 0; c < m.Cols; c++ {
		if drop[c] {
			continue
		}
		newColName = append(newColName, m.ColName[c])
	}
	for r := 0; r < m.Rows; r++ {
		dst := 0
		for c := 0; c < m.Cols; c++ {
			if drop[c] {
				continue
			}
			newValues[r*newCols+dst] = m.At(r, c)
			dst++
		}
	}
	m.Cols = newCols
	m.Values = newValues
	m.ColName = newColName
}

// Normalize divides each row vector by its L2 norm. Rows with norm 0 remain
// zero (spec.md §4.B, operation 3).
func Normalize(m *geneset.Matrix) {
	for r := 0; r < m.Rows; r++ {
		sumSq := 0.0
		for c := 0; c < m.Cols; c++ {
			v := m.At(r, c)
			sumSq += v * v
		}
		if sumSq == 0 {
			continue
		}
		norm := math.Sqrt(sumSq)
		for c := 0; c < m.Cols; c++ {
			m.Set(r, c, m.At(r, c)/norm)
		}
	}
}

// RankColumns replaces each column's values, independently, by their
// descending-sort rank (average ranks for ties) divided by m.Rows, so that
// small numbers denote the most specific rows (spec.md §4.B, operation 4).
func RankColumns(m *geneset.Matrix) {
	type kv struct {
		v   float64
		row int
	}
	col := make([]kv, m.Rows)
	for c := 0; c < m.Cols; c++ {
		for r := 0; r < m.Rows; r++ {
			col[r] = kv{v: m.At(r, c), row: r}
		}
		sort.Slice(col, func(i, j int) bool { return col[i].v > col[j].v })

		i := 0
		for i < m.Rows {
			j := i
			for j+1 < m.Rows && col[j+1].v == col[i].v {
				j++
			}
			// Ranks i+1..j+1 (1-based) tie; average rank.
			avgRank := float64(i+1+j+1) / 2.0
			for k := i; k <= j; k++ {
				m.Set(col[k].row, c, avgRank/float64(m.Rows))
			}
			i = j + 1
		}
	}
}

// Pipeline is the chosen mode and resulting derived state of a gene matrix,
// built once in the setup phase and read-only thereafter (spec.md §3:
// "Lifecycles").
type Pipeline struct {
	M      *geneset.Matrix
	Binary bool
}

// Run decides the mode from column 0, then applies conditioning (in
// quantitative mode only), normalization, and rank-percentile transforms as
// specified by spec.md §4.B. conditionNames may be empty.
func Run(m *geneset.Matrix, conditionNames []string) (*Pipeline, error) {
	binary := DetectBinary(m)
	if binary {
		ComputeBinaryStats(m)
		return &Pipeline{M: m, Binary: true}, nil
	}
	if len(conditionNames) > 0 {
		if err := Condition(m, conditionNames); err != nil {
			return nil, err
		}
	}
	Normalize(m)
	RankColumns(m)
	return &Pipeline{M: m, Binary: false}, nil
}

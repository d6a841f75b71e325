package score

import (
	"testing"

	"github.com/grailbio/bio/geneset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	k, err := Select(true, "")
	require.NoError(t, err)
	assert.Equal(t, BinarySingle, k)

	k, err = Select(true, MethodTotal)
	require.NoError(t, err)
	assert.Equal(t, BinaryTotal, k)

	k, err = Select(false, MethodSingle)
	require.NoError(t, err)
	assert.Equal(t, QuantitativeSingle, k)

	k, err = Select(false, MethodTotal)
	require.NoError(t, err)
	assert.Equal(t, QuantitativeTotal, k)
}

func TestSelectUnknownMethod(t *testing.T) {
	_, err := Select(true, "bogus")
	assert.Error(t, err)
}

func TestBinarySingleTrivialCase(t *testing.T) {
	// 10 genes total (REffective), column marks genes 0-1 as condition-active.
	m := &geneset.Matrix{
		Rows: 10, Cols: 1,
		Values: []float64{1, 1, 0, 0, 0, 0, 0, 0, 0, 0},
		Sum:    []float64{2},
	}
	s, err := New(true, MethodSingle, 10)
	require.NoError(t, err)

	// A geneset hitting an active gene should score above zero.
	hit := s.Score(0, []geneset.Geneset{{0, 2, 3}}, m)
	assert.Greater(t, hit, 0.0)

	// A geneset missing every active gene scores zero.
	miss := s.Score(0, []geneset.Geneset{{2, 3, 4}}, m)
	assert.Equal(t, 0.0, miss)
}

func TestQuantitativeSingleTrivialCase(t *testing.T) {
	// Rank-percentile-like values in [0,1]; smaller is more specific.
	m := &geneset.Matrix{
		Rows: 4, Cols: 1,
		Values: []float64{0.1, 0.9, 0.5, 0.99},
	}
	s, err := New(false, MethodSingle, 0)
	require.NoError(t, err)

	specific := s.Score(0, []geneset.Geneset{{0}}, m)
	nonspecific := s.Score(0, []geneset.Geneset{{1}}, m)
	assert.Greater(t, specific, nonspecific)
}

func TestMostSpecificGene(t *testing.T) {
	m := &geneset.Matrix{
		Rows: 3, Cols: 1,
		Values: []float64{0.8, 0.2, 0.5},
	}
	row, ok := MostSpecificGene(0, geneset.Geneset{0, 1, 2}, m)
	assert.True(t, ok)
	assert.Equal(t, 1, row)
}

func TestMostSpecificGeneEmpty(t *testing.T) {
	m := &geneset.Matrix{Rows: 1, Cols: 1, Values: []float64{0.5}}
	_, ok := MostSpecificGene(0, geneset.Geneset{}, m)
	assert.False(t, ok)
}

func TestHypergeomPMFSumsToOne(t *testing.T) {
	n1, n2, k := 10, 90, 5
	sum := 0.0
	for i := 0; i <= k; i++ {
		sum += hypergeomPMF(n1, n2, k, i)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestHypergeomUpperTailAtZeroIsOne(t *testing.T) {
	assert.InDelta(t, 1.0, hypergeomUpperTail(10, 90, 5, 0), 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-1))
	assert.Equal(t, 2.5, clamp(2.5))
}

func TestFingerprintKeyDeterministicAndDistinct(t *testing.T) {
	assert.Equal(t, fingerprintKey(1, 5), fingerprintKey(1, 5))
	assert.NotEqual(t, fingerprintKey(1, 5), fingerprintKey(2, 5))
	assert.NotEqual(t, fingerprintKey(1, 5), fingerprintKey(1, 6))
}

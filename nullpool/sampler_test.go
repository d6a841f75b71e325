package nullpool

import (
	"math/rand"
	"testing"

	"github.com/grailbio/bio/geneset"
	"github.com/grailbio/bio/intervalindex"
	"github.com/grailbio/bio/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplerTestResolver() *resolve.Resolver {
	records := []intervalindex.Record{
		{Chrom: "chr1", Start: 1000, End: 2000, Name: "GENE1"},
	}
	idx, _ := intervalindex.Build(records, map[string]int{"GENE1": 0})
	snps := resolve.IntervalMap{
		"rs1": {Chrom: "chr1", Start: 1500, End: 1501, Name: "rs1"},
		"rs2": {Chrom: "chr1", Start: 1500, End: 1501, Name: "rs2"},
		"rs3": {Chrom: "chr9", Start: 1, End: 2, Name: "rs3"}, // resolves to zero genes
	}
	return resolve.New(idx, snps, 0)
}

func TestSamplerMatchDraw(t *testing.T) {
	table := &Table{}
	table.bins[2] = []geneset.Geneset{{10, 11}, {12, 13}}
	table.bins[3] = []geneset.Geneset{{20, 21, 22}}

	s := NewSampler(table, rand.New(rand.NewSource(1)))
	draws := s.MatchDraw([]int{2, 3, 2})
	require.Len(t, draws, 3)
	assert.Len(t, draws[0], 2)
	assert.Len(t, draws[1], 3)
	assert.Len(t, draws[2], 2)
}

func TestSamplerMatchDrawEmptyBin(t *testing.T) {
	table := &Table{}
	s := NewSampler(table, rand.New(rand.NewSource(1)))
	draws := s.MatchDraw([]int{4})
	require.Len(t, draws, 1)
	assert.Nil(t, draws[0])
}

func TestRandomDraw(t *testing.T) {
	r := samplerTestResolver()
	draws, err := RandomDraw(2, []string{"rs1", "rs2", "rs3"}, r, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, draws, 2)
	for _, g := range draws {
		assert.Equal(t, geneset.Geneset{0}, g)
	}
}

func TestRandomDrawInsufficientPool(t *testing.T) {
	r := samplerTestResolver()
	// Only rs1 and rs2 resolve to a non-empty geneset; 3 distinct draws is
	// unreachable.
	_, err := RandomDraw(3, []string{"rs1", "rs2", "rs3"}, r, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestRandomDrawRejectsNonPositiveN(t *testing.T) {
	r := samplerTestResolver()
	_, err := RandomDraw(0, []string{"rs1"}, r, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestRandomDrawRejectsEmptyPool(t *testing.T) {
	r := samplerTestResolver()
	_, err := RandomDraw(5, nil, r, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

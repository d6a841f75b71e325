package resolve

import (
	"testing"

	"github.com/grailbio/bio/geneset"
	"github.com/grailbio/bio/intervalindex"
	"github.com/stretchr/testify/assert"
)

func buildIndex() *intervalindex.Index {
	records := []intervalindex.Record{
		{Chrom: "chr1", Start: 1000, End: 2000, Name: "GENE1"},
	}
	rowIndex := map[string]int{"GENE1": 0}
	idx, _ := intervalindex.Build(records, rowIndex)
	return idx
}

func TestResolveExactHit(t *testing.T) {
	idx := buildIndex()
	snps := IntervalMap{"rs1": {Chrom: "chr1", Start: 1500, End: 1501, Name: "rs1"}}
	r := New(idx, snps, 250000)

	res := r.Resolve("rs1")
	assert.False(t, res.Absent)
	assert.False(t, res.UsedSlop)
	assert.Equal(t, geneset.Geneset{0}, res.Genes)
}

func TestResolveSlopFallback(t *testing.T) {
	idx := buildIndex()
	// rs2 sits 5000bp away from the gene; only a large-enough slop reaches it.
	snps := IntervalMap{"rs2": {Chrom: "chr1", Start: 7000, End: 7001, Name: "rs2"}}
	r := New(idx, snps, 10000)

	res := r.Resolve("rs2")
	assert.False(t, res.Absent)
	assert.True(t, res.UsedSlop)
	assert.Equal(t, geneset.Geneset{0}, res.Genes)
}

func TestResolveSlopInsufficient(t *testing.T) {
	idx := buildIndex()
	snps := IntervalMap{"rs3": {Chrom: "chr1", Start: 100000, End: 100001, Name: "rs3"}}
	r := New(idx, snps, 250)

	res := r.Resolve("rs3")
	assert.False(t, res.Absent)
	assert.False(t, res.UsedSlop)
	assert.Empty(t, res.Genes)
}

func TestResolveAbsentSNP(t *testing.T) {
	idx := buildIndex()
	r := New(idx, IntervalMap{}, 250000)

	res := r.Resolve("unknown-snp")
	assert.True(t, res.Absent)
	assert.Empty(t, res.Genes)
}

func TestSuggestFindsClosestMatch(t *testing.T) {
	idx := buildIndex()
	snps := IntervalMap{
		"rs1234": {Chrom: "chr1", Start: 1500, End: 1501, Name: "rs1234"},
	}
	r := New(idx, snps, 250000)

	res := r.Resolve("rs1235") // one edit away from rs1234
	assert.True(t, res.Absent)
	assert.Equal(t, "rs1234", r.suggest("rs1235"))
}

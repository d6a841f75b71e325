package nullpool

import (
	"testing"

	"github.com/grailbio/bio/geneset"
	"github.com/grailbio/bio/intervalindex"
	"github.com/grailbio/bio/resolve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildResolver(t *testing.T) *resolve.Resolver {
	t.Helper()
	records := []intervalindex.Record{
		{Chrom: "chr1", Start: 1000, End: 2000, Name: "GENE1"},
		{Chrom: "chr1", Start: 1000, End: 2000, Name: "GENE2"},
	}
	rowIndex := map[string]int{"GENE1": 0, "GENE2": 1}
	idx, _ := intervalindex.Build(records, rowIndex)
	snps := resolve.IntervalMap{
		"rsA": {Chrom: "chr1", Start: 1500, End: 1501, Name: "rsA"},
		"rsB": {Chrom: "chr1", Start: 1500, End: 1501, Name: "rsB"},
		"rsAbsent": {Chrom: "chr9", Start: 1, End: 2, Name: "rsAbsent"},
	}
	return resolve.New(idx, snps, 0)
}

func TestBuildTable(t *testing.T) {
	r := buildResolver(t)
	table, err := BuildTable([]string{"rsA", "rsB", "rsAbsent"}, r, 2)
	require.NoError(t, err)
	// Both rsA and rsB resolve to the same two genes.
	bin := table.Bin(2)
	assert.Len(t, bin, 2)
}

func TestBuildTableEmptyPool(t *testing.T) {
	r := buildResolver(t)
	_, err := BuildTable([]string{"rsAbsent"}, r, 1)
	assert.Error(t, err)
}

func TestBinClampsToRange(t *testing.T) {
	table := &Table{}
	table.bins[1] = []geneset.Geneset{{0}}
	table.bins[geneset.MaxGenes] = []geneset.Geneset{{0, 1, 2}}
	assert.Equal(t, table.bins[1], table.Bin(0))
	assert.Equal(t, table.bins[geneset.MaxGenes], table.Bin(geneset.MaxGenes+5))
}

package intervalindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAndQuery(t *testing.T) {
	records := []Record{
		{Chrom: "chr1", Start: 100, End: 200, Name: "GENE1"},
		{Chrom: "chr1", Start: 150, End: 250, Name: "GENE2"},
		{Chrom: "chr2", Start: 0, End: 50, Name: "GENE3"},
		{Chrom: "chr1", Start: 500, End: 600, Name: "NOT_IN_MATRIX"},
	}
	rowIndex := map[string]int{"GENE1": 0, "GENE2": 1, "GENE3": 2, "GENE4": 3}

	idx, stats := Build(records, rowIndex)

	assert.Equal(t, 4, stats.GenesInMatrix)
	assert.Equal(t, 3, stats.GenesIndexed)
	assert.Equal(t, 1, stats.GenesAbsentFromMatrix)
	assert.Equal(t, 1, stats.GenesMissingFromIntervalFile) // GENE4
	assert.Equal(t, 3, stats.REffective())

	rows := idx.Query("chr1", 120, 160)
	assert.ElementsMatch(t, []int{0, 1}, rows)

	rows = idx.Query("chr1", 0, 99)
	assert.Empty(t, rows)

	rows = idx.Query("chrX", 0, 1000)
	assert.Empty(t, rows)
}

func TestQueryHalfOpenBoundary(t *testing.T) {
	records := []Record{{Chrom: "chr1", Start: 100, End: 200, Name: "GENE1"}}
	rowIndex := map[string]int{"GENE1": 0}
	idx, _ := Build(records, rowIndex)

	// A query touching the gene's last base (199) overlaps.
	assert.ElementsMatch(t, []int{0}, idx.Query("chr1", 199, 300))
	// A query starting exactly at the gene's half-open end does not.
	assert.Empty(t, idx.Query("chr1", 200, 300))
}

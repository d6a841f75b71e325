package snplist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDropsDetectedHeader(t *testing.T) {
	data := "SNP\trsid\nrs1\nrs2\n"
	names, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"rs1", "rs2"}, names)
}

func TestReadKeepsFirstRowWhenNotHeaderLike(t *testing.T) {
	data := "rs0\nrs1\nrs2\n"
	names, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"rs0", "rs1", "rs2"}, names)
}

func TestReadSkipsCommentsAndBlankLines(t *testing.T) {
	data := "# comment\n\nrs1\n\nrs2\n"
	names, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"rs1", "rs2"}, names)
}

func TestRandomN(t *testing.T) {
	n, ok, err := RandomN("random100")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100, n)
}

func TestRandomNNotMatching(t *testing.T) {
	_, ok, err := RandomN("snps.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRandomNMalformed(t *testing.T) {
	_, ok, err := RandomN("randomABC")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestRandomNNonPositive(t *testing.T) {
	_, ok, err := RandomN("random0")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestReadConditions(t *testing.T) {
	data := "cond1\n# skip\ncond2\n\ncond3\n"
	names, err := ReadConditions(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"cond1", "cond2", "cond3"}, names)
}

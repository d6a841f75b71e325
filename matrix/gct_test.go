package matrix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGCT(t *testing.T) {
	data := "#1.2\n2\t3\n" +
		"Name\tDescription\tcond1\tcond2\tcond3\n" +
		"GENE1\tdesc1\t1\t2\t3\n" +
		"GENE2\tdesc2\t4\t5\t6\n"
	m, err := LoadGCT(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows)
	assert.Equal(t, 3, m.Cols)
	assert.Equal(t, []string{"GENE1", "GENE2"}, m.RowName)
	assert.Equal(t, []string{"cond1", "cond2", "cond3"}, m.ColName)
	assert.Equal(t, 5.0, m.At(1, 1))
}

func TestLoadGCTRejectsBadMagic(t *testing.T) {
	_, err := LoadGCT(strings.NewReader("wrong\n2\t1\n"))
	assert.Error(t, err)
}

func TestLoadGCTRejectsShortFile(t *testing.T) {
	_, err := LoadGCT(strings.NewReader("#1.2\n1\t1\nName\tDescription\tcond1\n"))
	assert.Error(t, err)
}

func TestLoadGCTRejectsNonNumeric(t *testing.T) {
	data := "#1.2\n1\t1\nName\tDescription\tcond1\nGENE1\tdesc\tnotanumber\n"
	_, err := LoadGCT(strings.NewReader(data))
	assert.Error(t, err)
}

package perm

import (
	"testing"

	"github.com/grailbio/bio/geneset"
	"github.com/grailbio/bio/nullpool"
	"github.com/grailbio/bio/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreColumnZeroUserScoreShortCircuits(t *testing.T) {
	m := &geneset.Matrix{
		Rows: 10, Cols: 1,
		Values:  []float64{1, 1, 0, 0, 0, 0, 0, 0, 0, 0},
		ColName: []string{"cond1"},
		Sum:     []float64{2},
	}
	scorer, err := score.New(true, score.MethodSingle, 10)
	require.NoError(t, err)

	sched := &Scheduler{
		Matrix:          m,
		Scorer:          scorer,
		Table:           &nullpool.Table{},
		Threads:         1,
		MinObservations: 5,
		MaxIterations:   100,
		BaseSeed:        42,
	}

	// A geneset that hits no active genes scores 0, so the loop must not run.
	result := sched.ScoreColumn(0, "cond1", []geneset.Geneset{{4, 5, 6}}, -1)
	assert.Equal(t, 1.0, result.PValue)
	assert.Equal(t, 0, result.NullsTested)
}

func TestScoreColumnMinObservationsZeroRunsOneBatch(t *testing.T) {
	m := &geneset.Matrix{
		Rows: 10, Cols: 1,
		Values:  []float64{1, 1, 0, 0, 0, 0, 0, 0, 0, 0},
		ColName: []string{"cond1"},
		Sum:     []float64{2},
	}
	scorer, err := score.New(true, score.MethodSingle, 10)
	require.NoError(t, err)

	sched := &Scheduler{
		Matrix:          m,
		Scorer:          scorer,
		Table:           &nullpool.Table{},
		Threads:         1,
		MinObservations: 0,
		MaxIterations:   100,
		BaseSeed:        7,
	}

	result := sched.ScoreColumn(0, "cond1", []geneset.Geneset{{0, 1, 2}}, -1)
	assert.Equal(t, 100, result.NullsTested)
}

func TestWorkerRNGsDifferAcrossUserAndNullPasses(t *testing.T) {
	sched := &Scheduler{Threads: 1, BaseSeed: 99}

	userRNGs := sched.workerRNGs(0, -1)
	replicate0RNGs := sched.workerRNGs(0, 0)
	replicate1RNGs := sched.workerRNGs(0, 1)

	userDraw := userRNGs[0].Int63()
	replicate0Draw := replicate0RNGs[0].Int63()
	replicate1Draw := replicate1RNGs[0].Int63()

	assert.NotEqual(t, userDraw, replicate0Draw)
	assert.NotEqual(t, userDraw, replicate1Draw)
	assert.NotEqual(t, replicate0Draw, replicate1Draw)
}

func TestRunUserPreservesColumnOrder(t *testing.T) {
	m := &geneset.Matrix{
		Rows: 4, Cols: 2,
		Values:  []float64{1, 0, 1, 0, 0, 0, 0, 0},
		ColName: []string{"condA", "condB"},
		Sum:     []float64{2, 0},
	}
	scorer, err := score.New(true, score.MethodSingle, 4)
	require.NoError(t, err)

	sched := &Scheduler{
		Matrix:          m,
		Scorer:          scorer,
		Table:           &nullpool.Table{},
		Threads:         2,
		MinObservations: 1,
		MaxIterations:   10,
		BaseSeed:        1,
	}

	results := sched.RunUser([]geneset.Geneset{{2, 3}})
	require.Len(t, results, 2)
	assert.Equal(t, "condA", results[0].ConditionName)
	assert.Equal(t, "condB", results[1].ConditionName)
}

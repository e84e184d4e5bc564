package candidate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/thalesfsp/rco/optimizer"
)

func TestStack(t *testing.T) {
	snapshots := []optimizer.Snapshot{
		{Error: 0.1, Violations: []float64{0.0, -0.5}},
		{Error: 0.2, Violations: []float64{-0.01, 0.3}},
	}

	errs, violations, err := Stack(snapshots)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.1, 0.2}, errs)

	rows, cols := violations.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, -0.01, violations.At(1, 0))
}

func TestStackEmpty(t *testing.T) {
	_, _, err := Stack(nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestStackRaggedViolations(t *testing.T) {
	snapshots := []optimizer.Snapshot{
		{Error: 0.1, Violations: []float64{0}},
		{Error: 0.2, Violations: []float64{0, 0}},
	}

	_, _, err := Stack(snapshots)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestStackNoConstraints(t *testing.T) {
	snapshots := []optimizer.Snapshot{{Error: 0.3}, {Error: 0.1}}

	errs, violations, err := Stack(snapshots)
	require.NoError(t, err)
	assert.Nil(t, violations)
	assert.Equal(t, []float64{0.3, 0.1}, errs)
}

// The feasible snapshot wins over both the borderline one (violation
// exactly zero is not strictly satisfied) and the infeasible one, despite
// not having the lowest error.
func TestBestIndexPrefersFeasibility(t *testing.T) {
	errs := []float64{0.1, 0.2, 0.05}
	violations := mat.NewDense(3, 1, []float64{0.0, -0.01, 0.2})

	best, err := BestIndex(errs, violations)
	require.NoError(t, err)

	assert.Equal(t, 1, best)
}

func TestBestIndexPicksLowestErrorAmongFeasible(t *testing.T) {
	errs := []float64{0.3, 0.1, 0.2}
	violations := mat.NewDense(3, 2, []float64{
		-0.5, -0.5,
		-0.1, -0.1,
		0.4, -0.9,
	})

	best, err := BestIndex(errs, violations)
	require.NoError(t, err)

	assert.Equal(t, 1, best)
}

// With no feasible snapshot, selection falls back to the combined
// error/violation rank, tie-broken by lowest error.
func TestBestIndexRankFallback(t *testing.T) {
	errs := []float64{0.3, 0.1}
	violations := mat.NewDense(2, 1, []float64{0.1, 0.2})

	best, err := BestIndex(errs, violations)
	require.NoError(t, err)

	assert.Equal(t, 1, best)
}

func TestBestIndexNoConstraints(t *testing.T) {
	best, err := BestIndex([]float64{0.3, 0.1, 0.2}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, best)
}

func TestBestIndexEmpty(t *testing.T) {
	_, err := BestIndex(nil, nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestBestIndexDimensionMismatch(t *testing.T) {
	_, err := BestIndex([]float64{0.1}, mat.NewDense(2, 1, []float64{0, 0}))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

// When exactly one snapshot is feasible with minimal error, the
// distribution must collapse to a point mass on it.
func TestBestDistributionCollapsesToFeasibleMinimum(t *testing.T) {
	errs := []float64{0.5, 0.2, 0.4}
	violations := mat.NewDense(3, 1, []float64{0.5, -0.1, 0.3})

	dist, err := BestDistribution(errs, violations)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 0}, dist)
}

func TestBestDistributionSparsity(t *testing.T) {
	errs := []float64{0.9, 0.0, 0.05, 0.5, 0.6}
	violations := mat.NewDense(5, 1, []float64{-1, 1, 0.8, -0.2, -0.4})

	dist, err := BestDistribution(errs, violations)
	if err != nil {
		require.ErrorIs(t, err, ErrNoConvergence)
	}

	var total float64

	support := 0

	for _, p := range dist {
		assert.GreaterOrEqual(t, p, 0.0)

		total += p

		if p > 0 {
			support++
		}
	}

	assert.InDelta(t, 1, total, 1e-9)

	// One constraint: support of at most two snapshots.
	assert.LessOrEqual(t, support, 2)
}

func TestBestDistributionWeaklyDominatesUniform(t *testing.T) {
	errs := []float64{0.4, 0.1, 0.3, 0.2}
	violations := mat.NewDense(4, 1, []float64{-0.3, 0.2, -0.1, 0.05})

	dist, err := BestDistribution(errs, violations)
	require.NoError(t, err)

	assert.True(t, dominatesUniform(errs, violations, dist, defaultTolerance))
}

// A long snapshot history shaped like a training run: a short infeasible
// burn-in with high error, then a feasible plateau with small oscillations.
// The result must meet the sparsity and dominance guarantees without a
// convergence warning.
func TestBestDistributionOnTrainingShapedHistory(t *testing.T) {
	n := 300

	errs := make([]float64, n)
	raw := make([]float64, n)

	for i := 0; i < n; i++ {
		if i < 20 {
			errs[i] = 0.8 - 0.03*float64(i)
			raw[i] = 0.9 - 0.04*float64(i)
		} else {
			errs[i] = 0.14 + 0.01*math.Sin(float64(i))
			raw[i] = -0.03 + 0.04*math.Sin(1.7*float64(i))
		}
	}

	violations := mat.NewDense(n, 1, raw)

	dist, err := BestDistribution(errs, violations)
	require.NoError(t, err)

	var total float64

	support := 0

	for _, p := range dist {
		require.GreaterOrEqual(t, p, 0.0)

		total += p

		if p > 0 {
			support++
		}
	}

	assert.InDelta(t, 1, total, 1e-9)
	assert.LessOrEqual(t, support, 2)
	assert.True(t, dominatesUniform(errs, violations, dist, defaultTolerance))
}

// A violation of exactly zero does not count as strictly feasible, so only
// the strictly negative snapshot qualifies for the point-mass candidate.
func TestFeasibleSingletonStrictness(t *testing.T) {
	errs := []float64{0.3, 0.2}
	violations := mat.NewDense(2, 1, []float64{-0.1, 0.0})

	assert.Equal(t, []float64{1, 0}, feasibleSingleton(errs, violations))

	none := mat.NewDense(2, 1, []float64{0.0, 0.2})
	assert.Nil(t, feasibleSingleton(errs, none))
}

func TestRepairedUniformTrimsWorstSupport(t *testing.T) {
	errs := []float64{0.5, 0.2, 0.4}
	violations := mat.NewDense(3, 1, []float64{0.5, -0.1, 0.3})

	// Dropping the first snapshot improves both the averaged violation and
	// the averaged error the most.
	assert.Equal(t, []float64{0, 0.5, 0.5}, repairedUniform(errs, violations, 2))
}

func TestBestDistributionNoConstraints(t *testing.T) {
	dist, err := BestDistribution([]float64{0.3, 0.1, 0.2}, nil)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 0}, dist)
}

func TestBestDistributionEmpty(t *testing.T) {
	_, err := BestDistribution(nil, nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestBestDistributionIterationBudget(t *testing.T) {
	// An infeasible instance cannot meet the guarantees within a tiny
	// budget; the solver must still return a usable distribution.
	errs := []float64{0.5, 0.4}
	violations := mat.NewDense(2, 1, []float64{1, 2})

	dist, err := BestDistribution(errs, violations, WithMaxIterations(3), WithTolerance(1e-9))

	require.Len(t, dist, 2)

	var total float64
	for _, p := range dist {
		total += p
	}

	assert.InDelta(t, 1, total, 1e-9)

	if err != nil {
		assert.ErrorIs(t, err, ErrNoConvergence)
	}
}

func TestMinRanks(t *testing.T) {
	assert.Equal(t, []int{1, 2, 0}, minRanks([]float64{0.1, 0.2, 0.05}))

	// Ties share the lowest rank.
	assert.Equal(t, []int{0, 0, 2}, minRanks([]float64{0.0, 0.0, 0.2}))
}

func TestArgmin(t *testing.T) {
	assert.Equal(t, 2, argmin([]float64{3, 2, 1, 2}))
	assert.Equal(t, 0, argmin([]float64{1, 1}))
}

// Package candidate post-processes the per-epoch snapshots produced by a
// proxy-Lagrangian training run. It offers two pure selection operations:
// BestIndex picks the single best iterate by a joint accuracy/feasibility
// rank, and BestDistribution computes a sparse probability distribution
// over iterates by an iterative best-response procedure over a zero-sum
// game between a player choosing distributions over snapshots and an
// adversary choosing which constraint to stress.
package candidate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/mat"

	"github.com/thalesfsp/rco/optimizer"
)

//////
// Const, vars, types.
//////

// Sentinel errors for the candidate package.
// Use errors.Is to check: errors.Is(err, candidate.ErrNoConvergence)
var (
	// ErrNoCandidates is returned when the snapshot sequence is empty.
	ErrNoCandidates = errors.New("candidate: empty snapshot sequence")

	// ErrDimensionMismatch is returned when the violations matrix does not
	// have one row per error entry.
	ErrDimensionMismatch = errors.New("candidate: errors and violations dimensions differ")

	// ErrNoConvergence is returned, together with the best-effort
	// distribution, when no distribution found within the iteration budget
	// weakly dominates the uniform average. It is non-fatal: the returned
	// distribution is still valid.
	ErrNoConvergence = errors.New("candidate: best-response solver did not converge")
)

const (
	defaultMaxIterations = 1000
	defaultTolerance     = 1e-6

	// adversaryRate is the multiplicative-weights step size of the
	// constraint-stressing adversary.
	adversaryRate = 1.0

	// maxMultiplier caps adversary weights so persistent infeasibility
	// cannot overflow them.
	maxMultiplier = 1e6
)

// Option configures the distribution solver.
type Option func(*options)

type options struct {
	maxIterations int
	tolerance     float64
}

//////
// Exported functionalities.
//////

// WithMaxIterations bounds the number of best-response game iterations.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithTolerance sets the convergence tolerance on expected error and
// expected violation.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// Stack converts a snapshot sequence into the errors vector and violations
// matrix consumed by BestIndex and BestDistribution. The matrix has one row
// per snapshot and one column per constraint; it is nil when the snapshots
// carry no constraints.
func Stack(snapshots []optimizer.Snapshot) ([]float64, *mat.Dense, error) {
	if len(snapshots) == 0 {
		return nil, nil, ErrNoCandidates
	}

	m := len(snapshots[0].Violations)

	errs := make([]float64, len(snapshots))
	for i, s := range snapshots {
		if len(s.Violations) != m {
			return nil, nil, ErrDimensionMismatch
		}

		errs[i] = s.Error
	}

	if m == 0 {
		return errs, nil, nil
	}

	data := make([]float64, 0, len(snapshots)*m)
	for _, s := range snapshots {
		data = append(data, s.Violations...)
	}

	return errs, mat.NewDense(len(snapshots), m, data), nil
}

// BestIndex picks the single best snapshot. Snapshots whose every
// constraint violation is strictly negative are feasible; when any exist,
// the feasible snapshot with the lowest error wins. Otherwise snapshots are
// ranked by error and by worst-case violation (clamped at zero, so
// borderline snapshots tie), each snapshot scored by the maximum of its two
// ranks, and the minimum combined rank wins, tie-broken by lowest error.
//
// A nil violations matrix means no constraints: selection is by error
// alone.
func BestIndex(errs []float64, violations *mat.Dense) (int, error) {
	if len(errs) == 0 {
		return 0, ErrNoCandidates
	}

	if violations == nil {
		return argmin(errs), nil
	}

	rows, _ := violations.Dims()
	if rows != len(errs) {
		return 0, ErrDimensionMismatch
	}

	worst := worstViolations(violations)

	best := -1
	for i, w := range worst {
		if w >= 0 {
			continue
		}

		if best < 0 || errs[i] < errs[best] {
			best = i
		}
	}

	if best >= 0 {
		return best, nil
	}

	// No strictly feasible snapshot: fall back to the combined-rank rule.
	clamped := make([]float64, len(worst))
	for i, w := range worst {
		clamped[i] = math.Max(0, w)
	}

	errRanks := minRanks(errs)
	vioRanks := minRanks(clamped)

	best = 0
	bestCombined := max(errRanks[0], vioRanks[0])

	for i := 1; i < len(errs); i++ {
		combined := max(errRanks[i], vioRanks[i])

		if combined < bestCombined || (combined == bestCombined && errs[i] < errs[best]) {
			best = i
			bestCombined = combined
		}
	}

	return best, nil
}

// BestDistribution computes a probability distribution over snapshots that
// is feasible in expectation and minimizes expected error. The solver plays
// a zero-sum game: the adversary maintains multiplicative weights over
// constraints, the player best-responds with pure strategies against the
// resulting Lagrangian costs, and the averaged play is shrunk to a support
// of at most m+1 snapshots for m constraints.
//
// The averaged play then competes against two repair candidates: a point
// mass on the lowest-error strictly feasible snapshot, and the uniform
// average with its support greedily trimmed to the sparsity bound. The
// feasibility-first winner weakly dominates the uniform average whenever
// any strictly feasible snapshot exists.
//
// When no returned distribution dominates the uniform average, the best
// one found is returned together with a wrapped ErrNoConvergence.
func BestDistribution(errs []float64, violations *mat.Dense, opts ...Option) ([]float64, error) {
	if len(errs) == 0 {
		return nil, ErrNoCandidates
	}

	o := options{maxIterations: defaultMaxIterations, tolerance: defaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxIterations < 1 {
		o.maxIterations = defaultMaxIterations
	}

	if o.tolerance <= 0 {
		o.tolerance = defaultTolerance
	}

	n := len(errs)

	if violations == nil {
		dist := make([]float64, n)
		dist[argmin(errs)] = 1

		return dist, nil
	}

	rows, m := violations.Dims()
	if rows != n {
		return nil, ErrDimensionMismatch
	}

	candidates := [][]float64{
		shrinkSupport(solveGame(errs, violations, o), m+1),
		repairedUniform(errs, violations, m+1),
	}

	if singleton := feasibleSingleton(errs, violations); singleton != nil {
		candidates = append(candidates, singleton)
	}

	dist := pickBest(errs, violations, candidates)

	// The exact solution weakly dominates the uniform average; a best-effort
	// result that fails to is reported as non-converged.
	if !dominatesUniform(errs, violations, dist, o.tolerance) {
		return dist, fmt.Errorf("%w after %d iterations", ErrNoConvergence, o.maxIterations)
	}

	return dist, nil
}

//////
// Game solver.
//////

// solveGame runs the best-response loop and returns the feasibility-first
// best averaged play found, exiting early once the expected (error,
// violation) pair stabilizes.
func solveGame(errs []float64, violations *mat.Dense, o options) []float64 {
	n := len(errs)
	_, m := violations.Dims()

	lambda := make([]float64, m)
	for j := range lambda {
		lambda[j] = 1
	}

	counts := make([]float64, n)

	var (
		bestDist []float64
		bestErr  = math.Inf(1)
		bestViol = math.Inf(1)

		lastErr  = math.Inf(1)
		lastViol = math.Inf(1)
	)

	for iter := 1; iter <= o.maxIterations; iter++ {
		// Player best response: pure strategy minimizing the Lagrangian
		// cost under the adversary's current weights.
		bestCost := math.Inf(1)
		bestIdx := 0

		for i := 0; i < n; i++ {
			cost := errs[i]
			for j := 0; j < m; j++ {
				cost += lambda[j] * violations.At(i, j)
			}

			if cost < bestCost {
				bestCost = cost
				bestIdx = i
			}
		}

		counts[bestIdx]++

		avg := normalized(counts)
		expErr, expViol := evaluate(errs, violations, avg)

		// Keep the feasibility-first best averaged play seen so far.
		if lexBetter(expErr, math.Max(0, expViol), bestErr, bestViol) {
			bestErr = expErr
			bestViol = math.Max(0, expViol)
			bestDist = avg
		}

		// Adversary: stress constraints violated by the averaged play.
		for j := 0; j < m; j++ {
			var v float64
			for i := 0; i < n; i++ {
				v += avg[i] * violations.At(i, j)
			}

			lambda[j] *= math.Exp(adversaryRate * v)
			lambda[j] = math.Min(lambda[j], maxMultiplier)
		}

		// Stability check on a fixed cadence.
		if iter%50 == 0 {
			if math.Abs(expErr-lastErr) < o.tolerance &&
				math.Abs(math.Max(0, expViol)-lastViol) < o.tolerance {
				break
			}

			lastErr = expErr
			lastViol = math.Max(0, expViol)
		}
	}

	if bestDist == nil {
		bestDist = normalized(counts)
	}

	return bestDist
}

// shrinkSupport keeps at most maxSupport of the heaviest entries and
// renormalizes, zeroing the rest.
func shrinkSupport(dist []float64, maxSupport int) []float64 {
	support := make([]int, 0, len(dist))
	for i, p := range dist {
		if p > 0 {
			support = append(support, i)
		}
	}

	if len(support) <= maxSupport {
		return dist
	}

	sort.Slice(support, func(a, b int) bool {
		return dist[support[a]] > dist[support[b]]
	})

	out := make([]float64, len(dist))

	var total float64
	for _, i := range support[:maxSupport] {
		out[i] = dist[i]
		total += dist[i]
	}

	for i := range out {
		out[i] /= total
	}

	return out
}

// feasibleSingleton returns a point mass on the lowest-error snapshot whose
// worst violation is strictly negative, or nil when no snapshot satisfies
// every constraint on its own. Feasibility is strict, as in BestIndex.
func feasibleSingleton(errs []float64, violations *mat.Dense) []float64 {
	worst := worstViolations(violations)

	best := -1
	for i, w := range worst {
		if w >= 0 {
			continue
		}

		if best < 0 || errs[i] < errs[best] {
			best = i
		}
	}

	if best < 0 {
		return nil
	}

	out := make([]float64, len(errs))
	out[best] = 1

	return out
}

// repairedUniform starts from the uniform average and greedily drops the
// support point whose removal most improves the averaged play, feasibility
// first, until the support fits the sparsity bound. The result stays
// uniform over its remaining support.
func repairedUniform(errs []float64, violations *mat.Dense, maxSupport int) []float64 {
	n := len(errs)
	_, m := violations.Dims()

	support := make([]int, n)
	for i := range support {
		support[i] = i
	}

	var sumErr float64
	sumViol := make([]float64, m)

	for _, i := range support {
		sumErr += errs[i]
		for j := 0; j < m; j++ {
			sumViol[j] += violations.At(i, j)
		}
	}

	for len(support) > maxSupport {
		k := float64(len(support) - 1)

		bestPos := -1
		bestErr := math.Inf(1)
		bestViol := math.Inf(1)

		for pos, i := range support {
			cErr := (sumErr - errs[i]) / k

			cViol := math.Inf(-1)
			for j := 0; j < m; j++ {
				if v := (sumViol[j] - violations.At(i, j)) / k; v > cViol {
					cViol = v
				}
			}
			cViol = math.Max(0, cViol)

			if bestPos < 0 || lexBetter(cErr, cViol, bestErr, bestViol) {
				bestPos = pos
				bestErr = cErr
				bestViol = cViol
			}
		}

		dropped := support[bestPos]
		sumErr -= errs[dropped]
		for j := 0; j < m; j++ {
			sumViol[j] -= violations.At(dropped, j)
		}

		support = append(support[:bestPos], support[bestPos+1:]...)
	}

	out := make([]float64, n)
	for _, i := range support {
		out[i] = 1 / float64(len(support))
	}

	return out
}

// pickBest selects the feasibility-first best candidate distribution,
// comparing expected clamped worst-case violation and then expected error.
// Earlier candidates win ties.
func pickBest(errs []float64, violations *mat.Dense, candidates [][]float64) []float64 {
	best := candidates[0]
	bestErr, bestViol := evaluate(errs, violations, best)
	bestViol = math.Max(0, bestViol)

	for _, c := range candidates[1:] {
		cErr, cViol := evaluate(errs, violations, c)
		cViol = math.Max(0, cViol)

		if lexBetter(cErr, cViol, bestErr, bestViol) {
			best = c
			bestErr = cErr
			bestViol = cViol
		}
	}

	return best
}

//////
// Helpers.
//////

// evaluate returns the expected error and expected worst-case violation of
// a distribution over snapshots.
func evaluate(errs []float64, violations *mat.Dense, dist []float64) (expErr, expViol float64) {
	for i, p := range dist {
		expErr += p * errs[i]
	}

	_, m := violations.Dims()

	expViol = math.Inf(-1)

	for j := 0; j < m; j++ {
		var v float64
		for i, p := range dist {
			v += p * violations.At(i, j)
		}

		if v > expViol {
			expViol = v
		}
	}

	return expErr, expViol
}

// dominatesUniform reports whether the distribution is no worse than the
// uniform average in both expected error and expected clamped worst-case
// violation.
func dominatesUniform(errs []float64, violations *mat.Dense, dist []float64, tol float64) bool {
	uniform := make([]float64, len(errs))
	for i := range uniform {
		uniform[i] = 1 / float64(len(errs))
	}

	dErr, dViol := evaluate(errs, violations, dist)
	uErr, uViol := evaluate(errs, violations, uniform)

	return dErr <= uErr+tol && math.Max(0, dViol) <= math.Max(0, uViol)+tol
}

// lexBetter orders (violation, error) pairs feasibility-first.
func lexBetter(err1, viol1, err2, viol2 float64) bool {
	if viol1 != viol2 {
		return viol1 < viol2
	}

	return err1 < err2
}

// worstViolations returns each row's maximum violation.
func worstViolations(violations *mat.Dense) []float64 {
	rows, cols := violations.Dims()

	out := make([]float64, rows)

	for i := 0; i < rows; i++ {
		w := math.Inf(-1)
		for j := 0; j < cols; j++ {
			if v := violations.At(i, j); v > w {
				w = v
			}
		}

		out[i] = w
	}

	return out
}

// minRanks assigns each value the count of strictly smaller values, so ties
// share the lowest rank.
func minRanks(xs []float64) []int {
	ranks := make([]int, len(xs))

	for i, x := range xs {
		for _, y := range xs {
			if y < x {
				ranks[i]++
			}
		}
	}

	return ranks
}

// normalized divides a nonnegative vector by its sum.
func normalized(counts []float64) []float64 {
	var total float64
	for _, c := range counts {
		total += c
	}

	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}

	for i, c := range counts {
		out[i] = c / total
	}

	return out
}

// argmin returns the index of the smallest value, lowest index on ties.
func argmin[T constraints.Ordered](xs []T) int {
	best := 0
	for i, x := range xs {
		if x < xs[best] {
			best = i
		}
	}

	return best
}

package optimizer

import (
	"context"
	"log/slog"
	"math"

	"github.com/thalesfsp/rco"
)

//////
// Const, vars, types.
//////

// PredictFunc is the external model-evaluation boundary: given parameters,
// produce one real-valued prediction per dataset example. Callers close
// over their feature data.
type PredictFunc func(params []float64) []float64

// TrueObjectiveProblem is an optional capability: problems that can report
// the exact (zero-one) value of their objective expose it for snapshot
// error metrics. rco.RateProblem implements it.
type TrueObjectiveProblem interface {
	TrueObjective(preds []float64) (float64, error)
}

// Snapshot is an immutable per-epoch record of the training state: a scalar
// error and the true violation of every constraint. Snapshots accumulate
// across epochs and feed the candidate subpackage.
type Snapshot struct {
	// Error is the snapshot's scalar error metric (see Config.ErrorMetric).
	Error float64

	// Violations holds one true constraint violation per declared
	// constraint; an entry <= 0 means satisfied.
	Violations []float64
}

// ProgressUpdate represents the current state of the training process.
type ProgressUpdate struct {
	// Epoch is the current epoch number (1-based).
	Epoch int

	// TotalEpochs is the number of epochs requested from Run.
	TotalEpochs int

	// Error is the latest snapshot's error metric.
	Error float64

	// MaxViolation is the largest true constraint violation in the latest
	// snapshot.
	MaxViolation float64
}

// Config holds all knobs for the proxy-Lagrangian training process.
// Zero values are replaced with sensible defaults.
type Config struct {
	// LearningRate is the model-parameter step size. Ignored when
	// ParamOptimizer is set. Default 0.05.
	LearningRate float64

	// MultiplierLearningRate is the step size of the multiplicative-weights
	// multiplier update. Default 0.1.
	MultiplierLearningRate float64

	// GradientEpsilon is the central-difference half-width used for
	// numerical gradients. Default 1e-5.
	GradientEpsilon float64

	// ParamOptimizer performs the parameter descent step. Defaults to
	// Adam with LearningRate.
	ParamOptimizer GradientDescent

	// ErrorMetric computes a snapshot's scalar error from predictions.
	// When nil, the problem's true objective is used if it exposes one
	// (TrueObjectiveProblem), otherwise the proxy objective.
	ErrorMetric func(preds []float64) float64

	// Logger receives per-epoch training lines. Nil disables logging.
	Logger *slog.Logger

	// ProgressChan receives per-epoch progress updates from Run. Sends are
	// non-blocking; updates are dropped if the channel is full. Nil
	// disables updates.
	ProgressChan chan<- ProgressUpdate
}

// Minimizer builds Trainings from problems.
type Minimizer struct {
	cfg Config
}

// Training is the opaque unit of work returned by Minimize. Each Step runs
// one two-timescale update; Run iterates Steps and records per-epoch
// Snapshots. A Training owns its multiplier state exclusively.
type Training struct {
	problem  rco.Problem
	predict  PredictFunc
	params   []float64
	state    *multipliers
	paramOpt GradientDescent
	gradEps  float64
	metric   func(preds []float64) float64
	logger   *slog.Logger
	progress chan<- ProgressUpdate
}

//////
// Factory.
//////

// NewMinimizer creates a Minimizer with the given config. Zero-valued
// fields receive defaults: LearningRate=0.05, MultiplierLearningRate=0.1,
// GradientEpsilon=1e-5.
func NewMinimizer(cfg Config) *Minimizer {
	if cfg.LearningRate == 0 {
		cfg.LearningRate = 0.05
	}

	if cfg.MultiplierLearningRate == 0 {
		cfg.MultiplierLearningRate = 0.1
	}

	if cfg.GradientEpsilon == 0 {
		cfg.GradientEpsilon = 1e-5
	}

	return &Minimizer{cfg: cfg}
}

//////
// Exported functionalities.
//////

// Minimize packages a problem, a model boundary, and initial parameters
// into a Training. It evaluates the problem once at the initial parameters
// to validate the shape contract: the true and proxy constraint vectors
// must be index-aligned and of equal length.
//
// Returns rco.ErrShapeMismatch for malformed custom problems, and
// propagates evaluation errors such as rco.ErrEmptySlice.
func (m *Minimizer) Minimize(problem rco.Problem, predict PredictFunc, initial []float64) (*Training, error) {
	preds := predict(initial)

	trueViolations, err := problem.Constraints(preds)
	if err != nil {
		return nil, err
	}

	proxyViolations, err := problem.ProxyConstraints(preds)
	if err != nil {
		return nil, err
	}

	if len(trueViolations) != len(proxyViolations) {
		return nil, rco.ErrShapeMismatch
	}

	if _, err := problem.Objective(preds); err != nil {
		return nil, err
	}

	params := make([]float64, len(initial))
	copy(params, initial)

	paramOpt := m.cfg.ParamOptimizer
	if paramOpt == nil {
		paramOpt = NewAdam(m.cfg.LearningRate)
	}

	metric := m.cfg.ErrorMetric
	if metric == nil {
		metric = defaultMetric(problem)
	}

	return &Training{
		problem:  problem,
		predict:  predict,
		params:   params,
		state:    newMultipliers(len(trueViolations), m.cfg.MultiplierLearningRate),
		paramOpt: paramOpt,
		gradEps:  m.cfg.GradientEpsilon,
		metric:   metric,
		logger:   m.cfg.Logger,
		progress: m.cfg.ProgressChan,
	}, nil
}

//////
// Methods.
//////

// Step runs one training step: a descent step on the model parameters
// using the gradient of the multiplier-weighted proxy Lagrangian, then a
// multiplicative-weights update of the multiplier state using the true
// constraint violations.
func (t *Training) Step() error {
	preds := t.predict(t.params)

	trueViolations, err := t.problem.Constraints(preds)
	if err != nil {
		return err
	}

	grads, err := t.gradient()
	if err != nil {
		return err
	}

	t.params = t.paramOpt.Update(t.params, grads)
	t.state.update(trueViolations)

	return nil
}

// Run iterates Step for the requested number of epochs, recording one
// Snapshot per epoch. The context cancels long-running trainings; on
// cancellation the snapshots recorded so far are returned together with the
// context's error.
func (t *Training) Run(ctx context.Context, epochs int) ([]Snapshot, error) {
	snapshots := make([]Snapshot, 0, epochs)

	for epoch := 1; epoch <= epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return snapshots, err
		}

		if err := t.Step(); err != nil {
			return snapshots, err
		}

		snap, err := t.Snapshot()
		if err != nil {
			return snapshots, err
		}

		snapshots = append(snapshots, snap)

		maxViolation := maxOf(snap.Violations)

		if t.logger != nil {
			t.logger.Debug("epoch",
				"epoch", epoch,
				"error", snap.Error,
				"max_violation", maxViolation,
			)
		}

		if t.progress != nil {
			update := ProgressUpdate{
				Epoch:        epoch,
				TotalEpochs:  epochs,
				Error:        snap.Error,
				MaxViolation: maxViolation,
			}

			select {
			case t.progress <- update:
			default:
				// Skip update if channel is full.
			}
		}
	}

	return snapshots, nil
}

// Snapshot evaluates the current parameters into an immutable (error,
// violations) record.
func (t *Training) Snapshot() (Snapshot, error) {
	preds := t.predict(t.params)

	violations, err := t.problem.Constraints(preds)
	if err != nil {
		return Snapshot{}, err
	}

	recorded := make([]float64, len(violations))
	copy(recorded, violations)

	return Snapshot{Error: t.metric(preds), Violations: recorded}, nil
}

// Params returns a copy of the current model parameters.
func (t *Training) Params() []float64 {
	out := make([]float64, len(t.params))
	copy(out, t.params)

	return out
}

// Multipliers returns a copy of the current multiplier distribution. Entry
// 0 weights the objective; entry i+1 weights constraint i.
func (t *Training) Multipliers() []float64 {
	return t.state.snapshot()
}

// lagrangian is the multiplier-weighted proxy combination at the given
// parameters. Gradient steps differentiate this; it only ever touches
// proxy evaluations.
func (t *Training) lagrangian(params []float64) (float64, error) {
	preds := t.predict(params)

	objective, err := t.problem.Objective(preds)
	if err != nil {
		return 0, err
	}

	proxyViolations, err := t.problem.ProxyConstraints(preds)
	if err != nil {
		return 0, err
	}

	total := t.state.objectiveWeight() * objective
	for i, v := range proxyViolations {
		total += t.state.constraintWeight(i) * v
	}

	return total, nil
}

// gradient computes the gradient of the proxy Lagrangian with respect to
// the model parameters using central differences:
// dL/dw[i] ≈ (L(w[i]+ε) - L(w[i]-ε)) / (2ε).
func (t *Training) gradient() ([]float64, error) {
	grads := make([]float64, len(t.params))

	shifted := make([]float64, len(t.params))
	copy(shifted, t.params)

	for i := range t.params {
		shifted[i] = t.params[i] + t.gradEps

		plus, err := t.lagrangian(shifted)
		if err != nil {
			return nil, err
		}

		shifted[i] = t.params[i] - t.gradEps

		minus, err := t.lagrangian(shifted)
		if err != nil {
			return nil, err
		}

		shifted[i] = t.params[i]

		grads[i] = (plus - minus) / (2 * t.gradEps)
	}

	return grads, nil
}

//////
// Helpers.
//////

// defaultMetric picks the snapshot error metric for a problem: the exact
// objective when available, the proxy objective otherwise. Evaluation
// errors surface as NaN rather than silently vanishing.
func defaultMetric(problem rco.Problem) func(preds []float64) float64 {
	if exact, ok := problem.(TrueObjectiveProblem); ok {
		return func(preds []float64) float64 {
			v, err := exact.TrueObjective(preds)
			if err != nil {
				return math.NaN()
			}

			return v
		}
	}

	return func(preds []float64) float64 {
		v, err := problem.Objective(preds)
		if err != nil {
			return math.NaN()
		}

		return v
	}
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}

	return m
}

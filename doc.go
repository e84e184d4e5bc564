// Package rco expresses and solves rate-constrained optimization problems:
// minimize a rate-based objective (e.g. error rate) subject to rate
// constraints (e.g. "recall must be at least 90%", "false positive rates
// must match across protected groups").
//
// # Features
//
// The package includes the following key features:
//
//   - Rate Expression Algebra: build affine combinations of rates (error
//     rate, recall, false positive rate, ...) over dataset slices, with
//     comparison operators producing constraints
//   - Two-Loss Evaluation: every rate carries both a differentiable hinge
//     surrogate (driving gradient steps) and the exact zero-one value
//     (driving constraint reporting and multiplier updates)
//   - Problem Adapter: a fixed three-method Problem interface uniformly
//     exposing objective, true constraint violations, and proxy constraint
//     violations, for rate-built and hand-authored problems alike
//   - Proxy-Lagrangian Training: the optimizer subpackage alternates
//     descent on model parameters with multiplicative-weights updates on
//     an internal multiplier state driven by true violations
//   - Candidate Selection: the candidate subpackage picks the best iterate
//     or a sparse distribution over iterates from per-epoch snapshots
//
// # Basic usage
//
//	ctx := rco.NewContext(labels)
//
//	problem := rco.NewRateProblem(
//	    rco.ErrorRate(ctx),
//	    rco.Recall(ctx).LowerBound(0.9),
//	)
//
//	m := optimizer.NewMinimizer(optimizer.Config{})
//	training, err := m.Minimize(problem, predict, initialParams)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	snapshots, err := training.Run(context.Background(), 500)
//
// The model-evaluation boundary is external: rco only ever sees a vector
// of real-valued predictions, produced by whatever model the caller
// trains. The model subpackage provides a linear model for the common
// case.
//
// # Eager evaluation
//
// All evaluation is direct and eager: expressions compose into concrete
// value computations at call time and the training loop is a plain
// iteration issuing explicit parameter-update calls. There is no deferred
// graph, no global session, and no global random state; pseudo-random
// generators are passed explicitly where needed.
package rco

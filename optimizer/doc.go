// Package optimizer implements proxy-Lagrangian training for
// rate-constrained problems.
//
// Each training step runs two coupled updates on different signals:
//
//  1. A descent step on model parameters, using the gradient of the
//     multiplier-weighted combination of the proxy objective and proxy
//     constraint violations. Parameter updates only ever see
//     differentiable surrogates.
//  2. A multiplicative-weights update on an internal multiplier state,
//     driven by the exact (non-differentiable) constraint violations. The
//     multipliers decide how much each constraint is penalized in the next
//     step's proxy combination.
//
// The split lets the optimizer track the true feasible region while still
// producing valid gradients. For non-convex surrogates there is no
// iterate-by-iterate guarantee; record per-epoch snapshots and post-process
// them with the candidate subpackage.
package optimizer

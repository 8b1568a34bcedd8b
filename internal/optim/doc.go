// Package optim provides the optimizers that train a PINN and a grid search
// over training hyperparameters.
//
// All optimizers work on an [Objective] exposing a flat parameter vector:
//
//   - [SGD]: gradient descent with optional momentum
//   - [Adam]: adaptive moments
//   - [LBFGS]: limited-memory quasi-Newton (gonum/optimize), several inner
//     iterations per step
//
// An optimizer that can make no further progress returns an error wrapping
// [ErrConverged]; callers treat that as a normal stop.
package optim

// Package pinn builds the physics-informed cost for the elastic bar.
//
// The cost has two parts: the squared PDE residual EA*(uxx+q) averaged over
// collocation points, and the squared misfit of the prescribed end
// displacements. [Model] exposes it both as a plain evaluation
// ([Model.CostFunction]) and with exact parameter gradients ([Model.Gradient]),
// and satisfies the optim.Objective interface.
package pinn

// Package nn implements the small fully connected network used as a PINN trial
// function.
//
// Besides the usual forward pass, [Network.ForwardDerivs] carries the first
// and second derivative of every activation with respect to the scalar input,
// so u, ux and uxx come out of a single sweep. [Network.Backward] runs the
// chain rule back through that augmented sweep, which is what a physics loss
// built on uxx needs to train the weights.
//
// Parameters live in one flat vector ([Network.Params]); layers hold views
// into it, which lets vector optimizers update the network in place.
package nn

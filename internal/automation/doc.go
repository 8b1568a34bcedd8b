// Package automation runs batches of training runs: scripted scenarios
// loaded from YAML and multi-seed ensembles.
//
// A scenario file looks like:
//
//	name: optimizer-comparison
//	steps:
//	  - name: adam-warmup
//	    optimizer: adam
//	    params: {lr: 0.01, epochs: 500}
//	  - name: lbfgs
//	    preset: reference
//	    params: {max_iter: 50}
package automation

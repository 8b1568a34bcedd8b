// Package viz renders training progress in the terminal.
//
// [LossPlot], [LossTermsPlot] and [ProfilePlot] draw asciigraph charts of the
// loss history and of the learned displacement against the analytic one.
// [Model] is a Bubble Tea program that trains one or more epochs per frame
// and redraws both charts live.
//
// # Key Bindings
//
//	Space - Pause/Resume training
//	R     - Restore the initial weights and restart
//	+/-   - Double/halve epochs per frame
//	T     - Cycle color themes
//	?     - Show help overlay
package viz

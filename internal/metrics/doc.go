// Package metrics scores trained networks and reports training progress.
//
//   - [Compare]: relative L2, max-abs and RMS error against the exact solution
//   - [BestLoss], [LossReduction], [BoundaryShare]: per-epoch loss metrics
//   - [Telemetry]: Prometheus gauges, counters and step-time histogram
//   - [Server]: chi router exposing a registry on /metrics
package metrics

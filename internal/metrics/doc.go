// Package metrics defines Prometheus metrics for long sampling runs.
//
// Metrics are registered with the default registry on import. The sampler
// updates them as passes complete; Serve exposes them over HTTP:
//
//	go metrics.Serve(ctx, ":9120")
//	// curl localhost:9120/metrics
//
// Sampling metrics count passes, failures, recorded and guessed tracks.
// Sample gauges track the stored pass count and the first-track mean next
// to the tracklist's true mean, so drift is visible on a dashboard while a
// run is in progress.
package metrics

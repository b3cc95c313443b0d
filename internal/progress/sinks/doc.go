// Package sinks implements concrete progress consumers: Prometheus
// collectors, structured logging, and the in-memory stats aggregator the
// CLI prints as its run summary. Each sink satisfies the progress.Sink
// interface and is safe for repeated Consume/Close cycles.
package sinks

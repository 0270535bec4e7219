// Package metrics exports the governance engine's Prometheus metrics.
//
// A Collector groups quality, reconciliation, rule, signal and run
// metrics under one registry. Labels that carry object identifiers are
// capped by a CardinalityLimiter; overflow is reported as "other".
package metrics

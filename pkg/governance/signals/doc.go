// Package signals hands triggered governance rules to the exception queue.
//
// A rule result with ShouldEmitException becomes an ExceptionSignal. The
// signal carries a fingerprint over rule ID, category and the sorted
// affected record IDs, so re-evaluating an unchanged situation does not
// flood the queue: a Recorder emits each fingerprint once per lifetime.
//
// Delivery is asynchronous. Emit enqueues onto a buffered channel and a
// single worker calls the Sink; Close drains the channel before returning.
// Sinks:
//
//   - MemorySink for tests and dry runs
//   - LogSink writing structured slog lines
//   - RedisSink appending to a Redis stream with XADD
package signals

package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sink delivers signals to an exception queue.
type Sink interface {
	Name() string
	Send(ctx context.Context, sig *ExceptionSignal) error
}

// MemorySink keeps signals in memory. Used by tests and dry runs.
type MemorySink struct {
	mu      sync.Mutex
	signals []*ExceptionSignal
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Name implements Sink.
func (s *MemorySink) Name() string { return "memory" }

// Send implements Sink.
func (s *MemorySink) Send(ctx context.Context, sig *ExceptionSignal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sig
	s.signals = append(s.signals, &c)
	return nil
}

// Signals returns the signals received so far.
func (s *MemorySink) Signals() []*ExceptionSignal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ExceptionSignal(nil), s.signals...)
}

// LogSink writes each signal as a structured log line.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to logger, or to the default logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default().With("component", "governance.signals")
	}
	return &LogSink{logger: logger}
}

// Name implements Sink.
func (s *LogSink) Name() string { return "log" }

// Send implements Sink.
func (s *LogSink) Send(ctx context.Context, sig *ExceptionSignal) error {
	s.logger.WarnContext(ctx, "governance exception",
		"signal_id", sig.ID,
		"rule_id", sig.RuleID,
		"category", sig.Category,
		"severity", string(sig.Severity),
		"affected_count", len(sig.AffectedIDs),
		"fingerprint", sig.Fingerprint,
		"message", sig.Message,
	)
	return nil
}

// RedisConfig configures the Redis stream sink.
type RedisConfig struct {
	URL          string
	Stream       string
	MaxLen       int64
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisSink appends signals to a Redis stream with XADD.
type RedisSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisSink connects to Redis and verifies the connection with PING.
func NewRedisSink(ctx context.Context, cfg RedisConfig) (*RedisSink, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisSinkWithClient(client, cfg.Stream, cfg.MaxLen), nil
}

// NewRedisSinkWithClient wraps an existing client. An empty stream name
// defaults to "governance:exceptions".
func NewRedisSinkWithClient(client *redis.Client, stream string, maxLen int64) *RedisSink {
	if stream == "" {
		stream = "governance:exceptions"
	}
	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

// Name implements Sink.
func (s *RedisSink) Name() string { return "redis" }

// Send implements Sink.
func (s *RedisSink) Send(ctx context.Context, sig *ExceptionSignal) error {
	values, err := streamValues(sig)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	return s.client.XAdd(ctx, args).Err()
}

// Health pings Redis.
func (s *RedisSink) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

// streamValues flattens a signal into stream entry fields.
func streamValues(sig *ExceptionSignal) (map[string]any, error) {
	payload, err := json.Marshal(sig)
	if err != nil {
		return nil, err
	}
	values := map[string]any{
		"id":           sig.ID,
		"rule_id":      sig.RuleID,
		"category":     sig.Category,
		"severity":     string(sig.Severity),
		"fingerprint":  sig.Fingerprint,
		"affected_ids": strings.Join(sig.AffectedIDs, ","),
		"emitted_at":   sig.EmittedAt.UTC().Format(time.RFC3339Nano),
		"payload":      string(payload),
	}
	if tp := sig.TraceContext["traceparent"]; tp != "" {
		values["traceparent"] = tp
	}
	return values, nil
}

package signals

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wealthos/governance/pkg/governance"
)

// Config contains configuration for the signal recorder.
type Config struct {
	// AsyncBuffer is the size of the async send channel buffer.
	// Default: 256
	AsyncBuffer int

	// WriteTimeout bounds both enqueueing and each sink call.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// Dedupe drops signals whose fingerprint was already emitted by this
	// recorder.
	// Default: true
	Dedupe bool

	// OnSent and OnFailed, when set, are called by the worker after each
	// delivery attempt.
	OnSent   func(sig *ExceptionSignal)
	OnFailed func(sig *ExceptionSignal, err error)
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:  256,
		WriteTimeout: 5 * time.Second,
		Dedupe:       true,
	}
}

// Recorder hands signals to a sink asynchronously so rule evaluation never
// blocks on the exception queue.
type Recorder struct {
	sink   Sink
	config *Config
	ch     chan *ExceptionSignal
	wg     sync.WaitGroup
	done   chan struct{}
	once   sync.Once
	seen   sync.Map // fingerprint -> signal id
	logger *slog.Logger
}

// NewRecorder starts a recorder delivering to sink.
func NewRecorder(sink Sink, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 256
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		sink:   sink,
		config: config,
		ch:     make(chan *ExceptionSignal, config.AsyncBuffer),
		done:   make(chan struct{}),
		logger: slog.Default().With("component", "governance.signals", "sink", sink.Name()),
	}

	r.wg.Add(1)
	go r.worker()
	return r
}

// Emit enqueues sig. It reports false without error when sig is a
// duplicate of an earlier signal.
func (r *Recorder) Emit(ctx context.Context, sig *ExceptionSignal) (bool, error) {
	if r.config.Dedupe {
		if _, loaded := r.seen.LoadOrStore(sig.Fingerprint, sig.ID); loaded {
			r.logger.Debug("duplicate signal dropped",
				"rule_id", sig.RuleID,
				"fingerprint", sig.Fingerprint,
			)
			return false, nil
		}
	}

	select {
	case <-r.done:
		r.seen.Delete(sig.Fingerprint)
		return false, governance.NewSignalError(sig.ID, r.sink.Name(), context.Canceled)
	default:
	}

	select {
	case r.ch <- sig:
		return true, nil
	case <-ctx.Done():
		r.seen.Delete(sig.Fingerprint)
		return false, governance.NewSignalError(sig.ID, r.sink.Name(), ctx.Err())
	case <-time.After(r.config.WriteTimeout):
		r.seen.Delete(sig.Fingerprint)
		r.logger.Error("signal channel full, dropping signal",
			"signal_id", sig.ID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return false, governance.NewSignalError(sig.ID, r.sink.Name(), context.DeadlineExceeded)
	case <-r.done:
		r.seen.Delete(sig.Fingerprint)
		return false, governance.NewSignalError(sig.ID, r.sink.Name(), context.Canceled)
	}
}

// Close stops accepting signals and waits until queued ones are delivered.
func (r *Recorder) Close() error {
	r.once.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case sig := <-r.ch:
			r.send(sig)
		case <-r.done:
			for {
				select {
				case sig := <-r.ch:
					r.send(sig)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) send(sig *ExceptionSignal) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.sink.Send(ctx, sig); err != nil {
		r.logger.Error("failed to deliver signal",
			"signal_id", sig.ID,
			"rule_id", sig.RuleID,
			"error", err,
		)
		// Undelivered signals must stay eligible for a later emit.
		r.seen.CompareAndDelete(sig.Fingerprint, sig.ID)
		if r.config.OnFailed != nil {
			r.config.OnFailed(sig, governance.NewSignalError(sig.ID, r.sink.Name(), err))
		}
		return
	}

	r.logger.Debug("signal delivered", "signal_id", sig.ID, "rule_id", sig.RuleID)
	if r.config.OnSent != nil {
		r.config.OnSent(sig)
	}
}

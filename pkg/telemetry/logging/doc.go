// Package logging provides structured logging with redaction of client
// identifiers.
//
// The logger wraps log/slog. Its handler adds governance context fields
// (tenant_id, run_id, kpi_id, rule_id, actor_id) and the active trace and
// span IDs to every record, then masks IBANs, account numbers, emails and
// bearer tokens when RedactPII is set:
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRunID(ctx, runID)
//	slog.InfoContext(ctx, "scored", "kpi", kpi.ID) // includes run_id
package logging

package signals

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/rules"
)

// ExceptionSignal is the handoff of a triggered rule to the exception
// queue. The queue itself lives outside this engine.
type ExceptionSignal struct {
	ID          string              `json:"id"`
	RuleID      string              `json:"rule_id"`
	RuleName    string              `json:"rule_name"`
	Category    string              `json:"category"`
	Severity    governance.Severity `json:"severity"`
	Message     string              `json:"message"`
	AffectedIDs []string            `json:"affected_ids"`
	Fingerprint string              `json:"fingerprint"`
	EmittedAt   time.Time           `json:"emitted_at"`

	// TraceContext carries W3C trace headers of the emitting run.
	TraceContext map[string]string `json:"trace_context,omitempty"`
}

// FromResult builds a signal from a rule result. It does not check
// ShouldEmitException; callers filter with rules.RequiringExceptions.
func FromResult(r rules.Result, now time.Time) *ExceptionSignal {
	affected := append([]string(nil), r.AffectedIDs...)
	sort.Strings(affected)

	return &ExceptionSignal{
		ID:          uuid.NewString(),
		RuleID:      r.RuleID,
		RuleName:    r.RuleName,
		Category:    r.ExceptionCategory,
		Severity:    r.Severity,
		Message:     r.Message,
		AffectedIDs: affected,
		Fingerprint: Fingerprint(r.RuleID, r.ExceptionCategory, r.AffectedIDs),
		EmittedAt:   now,
	}
}

// Fingerprint identifies a signal by rule, category and affected records,
// independent of the order of ids.
func Fingerprint(ruleID, category string, affectedIDs []string) string {
	ids := append([]string(nil), affectedIDs...)
	sort.Strings(ids)

	h := sha256.New()
	h.Write([]byte(ruleID))
	h.Write([]byte{0})
	h.Write([]byte(category))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(ids, "\x1f")))
	return hex.EncodeToString(h.Sum(nil))
}

package governance

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestParseLocale tests mapping of language tags onto the closed locale set.
func TestParseLocale(t *testing.T) {
	tests := []struct {
		input string
		want  Locale
	}{
		{"", LocaleEN},
		{"en", LocaleEN},
		{"en-GB", LocaleEN},
		{"ru", LocaleRU},
		{"ru-RU", LocaleRU},
		{"uk", LocaleUK},
		{"uk-UA", LocaleUK},
		{"ja", LocaleEN},
		{"uk-UA,ru;q=0.8", LocaleUK},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLocale(tt.input); got != tt.want {
				t.Errorf("ParseLocale(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestLabels_Exhaustive tests that every enum value has a label in every locale.
func TestLabels_Exhaustive(t *testing.T) {
	for _, loc := range Locales {
		for _, c := range []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow} {
			if c.Label(loc) == string(c) {
				t.Errorf("Confidence %q has no %s label", c, loc)
			}
		}
		for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
			if s.Label(loc) == string(s) {
				t.Errorf("Severity %q has no %s label", s, loc)
			}
		}
		for _, s := range []ReconStatus{ReconOK, ReconBreak, ReconPending} {
			if s.Label(loc) == string(s) {
				t.Errorf("ReconStatus %q has no %s label", s, loc)
			}
		}
		for _, s := range []OverrideStatus{OverrideDraft, OverridePending, OverrideApproved, OverrideRejected, OverrideApplied} {
			if s.Label(loc) == string(s) {
				t.Errorf("OverrideStatus %q has no %s label", s, loc)
			}
		}
		for _, b := range []TrustBadge{TrustVerified, TrustEstimated, TrustStale} {
			if b.Label(loc) == string(b) {
				t.Errorf("TrustBadge %q has no %s label", b, loc)
			}
		}
		for _, q := range []QualityLevel{QualityHigh, QualityMedium, QualityLow} {
			if q.Label(loc) == string(q) {
				t.Errorf("QualityLevel %q has no %s label", q, loc)
			}
		}
		for _, d := range Domains {
			if d.Label(loc) == string(d) {
				t.Errorf("Domain %q has no %s label", d, loc)
			}
		}
	}
}

func TestLabels_UnknownValue(t *testing.T) {
	if got := Confidence("bogus").Label(LocaleEN); got != "bogus" {
		t.Errorf("Label() = %q, want raw value", got)
	}
}

func TestNotFoundError_Is(t *testing.T) {
	err := fmt.Errorf("load kpi: %w", NewNotFoundError(CollectionKpis, "k1"))
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false, want true")
	}
	if !strings.Contains(err.Error(), "dataKpis/k1") {
		t.Errorf("Error() = %q, want collection and id", err.Error())
	}
}

func TestValidationError_Message(t *testing.T) {
	single := NewValidationError("override", "reason too short")
	if single.Error() != "invalid override: reason too short" {
		t.Errorf("Error() = %q", single.Error())
	}

	multi := NewValidationError("override", "a", "b")
	if !strings.Contains(multi.Error(), "2 issues") {
		t.Errorf("Error() = %q, want issue count", multi.Error())
	}
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("sqlite", "append", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestOverrideStatus_Terminal(t *testing.T) {
	terminal := map[OverrideStatus]bool{
		OverrideDraft:    false,
		OverridePending:  false,
		OverrideApproved: false,
		OverrideRejected: true,
		OverrideApplied:  true,
	}
	for s, want := range terminal {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
}

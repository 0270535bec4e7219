package override

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"wealthos/governance/pkg/governance"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func amount(v float64) *float64 { return &v }

func validRequest() Request {
	return Request{
		TargetType:  governance.TargetKpi,
		TargetID:    "kpi-1",
		Type:        governance.OverrideAdjustment,
		Value:       governance.OverrideValue{AdjustmentAmount: amount(250)},
		Reason:      "Custodian feed missed a late trade",
		RequestedBy: "alice",
	}
}

func mustCreate(t *testing.T) governance.Override {
	t.Helper()
	o, err := Create(validRequest())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return o
}

func TestCreate_StartsAsDraft(t *testing.T) {
	o := mustCreate(t)
	if o.StatusKey != governance.OverrideDraft {
		t.Errorf("StatusKey = %s, want draft", o.StatusKey)
	}
	if len(o.History) != 0 {
		t.Errorf("History = %v, want empty", o.History)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Request)
		wantIssue string
	}{
		{"valid", func(r *Request) {}, ""},
		{"missing target", func(r *Request) { r.TargetID = "" }, "target id is required"},
		{"short reason", func(r *Request) { r.Reason = "too short" }, "at least 10 characters"},
		{"missing requester", func(r *Request) { r.RequestedBy = "" }, "requester id is required"},
		{"padded short reason", func(r *Request) { r.Reason = "   abc    " }, "at least 10 characters"},
		{"blank requester", func(r *Request) { r.RequestedBy = "   " }, "requester id is required"},
		{"blank target", func(r *Request) { r.TargetID = "\t" }, "target id is required"},
		{"bad target type", func(r *Request) { r.TargetType = "account" }, "target type"},
		{"zero adjustment", func(r *Request) { r.Value.AdjustmentAmount = amount(0) }, "non-zero adjustment amount"},
		{"nil adjustment", func(r *Request) { r.Value.AdjustmentAmount = nil }, "non-zero adjustment amount"},
		{"reclass without value", func(r *Request) {
			r.Type = governance.OverrideReclass
		}, "reclass requires a new value"},
		{"reclass with value", func(r *Request) {
			r.Type = governance.OverrideReclass
			r.Value.NewValue = "equity"
		}, ""},
		{"mapping fix needs nothing extra", func(r *Request) {
			r.Type = governance.OverrideMappingFix
			r.Value.AdjustmentAmount = nil
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := Validate(req)

			if tt.wantIssue == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			var vErr *governance.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if !strings.Contains(vErr.Error(), tt.wantIssue) {
				t.Errorf("Validate() error = %q, want to contain %q", vErr.Error(), tt.wantIssue)
			}
		})
	}
}

// TestApproveFromDraft tests that approval requires a prior submit.
func TestApproveFromDraft(t *testing.T) {
	o := mustCreate(t)

	_, err := Approve(o, "bob", now)
	var tErr *governance.InvalidTransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("Approve(draft) error = %v, want *InvalidTransitionError", err)
	}

	o, err = Submit(o, "alice", now)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	o, err = Approve(o, "bob", now)
	if err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if o.StatusKey != governance.OverrideApproved || o.ApprovedBy != "bob" {
		t.Errorf("got status %s approvedBy %q", o.StatusKey, o.ApprovedBy)
	}
}

func TestFullLifecycle(t *testing.T) {
	o := mustCreate(t)
	var err error

	if o, err = Submit(o, "alice", now); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if o, err = Approve(o, "bob", now.Add(time.Hour)); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	applyAt := now.Add(2 * time.Hour)
	if o, err = Apply(o, "carol", applyAt); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	if o.StatusKey != governance.OverrideApplied {
		t.Errorf("StatusKey = %s, want applied", o.StatusKey)
	}
	if o.AppliedAt == nil || !o.AppliedAt.Equal(applyAt) {
		t.Errorf("AppliedAt = %v, want %v", o.AppliedAt, applyAt)
	}
	if len(o.History) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(o.History))
	}
	if o.History[2].From != governance.OverrideApproved || o.History[2].Actor != "carol" {
		t.Errorf("History[2] = %+v", o.History[2])
	}
}

// TestTransitions_Exhaustive tests every (state, action) pair against the table.
func TestTransitions_Exhaustive(t *testing.T) {
	legal := map[governance.OverrideStatus][]governance.OverrideAction{
		governance.OverrideDraft:    {governance.ActionSubmit},
		governance.OverridePending:  {governance.ActionApprove, governance.ActionReject},
		governance.OverrideApproved: {governance.ActionApply},
		governance.OverrideRejected: {},
		governance.OverrideApplied:  {},
	}

	for status, want := range legal {
		got := AvailableTransitions(status)
		if len(got) != len(want) {
			t.Errorf("AvailableTransitions(%s) = %v, want %v", status, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("AvailableTransitions(%s)[%d] = %s, want %s", status, i, got[i], want[i])
			}
		}

		for _, action := range actionOrder {
			allowed := false
			for _, a := range want {
				if a == action {
					allowed = true
				}
			}
			o := governance.Override{StatusKey: status, RequestedBy: "alice"}
			var err error
			switch action {
			case governance.ActionSubmit:
				_, err = Submit(o, "alice", now)
			case governance.ActionApprove:
				_, err = Approve(o, "bob", now)
			case governance.ActionReject:
				_, err = Reject(o, "bob", "numbers do not tie out", now)
			case governance.ActionApply:
				_, err = Apply(o, "bob", now)
			}
			if allowed && err != nil {
				t.Errorf("%s from %s failed: %v", action, status, err)
			}
			if !allowed {
				var tErr *governance.InvalidTransitionError
				if !errors.As(err, &tErr) {
					t.Errorf("%s from %s: error = %v, want *InvalidTransitionError", action, status, err)
				}
			}
		}
	}
}

func TestReject_RequiresReason(t *testing.T) {
	o := governance.Override{StatusKey: governance.OverridePending, RequestedBy: "alice"}

	_, err := Reject(o, "bob", "  ", now)
	var vErr *governance.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Reject() error = %v, want *ValidationError", err)
	}

	out, err := Reject(o, "bob", "duplicate of ovr-9", now)
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	if out.StatusKey != governance.OverrideRejected || out.RejectionReason != "duplicate of ovr-9" {
		t.Errorf("got %+v", out)
	}
}

func TestApprove_SelfApprovalRejected(t *testing.T) {
	o := governance.Override{StatusKey: governance.OverridePending, RequestedBy: "alice"}
	if _, err := Approve(o, "alice", now); err == nil {
		t.Fatal("Approve() by requester succeeded, want error")
	}
	if _, err := Approve(o, "", now); err == nil {
		t.Fatal("Approve() without approver succeeded, want error")
	}
}

func TestTransition_DoesNotMutateInput(t *testing.T) {
	o := mustCreate(t)
	o.History = make([]governance.OverrideEvent, 0, 4)

	submitted, err := Submit(o, "alice", now)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if o.StatusKey != governance.OverrideDraft {
		t.Error("Submit() changed the input status")
	}
	if len(o.History) != 0 {
		t.Error("Submit() appended to the input history")
	}
	if len(submitted.History) != 1 {
		t.Errorf("len(History) = %d, want 1", len(submitted.History))
	}
}

func TestCalculateAdjustedValue(t *testing.T) {
	tests := []struct {
		name string
		o    governance.Override
		want float64
	}{
		{"adjustment", governance.Override{OverrideTypeKey: governance.OverrideAdjustment, Value: governance.OverrideValue{AdjustmentAmount: amount(-25)}}, 75},
		{"reclass numeric", governance.Override{OverrideTypeKey: governance.OverrideReclass, Value: governance.OverrideValue{NewValue: 42.0}}, 42},
		{"reclass int", governance.Override{OverrideTypeKey: governance.OverrideReclass, Value: governance.OverrideValue{NewValue: 7}}, 7},
		{"mapping fix json number", governance.Override{OverrideTypeKey: governance.OverrideMappingFix, Value: governance.OverrideValue{NewValue: json.Number("12.5")}}, 12.5},
		{"mapping fix string", governance.Override{OverrideTypeKey: governance.OverrideMappingFix, Value: governance.OverrideValue{NewValue: "EQ-US"}}, 100},
		{"numeric string is not numeric", governance.Override{OverrideTypeKey: governance.OverrideReclass, Value: governance.OverrideValue{NewValue: "55"}}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateAdjustedValue(100, tt.o); got != tt.want {
				t.Errorf("CalculateAdjustedValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilters(t *testing.T) {
	overrides := []governance.Override{
		{TargetID: "k1", StatusKey: governance.OverridePending},
		{TargetID: "k1", StatusKey: governance.OverrideApplied},
		{TargetID: "k2", StatusKey: governance.OverridePending},
		{TargetID: "k1", StatusKey: governance.OverrideApplied},
	}
	if n := len(FilterPending(overrides, "k1")); n != 1 {
		t.Errorf("FilterPending(k1) = %d, want 1", n)
	}
	if n := len(FilterApplied(overrides, "k1")); n != 2 {
		t.Errorf("FilterApplied(k1) = %d, want 2", n)
	}
	if n := len(FilterApplied(overrides, "k2")); n != 0 {
		t.Errorf("FilterApplied(k2) = %d, want 0", n)
	}
}

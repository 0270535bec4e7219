package override

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"wealthos/governance/pkg/governance"
)

// MinReasonLength is the shortest accepted justification.
const MinReasonLength = 10

var validate = validator.New()

// Request is an operator's request to create an override.
type Request struct {
	TargetType  governance.OverrideTarget `json:"target_type" validate:"required,oneof=kpi object recon"`
	TargetID    string                    `json:"target_id" validate:"required"`
	Type        governance.OverrideType   `json:"override_type" validate:"required,oneof=adjustment reclass mapping_fix"`
	Value       governance.OverrideValue  `json:"value"`
	Reason      string                    `json:"reason" validate:"min=10"`
	RequestedBy string                    `json:"requested_by" validate:"required"`
}

var fieldMessages = map[string]string{
	"TargetType":  "target type must be one of kpi, object, recon",
	"TargetID":    "target id is required",
	"Type":        "override type must be one of adjustment, reclass, mapping_fix",
	"Reason":      "reason must be at least 10 characters",
	"RequestedBy": "requester id is required",
}

// Validate checks a request before creation and returns a
// *governance.ValidationError listing every problem found. Text fields are
// checked after trimming, the form Create stores.
func Validate(req Request) error {
	req = normalize(req)
	var issues []string

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			msg, ok := fieldMessages[fe.Field()]
			if !ok {
				msg = fe.Field() + " failed " + fe.Tag()
			}
			issues = append(issues, msg)
		}
	}

	switch req.Type {
	case governance.OverrideAdjustment:
		if req.Value.AdjustmentAmount == nil || *req.Value.AdjustmentAmount == 0 {
			issues = append(issues, "adjustment requires a non-zero adjustment amount")
		}
	case governance.OverrideReclass:
		if isEmptyValue(req.Value.NewValue) {
			issues = append(issues, "reclass requires a new value")
		}
	}

	if len(issues) > 0 {
		return governance.NewValidationError("override", issues...)
	}
	return nil
}

// Create validates req and returns a draft override. The store assigns the
// identity.
func Create(req Request) (governance.Override, error) {
	req = normalize(req)
	if err := Validate(req); err != nil {
		return governance.Override{}, err
	}
	return governance.Override{
		TargetType:      req.TargetType,
		TargetID:        req.TargetID,
		OverrideTypeKey: req.Type,
		Value:           req.Value,
		Reason:          req.Reason,
		StatusKey:       governance.OverrideDraft,
		RequestedBy:     req.RequestedBy,
	}, nil
}

func normalize(req Request) Request {
	req.TargetID = strings.TrimSpace(req.TargetID)
	req.Reason = strings.TrimSpace(req.Reason)
	req.RequestedBy = strings.TrimSpace(req.RequestedBy)
	return req
}

// Submit moves a draft to pending.
func Submit(o governance.Override, actor string, now time.Time) (governance.Override, error) {
	return transition(o, governance.ActionSubmit, actor, now)
}

// Approve moves a pending override to approved. The approver must differ
// from the requester.
func Approve(o governance.Override, approver string, now time.Time) (governance.Override, error) {
	if _, err := Next(o.StatusKey, governance.ActionApprove); err != nil {
		return o, err
	}
	if err := checkApprover(o, approver); err != nil {
		return o, err
	}
	out, err := transition(o, governance.ActionApprove, approver, now)
	if err != nil {
		return o, err
	}
	out.ApprovedBy = approver
	return out, nil
}

// Reject moves a pending override to rejected. A rejection reason is
// required and the approver must differ from the requester.
func Reject(o governance.Override, approver, reason string, now time.Time) (governance.Override, error) {
	if _, err := Next(o.StatusKey, governance.ActionReject); err != nil {
		return o, err
	}
	if strings.TrimSpace(reason) == "" {
		return o, governance.NewValidationError("override", "rejection reason is required")
	}
	if err := checkApprover(o, approver); err != nil {
		return o, err
	}
	out, err := transition(o, governance.ActionReject, approver, now)
	if err != nil {
		return o, err
	}
	out.ApprovedBy = approver
	out.RejectionReason = strings.TrimSpace(reason)
	return out, nil
}

// Apply moves an approved override to applied and stamps AppliedAt.
func Apply(o governance.Override, actor string, now time.Time) (governance.Override, error) {
	out, err := transition(o, governance.ActionApply, actor, now)
	if err != nil {
		return o, err
	}
	applied := now
	out.AppliedAt = &applied
	return out, nil
}

// transition returns a copy of o advanced by action. o is never modified.
func transition(o governance.Override, action governance.OverrideAction, actor string, now time.Time) (governance.Override, error) {
	to, err := Next(o.StatusKey, action)
	if err != nil {
		return o, err
	}
	out := o
	out.History = append(make([]governance.OverrideEvent, 0, len(o.History)+1), o.History...)
	out.History = append(out.History, governance.OverrideEvent{
		Action: action,
		Actor:  actor,
		From:   o.StatusKey,
		To:     to,
		At:     now,
	})
	out.StatusKey = to
	return out, nil
}

func checkApprover(o governance.Override, approver string) error {
	if strings.TrimSpace(approver) == "" {
		return governance.NewValidationError("override", "approver id is required")
	}
	if approver == o.RequestedBy {
		return governance.NewValidationError("override", "approver must differ from requester")
	}
	return nil
}

// CalculateAdjustedValue applies o to original. Adjustments add the amount;
// reclass and mapping fixes replace the value when NewValue is numeric and
// otherwise leave it unchanged.
func CalculateAdjustedValue(original float64, o governance.Override) float64 {
	switch o.OverrideTypeKey {
	case governance.OverrideAdjustment:
		if o.Value.AdjustmentAmount == nil {
			return original
		}
		return original + *o.Value.AdjustmentAmount
	case governance.OverrideReclass, governance.OverrideMappingFix:
		if v, ok := numeric(o.Value.NewValue); ok {
			return v
		}
	}
	return original
}

// FilterPending returns the pending overrides for targetID.
func FilterPending(overrides []governance.Override, targetID string) []governance.Override {
	return filter(overrides, targetID, governance.OverridePending)
}

// FilterApplied returns the applied overrides for targetID.
func FilterApplied(overrides []governance.Override, targetID string) []governance.Override {
	return filter(overrides, targetID, governance.OverrideApplied)
}

func filter(overrides []governance.Override, targetID string, status governance.OverrideStatus) []governance.Override {
	var out []governance.Override
	for _, o := range overrides {
		if o.TargetID == targetID && o.StatusKey == status {
			out = append(out, o)
		}
	}
	return out
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// Package override implements the approval workflow for manual corrections.
//
// # State Machine
//
//	draft --submit--> pending --approve--> approved --apply--> applied
//	                         \--reject---> rejected
//
// applied and rejected are terminal. The workflow is a single transition
// table keyed by (state, action); every operation consults it before any
// other guard runs, so an illegal action always fails with
// *governance.InvalidTransitionError. Guard failures (missing rejection
// reason, self-approval) fail with *governance.ValidationError.
//
// Operations take and return overrides by value and never modify their
// argument. Each successful transition appends an audit event to History.
//
// # Basic Usage
//
//	o, err := override.Create(req)
//	o, err = override.Submit(o, req.RequestedBy, time.Now())
//	o, err = override.Approve(o, approverID, time.Now())
//	o, err = override.Apply(o, approverID, time.Now())
//	adjusted := override.CalculateAdjustedValue(kpi.LastValue.Value, o)
package override

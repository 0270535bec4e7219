package override

import "wealthos/governance/pkg/governance"

// transitions is the complete override workflow, keyed by (state, action).
// A pair that is absent is an illegal transition.
var transitions = map[governance.OverrideStatus]map[governance.OverrideAction]governance.OverrideStatus{
	governance.OverrideDraft: {
		governance.ActionSubmit: governance.OverridePending,
	},
	governance.OverridePending: {
		governance.ActionApprove: governance.OverrideApproved,
		governance.ActionReject:  governance.OverrideRejected,
	},
	governance.OverrideApproved: {
		governance.ActionApply: governance.OverrideApplied,
	},
}

// actionOrder fixes the order AvailableTransitions reports actions in.
var actionOrder = []governance.OverrideAction{
	governance.ActionSubmit,
	governance.ActionApprove,
	governance.ActionReject,
	governance.ActionApply,
}

// Next returns the state reached by applying action in from, or an
// *governance.InvalidTransitionError.
func Next(from governance.OverrideStatus, action governance.OverrideAction) (governance.OverrideStatus, error) {
	to, ok := transitions[from][action]
	if !ok {
		return "", governance.NewInvalidTransitionError(from, action)
	}
	return to, nil
}

// AvailableTransitions returns the legal actions from status. Terminal and
// unknown states return an empty slice.
func AvailableTransitions(status governance.OverrideStatus) []governance.OverrideAction {
	out := []governance.OverrideAction{}
	for _, action := range actionOrder {
		if _, ok := transitions[status][action]; ok {
			out = append(out, action)
		}
	}
	return out
}

// CanTransition reports whether action is legal from status.
func CanTransition(status governance.OverrideStatus, action governance.OverrideAction) bool {
	_, ok := transitions[status][action]
	return ok
}

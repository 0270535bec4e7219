package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/rules"
)

// errorBody is the JSON error envelope of every API route.
type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ruleResults is the response of /api/v1/rules/results.
type ruleResults struct {
	EvaluatedAt  *string        `json:"evaluated_at"`
	Triggered    int            `json:"triggered"`
	Emitted      int            `json:"emitted"`
	Deduplicated int            `json:"deduplicated"`
	Results      []rules.Result `json:"results"`
}

// handleWhy serves the explanation of one metric. The locale comes from
// ?locale= and falls back to Accept-Language.
func (s *Server) handleWhy(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tag := r.URL.Query().Get("locale")
	if tag == "" {
		tag = r.Header.Get("Accept-Language")
	}
	var locale governance.Locale
	if tag != "" {
		locale = governance.ParseLocale(tag)
	}

	why, err := s.deps.Governance.Why(r.Context(), id, locale)
	if err != nil {
		writeGovernanceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, why)
}

// handleRuleResults serves the most recent rule evaluation. Before the
// first evaluation it returns an empty result set.
func (s *Server) handleRuleResults(w http.ResponseWriter, r *http.Request) {
	resp := ruleResults{Results: []rules.Result{}}

	if eval := s.deps.Governance.LastEvaluation(); eval != nil {
		at := eval.EvaluatedAt.UTC().Format(time.RFC3339)
		resp.EvaluatedAt = &at
		resp.Triggered = eval.Triggered
		resp.Emitted = eval.Emitted
		resp.Deduplicated = eval.Deduplicated
		if eval.Results != nil {
			resp.Results = eval.Results
		}
	}

	if r.URL.Query().Get("triggered") == "true" {
		filtered := []rules.Result{}
		for _, res := range resp.Results {
			if res.Triggered {
				filtered = append(filtered, res)
			}
		}
		resp.Results = filtered
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRules lists the loaded rule definitions.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	list := s.deps.Rules.Rules()
	if list == nil {
		list = []governance.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(list),
		"rules": list,
	})
}

// writeGovernanceError maps the governance error taxonomy onto HTTP
// statuses.
func writeGovernanceError(w http.ResponseWriter, err error) {
	var verr *governance.ValidationError
	switch {
	case errors.Is(err, governance.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to build explanation")
	}
}

func writeError(w http.ResponseWriter, code int, typ, message string) {
	var body errorBody
	body.Error.Type = typ
	body.Error.Message = message
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

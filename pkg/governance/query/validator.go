package query

import (
	"fmt"

	"wealthos/governance/pkg/governance"
)

const (
	// DefaultLimit is the default number of snapshots to return if not specified.
	DefaultLimit = 100

	// MaxLimit is the maximum number of snapshots a single query may return.
	MaxLimit = 10000
)

// ValidSortFields contains the fields that can be used for sorting.
var ValidSortFields = map[string]bool{
	"computed_at": true,
	"as_of":       true,
	"created_at":  true,
}

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

var validScopes = map[governance.QualityScope]bool{
	governance.ScopeKpi:        true,
	governance.ScopeCollection: true,
	governance.ScopeEntity:     true,
	governance.ScopePortfolio:  true,
}

var validReconTypes = map[governance.ReconType]bool{
	governance.ReconIborAbor:           true,
	governance.ReconCashBank:           true,
	governance.ReconPositionsCustodian: true,
	governance.ReconGLSubledger:        true,
}

var validStatuses = map[governance.ReconStatus]bool{
	governance.ReconOK:      true,
	governance.ReconBreak:   true,
	governance.ReconPending: true,
}

// Validate validates a query and returns a *governance.QueryError if any
// parameter is invalid.
func Validate(q *governance.SnapshotQuery) error {
	if q.Limit < 0 {
		return governance.NewQueryError("limit", fmt.Errorf("must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return governance.NewQueryError("limit", fmt.Errorf("must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return governance.NewQueryError("offset", fmt.Errorf("must be >= 0, got %d", q.Offset))
	}

	if q.SortBy != "" && !ValidSortFields[q.SortBy] {
		return governance.NewQueryError("sort_by", fmt.Errorf("invalid sort field: %s", q.SortBy))
	}
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return governance.NewQueryError("sort_order", fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return governance.NewQueryError("start_time", fmt.Errorf("start_time must be before end_time"))
	}

	if q.ScopeKey != "" && !validScopes[q.ScopeKey] {
		return governance.NewQueryError("scope_key", fmt.Errorf("invalid scope: %s", q.ScopeKey))
	}
	if q.DomainKey != "" && !q.DomainKey.Valid() {
		return governance.NewQueryError("domain_key", fmt.Errorf("invalid domain: %s", q.DomainKey))
	}
	if q.MaxScore != nil && (*q.MaxScore < 0 || *q.MaxScore > 100) {
		return governance.NewQueryError("max_score", fmt.Errorf("must be between 0 and 100, got %d", *q.MaxScore))
	}
	if q.ReconType != "" && !validReconTypes[q.ReconType] {
		return governance.NewQueryError("recon_type", fmt.Errorf("invalid reconciliation type: %s", q.ReconType))
	}
	if q.Status != "" && !validStatuses[q.Status] {
		return governance.NewQueryError("status", fmt.Errorf("invalid status: %s", q.Status))
	}

	return nil
}

// ApplyDefaults applies default values to query parameters that are not set.
func ApplyDefaults(q *governance.SnapshotQuery) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "computed_at"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}

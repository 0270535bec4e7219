package governance

import "time"

// Envelope carries the identity and timestamps shared by every governance
// record. The persistence layer owns all three fields; the engines never set
// them.
type Envelope struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Domain is the business domain a metric belongs to.
type Domain string

const (
	DomainNetWorth    Domain = "netWorth"
	DomainPerformance Domain = "performance"
	DomainLiquidity   Domain = "liquidity"
	DomainGL          Domain = "gl"
	DomainTax         Domain = "tax"
	DomainRisk        Domain = "risk"
	DomainCompliance  Domain = "compliance"
)

// Domains lists every known domain in display order.
var Domains = []Domain{
	DomainNetWorth, DomainPerformance, DomainLiquidity, DomainGL,
	DomainTax, DomainRisk, DomainCompliance,
}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// TrustBadge is the coarse trust label attached to a metric.
type TrustBadge string

const (
	TrustVerified  TrustBadge = "verified"
	TrustEstimated TrustBadge = "estimated"
	TrustStale     TrustBadge = "stale"
)

// KpiStatus is the lifecycle state of a metric definition.
type KpiStatus string

const (
	KpiActive   KpiStatus = "active"
	KpiDraft    KpiStatus = "draft"
	KpiArchived KpiStatus = "archived"
)

// MetricValue is the last computed value of a metric.
type MetricValue struct {
	Value      float64    `json:"value"`
	Currency   string     `json:"currency,omitempty"`
	Unit       string     `json:"unit,omitempty"`
	ComputedAt *time.Time `json:"computed_at,omitempty"`
}

// Kpi is a derived metric definition (collection dataKpis).
type Kpi struct {
	Envelope
	Name               string       `json:"name"`
	Domain             Domain       `json:"domain"`
	Description        string       `json:"description"`
	FormulaText        string       `json:"formula_text"`
	AssumptionsText    string       `json:"assumptions_text,omitempty"`
	LastValue          *MetricValue `json:"last_value,omitempty"`
	AsOf               time.Time    `json:"as_of"`
	TrustBadge         TrustBadge   `json:"trust_badge"`
	LineageID          string       `json:"lineage_id,omitempty"`
	LastQualityScoreID string       `json:"last_quality_score_id,omitempty"`
	Status             KpiStatus    `json:"status"`
}

// RiskLevel grades how error-prone a transform step is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// LineageInput names a source collection and the fields read from it.
type LineageInput struct {
	Collection string   `json:"collection"`
	Fields     []string `json:"fields"`
	Notes      string   `json:"notes,omitempty"`
}

// LineageTransform is one processing step. StepNo is 1-based.
type LineageTransform struct {
	StepNo      int       `json:"step_no"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Formula     string    `json:"formula,omitempty"`
	RiskLevel   RiskLevel `json:"risk_level,omitempty"`
}

// LineageOutput is a field produced by the lineage.
type LineageOutput struct {
	Field       string `json:"field"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Lineage is the provenance graph of one metric (collection dataLineage).
type Lineage struct {
	Envelope
	KpiID      string             `json:"kpi_id"`
	Inputs     []LineageInput     `json:"inputs"`
	Transforms []LineageTransform `json:"transforms"`
	Outputs    []LineageOutput    `json:"outputs"`
}

// QualityScope selects what a quality score was computed over.
type QualityScope string

const (
	ScopeKpi        QualityScope = "kpi"
	ScopeCollection QualityScope = "collection"
	ScopeEntity     QualityScope = "entity"
	ScopePortfolio  QualityScope = "portfolio"
)

// QualityLevel is the banded classification of a total quality score.
type QualityLevel string

const (
	QualityHigh   QualityLevel = "high"
	QualityMedium QualityLevel = "medium"
	QualityLow    QualityLevel = "low"
)

// QualityDetails explains where a quality score lost points.
type QualityDetails struct {
	MissingFields      []string `json:"missing_fields,omitempty"`
	StaleRecordsCount  int      `json:"stale_records_count"`
	ConflictingSources []string `json:"conflicting_sources,omitempty"`
	CoverageGaps       []string `json:"coverage_gaps,omitempty"`
}

// QualityScore is an immutable quality snapshot (collection dataQualityScores).
type QualityScore struct {
	Envelope
	ScopeKey          QualityScope    `json:"scope_key"`
	ScopeID           string          `json:"scope_id,omitempty"`
	DomainKey         Domain          `json:"domain_key,omitempty"`
	ObjectTypeKey     string          `json:"object_type_key,omitempty"`
	CompletenessScore int             `json:"completeness_score"`
	FreshnessScore    int             `json:"freshness_score"`
	ConsistencyScore  int             `json:"consistency_score"`
	CoverageScore     int             `json:"coverage_score"`
	ScoreTotal        int             `json:"score_total"`
	AsOf              time.Time       `json:"as_of"`
	ComputedAt        time.Time       `json:"computed_at"`
	Details           *QualityDetails `json:"details,omitempty"`
}

// ReconType identifies which pair of books a reconciliation compares.
type ReconType string

const (
	ReconIborAbor           ReconType = "ibor_abor"
	ReconCashBank           ReconType = "cash_bank"
	ReconPositionsCustodian ReconType = "positions_custodian"
	ReconGLSubledger        ReconType = "gl_subledger"
)

// ReconStatus is the derived agreement status of a reconciliation.
type ReconStatus string

const (
	ReconOK      ReconStatus = "ok"
	ReconBreak   ReconStatus = "break"
	ReconPending ReconStatus = "pending"
)

// ReconScope narrows a reconciliation to an entity, portfolio, account or currency.
type ReconScope struct {
	EntityID    string `json:"entity_id,omitempty"`
	PortfolioID string `json:"portfolio_id,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// Key returns a stable string form of the scope used for snapshot lookups.
func (s ReconScope) Key() string {
	return s.EntityID + "|" + s.PortfolioID + "|" + s.AccountID + "|" + s.Currency
}

// ReconSource is one side of a reconciliation.
type ReconSource struct {
	Name        string    `json:"name"`
	System      string    `json:"system"`
	Value       float64   `json:"value"`
	Currency    string    `json:"currency,omitempty"`
	AsOf        time.Time `json:"as_of"`
	RecordCount *int      `json:"record_count,omitempty"`
}

// ReconDelta is the signed difference between left and right.
type ReconDelta struct {
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
	Currency string  `json:"currency,omitempty"`
}

// BreakdownItem is a per-category comparison inside a reconciliation.
type BreakdownItem struct {
	Category   string      `json:"category"`
	LeftValue  float64     `json:"left_value"`
	RightValue float64     `json:"right_value"`
	Delta      float64     `json:"delta"`
	Status     ReconStatus `json:"status"`
}

// Reconciliation is an immutable reconciliation snapshot
// (collection dataReconciliations).
type Reconciliation struct {
	Envelope
	ReconTypeKey ReconType       `json:"recon_type_key"`
	Scope        ReconScope      `json:"scope"`
	AsOf         time.Time       `json:"as_of"`
	Left         ReconSource     `json:"left"`
	Right        ReconSource     `json:"right"`
	DeltaValue   ReconDelta      `json:"delta_value"`
	StatusKey    ReconStatus     `json:"status_key"`
	Breakdown    []BreakdownItem `json:"breakdown,omitempty"`
	ComputedAt   time.Time       `json:"computed_at"`
	ExceptionID  string          `json:"exception_id,omitempty"`
}

// OverrideTarget is the kind of record an override corrects.
type OverrideTarget string

const (
	TargetKpi    OverrideTarget = "kpi"
	TargetObject OverrideTarget = "object"
	TargetRecon  OverrideTarget = "recon"
)

// OverrideType is the kind of correction an override carries.
type OverrideType string

const (
	OverrideAdjustment OverrideType = "adjustment"
	OverrideReclass    OverrideType = "reclass"
	OverrideMappingFix OverrideType = "mapping_fix"
)

// OverrideStatus is a state of the override workflow.
type OverrideStatus string

const (
	OverrideDraft    OverrideStatus = "draft"
	OverridePending  OverrideStatus = "pending"
	OverrideApproved OverrideStatus = "approved"
	OverrideRejected OverrideStatus = "rejected"
	OverrideApplied  OverrideStatus = "applied"
)

// Terminal reports whether no further transitions leave s.
func (s OverrideStatus) Terminal() bool {
	return s == OverrideApplied || s == OverrideRejected
}

// OverrideAction is an operation that moves an override between states.
type OverrideAction string

const (
	ActionSubmit  OverrideAction = "submit"
	ActionApprove OverrideAction = "approve"
	ActionReject  OverrideAction = "reject"
	ActionApply   OverrideAction = "apply"
)

// OverrideValue is the correction payload. OldValue and NewValue hold either
// a number or a string (for mapping fixes).
type OverrideValue struct {
	OldValue         any      `json:"old_value,omitempty"`
	NewValue         any      `json:"new_value,omitempty"`
	AdjustmentAmount *float64 `json:"adjustment_amount,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	FieldName        string   `json:"field_name,omitempty"`
}

// OverrideEvent is one audited transition of an override.
type OverrideEvent struct {
	Action OverrideAction `json:"action"`
	Actor  string         `json:"actor"`
	From   OverrideStatus `json:"from"`
	To     OverrideStatus `json:"to"`
	At     time.Time      `json:"at"`
}

// Override is a manual correction driven through the approval workflow
// (collection dataOverrides).
type Override struct {
	Envelope
	TargetType      OverrideTarget  `json:"target_type"`
	TargetID        string          `json:"target_id"`
	OverrideTypeKey OverrideType    `json:"override_type_key"`
	Value           OverrideValue   `json:"value"`
	Reason          string          `json:"reason"`
	StatusKey       OverrideStatus  `json:"status_key"`
	RequestedBy     string          `json:"requested_by"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	AppliedAt       *time.Time      `json:"applied_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	History         []OverrideEvent `json:"history,omitempty"`
}

// RuleType selects the evaluation strategy of a rule.
type RuleType string

const (
	RuleQualityThreshold RuleType = "quality_threshold"
	RuleStaleThreshold   RuleType = "stale_threshold"
	RuleReconThreshold   RuleType = "recon_threshold"
	RuleEmitException    RuleType = "emit_exception"
)

// Severity grades a rule violation for the exception queue.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RuleScope selects what a rule applies to. Only the first populated
// selector takes effect: AllKpis, then Domains.
type RuleScope struct {
	Domains     []Domain `json:"domains,omitempty" yaml:"domains,omitempty"`
	Collections []string `json:"collections,omitempty" yaml:"collections,omitempty"`
	KpiIDs      []string `json:"kpi_ids,omitempty" yaml:"kpi_ids,omitempty"`
	AllKpis     bool     `json:"all_kpis,omitempty" yaml:"all_kpis,omitempty"`
}

// RuleConfig holds the tunables of a rule. Zero values fall back to the
// per-type defaults at evaluation time.
type RuleConfig struct {
	Threshold         float64  `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Days              int      `json:"days,omitempty" yaml:"days,omitempty"`
	DeltaPercent      float64  `json:"delta_percent,omitempty" yaml:"delta_percent,omitempty"`
	Severity          Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
	AutoEmitException bool     `json:"auto_emit_exception" yaml:"auto_emit_exception"`
	ExceptionCategory string   `json:"exception_category,omitempty" yaml:"exception_category,omitempty"`
}

// Rule is a configurable governance check (collection dataGovernanceRules).
type Rule struct {
	Envelope    `yaml:",inline"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	RuleTypeKey RuleType   `json:"rule_type_key" yaml:"rule_type"`
	AppliesTo   RuleScope  `json:"applies_to" yaml:"applies_to"`
	Config      RuleConfig `json:"config" yaml:"config"`
	Enabled     bool       `json:"enabled" yaml:"enabled"`
}

// Confidence is the derived confidence of a "why this number" explanation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Collection names used by the record store.
const (
	CollectionKpis            = "dataKpis"
	CollectionLineage         = "dataLineage"
	CollectionQualityScores   = "dataQualityScores"
	CollectionReconciliations = "dataReconciliations"
	CollectionOverrides       = "dataOverrides"
	CollectionRules           = "dataGovernanceRules"
)

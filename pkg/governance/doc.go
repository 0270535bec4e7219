// Package governance defines the records shared by the data governance
// engines: metrics (KPIs), lineage, quality scores, reconciliations,
// overrides and rules, plus the error taxonomy and display labels.
//
// # Architecture
//
// The engines live in subpackages and are pure functions over these types:
//
//	lineage   - provenance graph definition and validation
//	quality   - four-dimension quality scoring and trust badges
//	recon     - two-source value comparison with tolerance
//	override  - table-driven approval workflow
//	rules     - threshold rules over the outputs above
//	explain   - "why this number" composite view
//
// Persistence, exception signalling and scheduling are handled by the
// storage, signals and runner subpackages. None of the engines perform I/O.
//
// # Identity
//
// Every record embeds an Envelope. Its ID, CreatedAt and UpdatedAt fields are
// assigned by the store; engine output always carries them zeroed.
//
// # Errors
//
// Malformed input fails with *ValidationError. An override action attempted
// from the wrong state fails with *InvalidTransitionError. Degenerate input
// (no records, zero values) is never an error and resolves to neutral
// results instead.
//
// # Labels
//
// Enum values are rendered for display with their Label method:
//
//	badge := governance.TrustStale
//	fmt.Println(badge.Label(governance.ParseLocale("uk-UA"))) // Застаріло
package governance

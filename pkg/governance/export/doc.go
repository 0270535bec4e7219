// Package export writes quality scores, reconciliations and rule results as
// JSON or CSV, for the snapshots CLI and for retention archives.
package export

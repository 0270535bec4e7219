// Package explain builds the "why this number" view of a metric: its value,
// formula, lineage inputs and transforms, assumptions, latest quality score
// and a derived confidence grade.
package explain

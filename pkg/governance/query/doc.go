// Package query validates snapshot queries and fills in their defaults
// before they reach a storage backend.
//
// Sort fields are whitelisted because SQL backends interpolate them into
// ORDER BY clauses.
package query

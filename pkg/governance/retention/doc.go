// Package retention prunes old quality-score and reconciliation snapshots.
//
// Pruning runs in two phases, by age (RetentionDays) and then by count
// (MaxSnapshots per kind). Neither phase removes the latest snapshot of a
// scope, so every metric and reconciliation keeps a current value. Pruned
// snapshots can be archived as JSON first. A cron Scheduler runs Prune on
// PruneSchedule.
package retention

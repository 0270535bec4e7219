// Package storage provides the persistence backends of the governance
// engine.
//
// Two stores are kept apart because their records behave differently:
//
//   - A SnapshotStore is an append-only log of quality scores and
//     reconciliations. MemorySnapshotStore serves tests; SQLiteSnapshotStore
//     (mattn/go-sqlite3) is the durable log. The latest snapshot of a scope
//     is the one appended last.
//   - A Catalog holds mutable JSON documents such as metric definitions,
//     lineage, overrides and rules. MemoryCatalog serves tests; SQLiteCatalog
//     runs on the pure-Go modernc.org/sqlite driver with a WAL checkpoint
//     loop.
//
// Save, Load and LoadAll move typed records in and out of a Catalog:
//
//	kpi := &governance.Kpi{Name: "Net worth", Domain: governance.DomainNetWorth}
//	if err := storage.Save(ctx, catalog, governance.CollectionKpis, kpi); err != nil {
//		return err
//	}
//	loaded, err := storage.Load[governance.Kpi](ctx, catalog, governance.CollectionKpis, kpi.ID)
package storage

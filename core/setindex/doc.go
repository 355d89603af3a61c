// Package setindex is the secondary, mod-only search path.
//
// The index keeps stat_id -> set of item ids in memory. It is built lazily by
// scanning the primary store's item_mods table; concurrent first lookups share
// one scan through singleflight. Ingestion appends ids with Add after a page
// commits and calls Invalidate after deletions so the next lookup rebuilds.
//
// Lookup intersects the sets of the requested stat ids, smallest first, and
// stops as soon as the candidate set is at or below the configured threshold.
// The result is therefore a superset of the exact answer. Search hydrates
// those candidates from the primary store and applies the full filter in
// memory, which makes *Index a drop-in store.Searcher.
//
// The index is not transactionally consistent with the primary store. Items
// written without Add are invisible until the next rebuild; callers that need
// exactness use the primary store's structural search.
//
// Save and Restore persist the sets as a JSON snapshot in object storage so a
// restarted process can skip the initial scan.
package setindex

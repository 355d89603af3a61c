// Package store persists listed items for matching.
//
// The primary store is relational (GORM over MySQL, SQLite in tests) and
// owns four tables:
//
//	items          one row per listed item, filter columns plus a JSON payload
//	item_mods      (item_id, stat_id) pairs backing the "has all these mods" search
//	stash_items    item_id -> stash_key, used to clear a stash when it empties
//	ingest_cursor  single row holding the feed resume token
//
// # Writes
//
// BulkInsertItems writes items with batched multi-row upserts inside one
// transaction and records their stash membership. Membership is keyed by item
// id: an item that moves to another stash leaves its old stash. ClearStash
// removes every item recorded under a stash key. Both operations replace
// rather than append, so replaying a feed page is harmless.
//
// InTx hands a transaction-bound Writer to a unit of work; the ingestion
// pipeline uses it to commit a page together with its cursor.
//
// # Search
//
// Search filters on base type, category, subcategory, name and a set of stat
// ids the item must all carry. Results are ordered by item id, which is the
// order the matcher's first-fit rule depends on.
//
// Searcher is the capability interface shared with the in-memory set-index
// (package setindex); configuration picks which implementation serves reads.
package store

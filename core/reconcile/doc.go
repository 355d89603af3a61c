// Package reconcile checks a saved set-index snapshot against the primary
// store.
//
// The set-index carries no consistency guarantee once items are deleted, and
// a snapshot in the bucket ages with every applied page. Compare loads the
// primary mod table and the snapshot concurrently, builds the union of item
// ids, and reports every item whose stat set differs: items the snapshot
// misses, items only the snapshot still lists, and items whose stats
// changed.
//
// # Usage Example
//
//	report, err := reconcile.Compare(ctx,
//	    reconcile.PrimaryAdapter{Store: st},
//	    reconcile.SnapshotAdapter{Client: client, Bucket: bucket, Object: cfg.Index.SnapshotObject},
//	)
//	if err == nil && !report.Clean() {
//	    // rebuild and save a fresh snapshot
//	}
//
// Each side is an Adapter, so tests and other sources (a live Index, a
// second store) compare the same way.
package reconcile

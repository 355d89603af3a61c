// Package ingest turns the public stash feed into stored items.
//
// A feed is a chain of pages. Each page lists stash changes and names the
// cursor of the next page. The pipeline is either Idle, waiting for the next
// poll, or Applying one page.
//
// # Applying a page
//
// Stash changes are applied in delivery order inside one transaction that
// also stores the page's next cursor:
//
//   - changes outside the league allow-list are skipped
//   - changes without an owner or stash name are skipped, since they could
//     never be deleted later
//   - an empty item list clears everything recorded under the stash key
//   - otherwise the stash's items are rebuilt and replace its prior content;
//     items that fail classification or normalization are dropped one by one
//
// A failed transaction leaves the cursor where it was, so the next tick
// fetches and applies the same page again. Replays are harmless because every
// write replaces rather than appends.
//
// # Sources
//
// HTTPFeed polls the public stash API with ?id=<cursor>. ObjectFeed reads
// pages pushed to the bucket as <prefix>/<cursor>.json. Clients can also POST
// a page to /ingest/pages.
//
// # Routes
//
//	GET  /ingest/status  pipeline state, counters and stored cursor
//	POST /ingest/pages   apply a page from the request body
package ingest

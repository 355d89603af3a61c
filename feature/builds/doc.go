// Package builds queues loadouts for matching and processes them with
// concurrent workers.
//
// A build moves Queued -> Claimed -> Done. Workers in any number of
// processes share one queue table; ClaimNext selects the oldest queued row
// with SELECT ... FOR UPDATE SKIP LOCKED and leases it with a conditional
// update, so two workers never hold the same build. Complete stores the found
// slots and then releases the lease in a second statement. The Watchdog
// releases leases older than the configured timeout, which returns
// unfinished builds to Queued.
//
// Example:
//
//	q := builds.NewQueue(db)
//	w := builds.NewWorker(q, matching.NewEngine(st, log), cfg.Builds, log)
//	go builds.NewWatchdog(q, cfg.Builds, log).Run(ctx)
//	err := w.Run(ctx)
//
// # Routes
//
//	POST /builds      {"name": ..., "slots": {"ring1": {"item": RawItem, "constraints": {...}}}} -> 201
//	GET  /builds/:id  build with state and found slots
package builds

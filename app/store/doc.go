// Package store provides durable persistence for job queues. It keeps serialized job
// records grouped by queue name and keyed by task id in a single SQLite file, and restores
// them after a process restart so the scheduler can resume pending work.
//
// All operations against the file are serialized on a dedicated goroutine owned by the
// store. Writes are asynchronous and applied in submission order; reads go through the same
// goroutine, so a read observes every write submitted before it.
package store

// Package task tracks asynchronous hairstyle generation work.
//
// A Registry creates task records in a Store and hands out their status to
// pollers. A TaskRunner owns a bounded TaskQueue and a WorkerPool; it executes
// Jobs with a per-job timeout, records progress checkpoints and finishes each
// task as completed or failed. On start the runner recovers unfinished tasks
// from persistent stores, and a sweeper evicts finished tasks once they are
// older than the configured retention.
package task

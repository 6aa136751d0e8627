// Package jobs runs fire-and-forget side effects of committed changes, such
// as assignment notifications, on a bounded in-memory queue served by a fixed
// pool of workers.
//
// Submission never blocks: a full queue rejects the job with ErrQueueFull and
// the caller logs it. Jobs are not persisted; whatever is still queued when
// the runner stops is drained before Stop returns.
package jobs

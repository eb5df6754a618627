package jobs

import "github.com/vytor/neurobank/internal/worker"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	Submit(job worker.Job) error
}

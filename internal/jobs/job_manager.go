package jobs

import (
	"fmt"

	"go.uber.org/zap"
)

// Job is a scheduled task with an explicit lifecycle.
type Job interface {
	Start() error
	Stop()
}

// JobManager starts and stops a fixed set of jobs together.
type JobManager struct {
	jobs   []Job
	logger *zap.Logger
}

func NewJobManager(logger *zap.Logger, jobs ...Job) *JobManager {
	return &JobManager{
		jobs:   jobs,
		logger: logger,
	}
}

// StartAll starts jobs in order. If one fails, the ones already started are
// stopped again.
func (jm *JobManager) StartAll() error {
	for i, job := range jm.jobs {
		if err := job.Start(); err != nil {
			for _, started := range jm.jobs[:i] {
				started.Stop()
			}
			return fmt.Errorf("failed to start job %T: %w", job, err)
		}
	}
	jm.logger.Info("jobs started", zap.Int("count", len(jm.jobs)))
	return nil
}

// StopAll stops jobs in reverse start order.
func (jm *JobManager) StopAll() {
	for i := len(jm.jobs) - 1; i >= 0; i-- {
		jm.jobs[i].Stop()
	}
}

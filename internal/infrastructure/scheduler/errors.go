package scheduler

import "errors"

var (
	// ErrJobLocked is returned by RunNow when another instance holds the job's lock
	ErrJobLocked = errors.New("scheduler: job is running on another instance")

	// ErrJobNotFound is returned for an unregistered job name
	ErrJobNotFound = errors.New("scheduler: job not found")

	// ErrDuplicateJob is returned when a job name is registered twice
	ErrDuplicateJob = errors.New("scheduler: job already registered")
)

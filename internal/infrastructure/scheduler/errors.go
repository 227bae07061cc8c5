package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when a trigger is requested while
	// the scheduler is stopped
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
)

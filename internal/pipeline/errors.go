package pipeline

import (
	"errors"
	"fmt"
)

// ErrAlreadyRunning is returned when a trigger arrives while a run is in
// flight. The trigger is rejected, not queued.
var ErrAlreadyRunning = errors.New("agent is already running")

// NotReadyError reports a collaborator that was never initialized, usually
// because its credentials are missing from the environment.
type NotReadyError struct {
	Collaborator string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Collaborator)
}

package monitor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGroups is returned by Start when no group is configured.
	ErrNoGroups = errors.New("no groups configured")
	// ErrAlreadyRunning is returned by Start while a session is active.
	ErrAlreadyRunning = errors.New("monitor already running")
	// ErrGroupNotFound means the group never appeared in the chat list.
	ErrGroupNotFound = errors.New("group not found in chat list")
	// ErrSessionLost means the browser stopped answering.
	ErrSessionLost = errors.New("browser session lost")
)

// GroupError is a non-fatal failure to search or scrape one group.
// Screenshot is the path of the diagnostic capture, empty if none was saved.
type GroupError struct {
	Group      string
	Screenshot string
	Err        error
}

func (e *GroupError) Error() string {
	if e.Screenshot != "" {
		return fmt.Sprintf("group %q: %v (screenshot %s)", e.Group, e.Err, e.Screenshot)
	}
	return fmt.Sprintf("group %q: %v", e.Group, e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}

package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ebosoh/sales-agent/internal/bus"
)

// State represents a monitor runtime state.
type State string

const (
	Stopped   State = "STOPPED"
	Starting  State = "STARTING"
	Running   State = "RUNNING"
	Searching State = "SEARCHING"
	Scraping  State = "SCRAPING"
	Idle      State = "IDLE"
	Stopping  State = "STOPPING"
)

// validTransitions defines allowed state transitions. Any active state may
// drop straight to Stopped on a fatal error.
var validTransitions = map[State][]State{
	Stopped:   {Starting},
	Starting:  {Running, Stopping, Stopped},
	Running:   {Searching, Idle, Stopping, Stopped},
	Searching: {Scraping, Searching, Running, Idle, Stopping, Stopped},
	Scraping:  {Searching, Running, Idle, Stopping, Stopped},
	Idle:      {Running, Searching, Stopping, Stopped},
	Stopping:  {Stopped},
}

// Active reports whether the state belongs to a live monitoring session.
func (s State) Active() bool {
	return s != Stopped
}

// Snapshot is the observable status of the machine.
type Snapshot struct {
	State State
	// Group is the group being searched or scraped, if any.
	Group string
	Since time.Time
}

// Machine tracks and enforces monitor state transitions.
type Machine struct {
	mu      sync.RWMutex
	current Snapshot
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Stopped state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Snapshot{State: Stopped, Since: time.Now()},
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.State
}

// Snapshot returns the current state with its group and entry time.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	return m.TransitionGroup(to, "")
}

// TransitionGroup moves to a new state associated with group.
func (m *Machine) TransitionGroup(to State, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := validTransitions[m.current.State]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current.State, to)
	}
	from := m.current.State
	m.current = Snapshot{State: to, Group: group, Since: time.Now()}
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.MonitorState,
			Timestamp: m.current.Since,
			Payload: StatusChange{
				From:  from,
				To:    to,
				Group: group,
			},
		})
	}
	return nil
}

// StatusChange is the payload for state change events.
type StatusChange struct {
	From  State
	To    State
	Group string
}

func (c StatusChange) String() string {
	if c.Group != "" {
		return fmt.Sprintf("%s -> %s (%s)", c.From, c.To, c.Group)
	}
	return fmt.Sprintf("%s -> %s", c.From, c.To)
}

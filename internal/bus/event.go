package bus

import "time"

// Event kinds. Subscribers filter by prefix, so "monitor." receives every
// monitor event.
const (
	MonitorState       = "monitor.state"
	MonitorStatus      = "monitor.status"
	MonitorGroupFailed = "monitor.group_failed"
	MonitorFailed      = "monitor.failed"
	MonitorLogin       = "monitor.login"
	MessageStored      = "message.stored"
	FraudDetected      = "fraud.detected"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Text returns a one-line rendering of the payload for status displays.
func (e Event) Text() string {
	switch p := e.Payload.(type) {
	case string:
		return p
	case interface{ String() string }:
		return p.String()
	case error:
		return p.Error()
	}
	return e.Kind
}

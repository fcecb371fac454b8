package model

import (
	"context"
	"sync"

	"google.golang.org/grpc"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
)

// MaxEvents bounds the status log kept in memory.
const MaxEvents = 200

// Agent is the part of the daemon client the dashboard uses.
type Agent interface {
	MonitorStatus(ctx context.Context, in *agentv1.Empty, opts ...grpc.CallOption) (*agentv1.MonitorStatusResponse, error)
	Replies(ctx context.Context, in *agentv1.RepliesRequest, opts ...grpc.CallOption) (*agentv1.RepliesResponse, error)
	Popular(ctx context.Context, in *agentv1.PopularRequest, opts ...grpc.CallOption) (*agentv1.PopularResponse, error)
	Matches(ctx context.Context, in *agentv1.Empty, opts ...grpc.CallOption) (*agentv1.MatchesResponse, error)
}

// ViewModel caches what the daemon returned for each view.
type ViewModel struct {
	mu sync.RWMutex

	agent   Agent
	status  *agentv1.MonitorStatusResponse
	replies []agentv1.Reply
	popular []agentv1.Product
	matches []agentv1.Match
	events  []*agentv1.StatusEvent
	Flash   Flash
}

// NewViewModel creates a view model on top of the daemon client.
func NewViewModel(agent Agent) *ViewModel {
	return &ViewModel{agent: agent}
}

// LoadStatus fetches the monitor status.
func (vm *ViewModel) LoadStatus(ctx context.Context) error {
	resp, err := vm.agent.MonitorStatus(ctx, &agentv1.Empty{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.status = resp
	vm.mu.Unlock()
	return nil
}

// LoadReplies fetches replies to the user's messages.
func (vm *ViewModel) LoadReplies(ctx context.Context) error {
	resp, err := vm.agent.Replies(ctx, &agentv1.RepliesRequest{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.replies = resp.Rows
	vm.mu.Unlock()
	return nil
}

// LoadPopular fetches the most recent products.
func (vm *ViewModel) LoadPopular(ctx context.Context) error {
	resp, err := vm.agent.Popular(ctx, &agentv1.PopularRequest{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.popular = resp.Rows
	vm.mu.Unlock()
	return nil
}

// LoadMatches runs matching against the catalog. It is slow and only
// runs on request.
func (vm *ViewModel) LoadMatches(ctx context.Context) error {
	resp, err := vm.agent.Matches(ctx, &agentv1.Empty{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.matches = resp.Rows
	vm.mu.Unlock()
	return nil
}

// AddEvent appends a status event, dropping the oldest past MaxEvents.
func (vm *ViewModel) AddEvent(evt *agentv1.StatusEvent) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.events = append(vm.events, evt)
	if over := len(vm.events) - MaxEvents; over > 0 {
		vm.events = append([]*agentv1.StatusEvent(nil), vm.events[over:]...)
	}
}

// Status returns the last fetched monitor status, or nil.
func (vm *ViewModel) Status() *agentv1.MonitorStatusResponse {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}

// Replies returns a snapshot of the replies view.
func (vm *ViewModel) Replies() []agentv1.Reply {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.replies
}

// Popular returns a snapshot of the popular view.
func (vm *ViewModel) Popular() []agentv1.Product {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.popular
}

// Matches returns a snapshot of the matches view.
func (vm *ViewModel) Matches() []agentv1.Match {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.matches
}

// Events returns a snapshot of the status log, oldest first.
func (vm *ViewModel) Events() []*agentv1.StatusEvent {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return append([]*agentv1.StatusEvent(nil), vm.events...)
}

package api

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	agentv1 "github.com/ebosoh/sales-agent/internal/api/agentv1"
	"github.com/ebosoh/sales-agent/internal/bus"
	"github.com/ebosoh/sales-agent/internal/status"
)

// defaultWatchPrefixes are streamed when a watcher names none.
var defaultWatchPrefixes = []string{"monitor.", "message.", "fraud."}

func (a *Agent) StartMonitor(ctx context.Context, _ *agentv1.Empty) (*agentv1.MonitorStatusResponse, error) {
	if a.monitor == nil {
		return nil, grpcstatus.Errorf(codes.Unavailable, "monitor not configured")
	}
	if err := a.monitor.Start(ctx); err != nil {
		return nil, toStatus("start monitor", err)
	}
	a.logger.Info("monitor started")
	return a.MonitorStatus(ctx, nil)
}

func (a *Agent) StopMonitor(ctx context.Context, _ *agentv1.Empty) (*agentv1.MonitorStatusResponse, error) {
	if a.monitor == nil {
		return nil, grpcstatus.Errorf(codes.Unavailable, "monitor not configured")
	}
	a.monitor.Stop()
	a.logger.Info("monitor stop requested")
	return a.MonitorStatus(ctx, nil)
}

func (a *Agent) MonitorStatus(_ context.Context, _ *agentv1.Empty) (*agentv1.MonitorStatusResponse, error) {
	resp := &agentv1.MonitorStatusResponse{State: string(status.Stopped)}
	if a.monitor != nil {
		resp = snapshotToWire(a.monitor.Status())
		if err := a.monitor.Err(); err != nil {
			resp.LastError = err.Error()
		}
	}
	count, err := a.db.MessageCount()
	if err != nil {
		return nil, toStatus("count messages", err)
	}
	resp.Messages = count
	return resp, nil
}

// WatchStatus streams bus events until the client goes away.
func (a *Agent) WatchStatus(req *agentv1.WatchStatusRequest, stream agentv1.StatusStream) error {
	prefixes := req.Prefixes
	if len(prefixes) == 0 {
		prefixes = defaultWatchPrefixes
	}
	sub := a.bus.Subscribe(256, prefixes...)
	defer func() {
		if n := sub.Dropped(); n > 0 {
			a.logger.Warn("status stream fell behind", zap.Int64("dropped", n))
		}
		sub.Close()
	}()

	for {
		select {
		case evt := <-sub.C:
			if err := stream.Send(a.eventToWire(evt)); err != nil {
				a.logger.Debug("status stream closed", zap.Error(err))
				return err
			}
		case <-stream.Context().Done():
			return nil
		}
	}
}

func (a *Agent) eventToWire(evt bus.Event) *agentv1.StatusEvent {
	out := &agentv1.StatusEvent{
		EventID:          uuid.New().String(),
		Profile:          a.profile,
		OccurredAtUnixMs: evt.Timestamp.UnixMilli(),
		Kind:             evt.Kind,
		Text:             evt.Text(),
	}
	if change, ok := evt.Payload.(status.StatusChange); ok {
		out.State = string(change.To)
		out.Group = change.Group
	}
	return out
}

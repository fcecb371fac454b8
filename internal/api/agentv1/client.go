package agentv1

import (
	"context"

	"google.golang.org/grpc"
)

// AgentClient is the client API for the Agent service.
type AgentClient struct {
	cc grpc.ClientConnInterface
}

// NewAgentClient returns a client speaking the JSON codec over cc.
func NewAgentClient(cc grpc.ClientConnInterface) *AgentClient {
	return &AgentClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *AgentClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(ContentSubtype)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AgentClient) AddGroup(ctx context.Context, in *AddGroupRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "AddGroup", in, opts)
}

func (c *AgentClient) RemoveGroup(ctx context.Context, in *RemoveGroupRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "RemoveGroup", in, opts)
}

func (c *AgentClient) ListGroups(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListGroupsResponse, error) {
	return invoke[ListGroupsResponse](ctx, c, "ListGroups", in, opts)
}

func (c *AgentClient) AddCatalogItem(ctx context.Context, in *AddCatalogItemRequest, opts ...grpc.CallOption) (*AddCatalogItemResponse, error) {
	return invoke[AddCatalogItemResponse](ctx, c, "AddCatalogItem", in, opts)
}

func (c *AgentClient) RemoveCatalogItem(ctx context.Context, in *RemoveCatalogItemRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "RemoveCatalogItem", in, opts)
}

func (c *AgentClient) ListCatalog(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListCatalogResponse, error) {
	return invoke[ListCatalogResponse](ctx, c, "ListCatalog", in, opts)
}

func (c *AgentClient) ReportFraud(ctx context.Context, in *ReportFraudRequest, opts ...grpc.CallOption) (*ReportFraudResponse, error) {
	return invoke[ReportFraudResponse](ctx, c, "ReportFraud", in, opts)
}

func (c *AgentClient) ShareFraud(ctx context.Context, in *ShareFraudRequest, opts ...grpc.CallOption) (*ShareFraudResponse, error) {
	return invoke[ShareFraudResponse](ctx, c, "ShareFraud", in, opts)
}

func (c *AgentClient) ListFraudReports(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListFraudReportsResponse, error) {
	return invoke[ListFraudReportsResponse](ctx, c, "ListFraudReports", in, opts)
}

func (c *AgentClient) CheckNumber(ctx context.Context, in *CheckNumberRequest, opts ...grpc.CallOption) (*CheckNumberResponse, error) {
	return invoke[CheckNumberResponse](ctx, c, "CheckNumber", in, opts)
}

func (c *AgentClient) LogCall(ctx context.Context, in *LogCallRequest, opts ...grpc.CallOption) (*LogCallResponse, error) {
	return invoke[LogCallResponse](ctx, c, "LogCall", in, opts)
}

func (c *AgentClient) ListCallLogs(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListCallLogsResponse, error) {
	return invoke[ListCallLogsResponse](ctx, c, "ListCallLogs", in, opts)
}

func (c *AgentClient) StartMonitor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MonitorStatusResponse, error) {
	return invoke[MonitorStatusResponse](ctx, c, "StartMonitor", in, opts)
}

func (c *AgentClient) StopMonitor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MonitorStatusResponse, error) {
	return invoke[MonitorStatusResponse](ctx, c, "StopMonitor", in, opts)
}

func (c *AgentClient) MonitorStatus(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MonitorStatusResponse, error) {
	return invoke[MonitorStatusResponse](ctx, c, "MonitorStatus", in, opts)
}

func (c *AgentClient) GetPicture(ctx context.Context, in *GetPictureRequest, opts ...grpc.CallOption) (*GetPictureResponse, error) {
	return invoke[GetPictureResponse](ctx, c, "GetPicture", in, opts)
}

func (c *AgentClient) Replies(ctx context.Context, in *RepliesRequest, opts ...grpc.CallOption) (*RepliesResponse, error) {
	return invoke[RepliesResponse](ctx, c, "Replies", in, opts)
}

func (c *AgentClient) Popular(ctx context.Context, in *PopularRequest, opts ...grpc.CallOption) (*PopularResponse, error) {
	return invoke[PopularResponse](ctx, c, "Popular", in, opts)
}

func (c *AgentClient) Matches(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MatchesResponse, error) {
	return invoke[MatchesResponse](ctx, c, "Matches", in, opts)
}

// WatchStatus opens the status stream. Receive events with Recv until it
// returns an error (io.EOF when the server ends the stream).
func (c *AgentClient) WatchStatus(ctx context.Context, in *WatchStatusRequest, opts ...grpc.CallOption) (*StatusReceiver, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(ContentSubtype)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/WatchStatus", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &StatusReceiver{stream: stream}, nil
}

// StatusReceiver is the client side of WatchStatus.
type StatusReceiver struct {
	stream grpc.ClientStream
}

// Recv blocks for the next event.
func (r *StatusReceiver) Recv() (*StatusEvent, error) {
	evt := new(StatusEvent)
	if err := r.stream.RecvMsg(evt); err != nil {
		return nil, err
	}
	return evt, nil
}

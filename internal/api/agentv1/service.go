package agentv1

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "salesagent.v1.Agent"

// AgentServer is the server API for the Agent service.
type AgentServer interface {
	AddGroup(context.Context, *AddGroupRequest) (*Empty, error)
	RemoveGroup(context.Context, *RemoveGroupRequest) (*Empty, error)
	ListGroups(context.Context, *Empty) (*ListGroupsResponse, error)
	AddCatalogItem(context.Context, *AddCatalogItemRequest) (*AddCatalogItemResponse, error)
	RemoveCatalogItem(context.Context, *RemoveCatalogItemRequest) (*Empty, error)
	ListCatalog(context.Context, *Empty) (*ListCatalogResponse, error)
	ReportFraud(context.Context, *ReportFraudRequest) (*ReportFraudResponse, error)
	ShareFraud(context.Context, *ShareFraudRequest) (*ShareFraudResponse, error)
	ListFraudReports(context.Context, *Empty) (*ListFraudReportsResponse, error)
	CheckNumber(context.Context, *CheckNumberRequest) (*CheckNumberResponse, error)
	LogCall(context.Context, *LogCallRequest) (*LogCallResponse, error)
	ListCallLogs(context.Context, *Empty) (*ListCallLogsResponse, error)
	StartMonitor(context.Context, *Empty) (*MonitorStatusResponse, error)
	StopMonitor(context.Context, *Empty) (*MonitorStatusResponse, error)
	MonitorStatus(context.Context, *Empty) (*MonitorStatusResponse, error)
	GetPicture(context.Context, *GetPictureRequest) (*GetPictureResponse, error)
	Replies(context.Context, *RepliesRequest) (*RepliesResponse, error)
	Popular(context.Context, *PopularRequest) (*PopularResponse, error)
	Matches(context.Context, *Empty) (*MatchesResponse, error)
	WatchStatus(*WatchStatusRequest, StatusStream) error
}

// StatusStream is the server side of WatchStatus.
type StatusStream interface {
	Send(*StatusEvent) error
	Context() context.Context
}

type statusStream struct {
	grpc.ServerStream
}

func (s statusStream) Send(evt *StatusEvent) error {
	return s.ServerStream.SendMsg(evt)
}

// ServiceDesc describes the Agent service to grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AgentServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("AddGroup", AgentServer.AddGroup),
		unary("RemoveGroup", AgentServer.RemoveGroup),
		unary("ListGroups", AgentServer.ListGroups),
		unary("AddCatalogItem", AgentServer.AddCatalogItem),
		unary("RemoveCatalogItem", AgentServer.RemoveCatalogItem),
		unary("ListCatalog", AgentServer.ListCatalog),
		unary("ReportFraud", AgentServer.ReportFraud),
		unary("ShareFraud", AgentServer.ShareFraud),
		unary("ListFraudReports", AgentServer.ListFraudReports),
		unary("CheckNumber", AgentServer.CheckNumber),
		unary("LogCall", AgentServer.LogCall),
		unary("ListCallLogs", AgentServer.ListCallLogs),
		unary("StartMonitor", AgentServer.StartMonitor),
		unary("StopMonitor", AgentServer.StopMonitor),
		unary("MonitorStatus", AgentServer.MonitorStatus),
		unary("GetPicture", AgentServer.GetPicture),
		unary("Replies", AgentServer.Replies),
		unary("Popular", AgentServer.Popular),
		unary("Matches", AgentServer.Matches),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchStatus",
			Handler:       watchStatusHandler,
			ServerStreams: true,
		},
	},
	Metadata: "salesagent/v1/agent",
}

// RegisterAgentServer registers srv with s.
func RegisterAgentServer(s grpc.ServiceRegistrar, srv AgentServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(AgentServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AgentServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AgentServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchStatusHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchStatusRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(AgentServer).WatchStatus(in, statusStream{stream})
}

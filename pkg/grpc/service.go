package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// WardService is declared by hand rather than generated: its messages are plain
// Go structs carried by the json codec.

const (
	WardService_CreateAlert_FullMethodName   = "/ward.v1.WardService/CreateAlert"
	WardService_ConfirmAlert_FullMethodName  = "/ward.v1.WardService/ConfirmAlert"
	WardService_DismissAlert_FullMethodName  = "/ward.v1.WardService/DismissAlert"
	WardService_ListPending_FullMethodName   = "/ward.v1.WardService/ListPending"
	WardService_ValidateToken_FullMethodName = "/ward.v1.WardService/ValidateToken"
	WardService_PostLimiter_FullMethodName   = "/ward.v1.WardService/PostLimiter"
	WardService_WatchAlerts_FullMethodName   = "/ward.v1.WardService/WatchAlerts"
)

type WardServiceServer interface {
	CreateAlert(context.Context, *CreateAlertRequest) (*AlertResponse, error)
	ConfirmAlert(context.Context, *ResolveAlertRequest) (*AlertResponse, error)
	DismissAlert(context.Context, *ResolveAlertRequest) (*AlertResponse, error)
	ListPending(context.Context, *ListPendingRequest) (*ListPendingResponse, error)
	ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error)
	PostLimiter(context.Context, *PostLimiterRequest) (*PostLimiterResponse, error)
	WatchAlerts(*WatchAlertsRequest, WardService_WatchAlertsServer) error
}

type UnimplementedWardServiceServer struct{}

func (UnimplementedWardServiceServer) CreateAlert(context.Context, *CreateAlertRequest) (*AlertResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateAlert not implemented")
}
func (UnimplementedWardServiceServer) ConfirmAlert(context.Context, *ResolveAlertRequest) (*AlertResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ConfirmAlert not implemented")
}
func (UnimplementedWardServiceServer) DismissAlert(context.Context, *ResolveAlertRequest) (*AlertResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DismissAlert not implemented")
}
func (UnimplementedWardServiceServer) ListPending(context.Context, *ListPendingRequest) (*ListPendingResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListPending not implemented")
}
func (UnimplementedWardServiceServer) ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ValidateToken not implemented")
}
func (UnimplementedWardServiceServer) PostLimiter(context.Context, *PostLimiterRequest) (*PostLimiterResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PostLimiter not implemented")
}
func (UnimplementedWardServiceServer) WatchAlerts(*WatchAlertsRequest, WardService_WatchAlertsServer) error {
	return status.Errorf(codes.Unimplemented, "method WatchAlerts not implemented")
}

func RegisterWardServiceServer(s grpc.ServiceRegistrar, srv WardServiceServer) {
	s.RegisterService(&WardService_ServiceDesc, srv)
}

// unaryHandler adapts one typed method to the grpc.MethodDesc handler shape.
func unaryHandler[Req any, Resp any](fullMethod string, call func(WardServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(WardServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(WardServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type WardService_WatchAlertsServer interface {
	Send(*AlertEvent) error
	grpc.ServerStream
}

type wardServiceWatchAlertsServer struct {
	grpc.ServerStream
}

func (x *wardServiceWatchAlertsServer) Send(m *AlertEvent) error {
	return x.ServerStream.SendMsg(m)
}

func _WardService_WatchAlerts_Handler(srv any, stream grpc.ServerStream) error {
	m := new(WatchAlertsRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(WardServiceServer).WatchAlerts(m, &wardServiceWatchAlertsServer{stream})
}

var WardService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "ward.v1.WardService",
	HandlerType: (*WardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateAlert",
			Handler:    unaryHandler(WardService_CreateAlert_FullMethodName, WardServiceServer.CreateAlert),
		},
		{
			MethodName: "ConfirmAlert",
			Handler:    unaryHandler(WardService_ConfirmAlert_FullMethodName, WardServiceServer.ConfirmAlert),
		},
		{
			MethodName: "DismissAlert",
			Handler:    unaryHandler(WardService_DismissAlert_FullMethodName, WardServiceServer.DismissAlert),
		},
		{
			MethodName: "ListPending",
			Handler:    unaryHandler(WardService_ListPending_FullMethodName, WardServiceServer.ListPending),
		},
		{
			MethodName: "ValidateToken",
			Handler:    unaryHandler(WardService_ValidateToken_FullMethodName, WardServiceServer.ValidateToken),
		},
		{
			MethodName: "PostLimiter",
			Handler:    unaryHandler(WardService_PostLimiter_FullMethodName, WardServiceServer.PostLimiter),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchAlerts",
			Handler:       _WardService_WatchAlerts_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "ward/v1/ward_service",
}

type WardServiceClient interface {
	CreateAlert(ctx context.Context, in *CreateAlertRequest, opts ...grpc.CallOption) (*AlertResponse, error)
	ConfirmAlert(ctx context.Context, in *ResolveAlertRequest, opts ...grpc.CallOption) (*AlertResponse, error)
	DismissAlert(ctx context.Context, in *ResolveAlertRequest, opts ...grpc.CallOption) (*AlertResponse, error)
	ListPending(ctx context.Context, in *ListPendingRequest, opts ...grpc.CallOption) (*ListPendingResponse, error)
	ValidateToken(ctx context.Context, in *ValidateTokenRequest, opts ...grpc.CallOption) (*ValidateTokenResponse, error)
	PostLimiter(ctx context.Context, in *PostLimiterRequest, opts ...grpc.CallOption) (*PostLimiterResponse, error)
	WatchAlerts(ctx context.Context, in *WatchAlertsRequest, opts ...grpc.CallOption) (WardService_WatchAlertsClient, error)
}

type wardServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewWardServiceClient(cc grpc.ClientConnInterface) WardServiceClient {
	return &wardServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *wardServiceClient) CreateAlert(ctx context.Context, in *CreateAlertRequest, opts ...grpc.CallOption) (*AlertResponse, error) {
	return invoke[AlertResponse](ctx, c.cc, WardService_CreateAlert_FullMethodName, in, opts)
}

func (c *wardServiceClient) ConfirmAlert(ctx context.Context, in *ResolveAlertRequest, opts ...grpc.CallOption) (*AlertResponse, error) {
	return invoke[AlertResponse](ctx, c.cc, WardService_ConfirmAlert_FullMethodName, in, opts)
}

func (c *wardServiceClient) DismissAlert(ctx context.Context, in *ResolveAlertRequest, opts ...grpc.CallOption) (*AlertResponse, error) {
	return invoke[AlertResponse](ctx, c.cc, WardService_DismissAlert_FullMethodName, in, opts)
}

func (c *wardServiceClient) ListPending(ctx context.Context, in *ListPendingRequest, opts ...grpc.CallOption) (*ListPendingResponse, error) {
	return invoke[ListPendingResponse](ctx, c.cc, WardService_ListPending_FullMethodName, in, opts)
}

func (c *wardServiceClient) ValidateToken(ctx context.Context, in *ValidateTokenRequest, opts ...grpc.CallOption) (*ValidateTokenResponse, error) {
	return invoke[ValidateTokenResponse](ctx, c.cc, WardService_ValidateToken_FullMethodName, in, opts)
}

func (c *wardServiceClient) PostLimiter(ctx context.Context, in *PostLimiterRequest, opts ...grpc.CallOption) (*PostLimiterResponse, error) {
	return invoke[PostLimiterResponse](ctx, c.cc, WardService_PostLimiter_FullMethodName, in, opts)
}

type WardService_WatchAlertsClient interface {
	Recv() (*AlertEvent, error)
	grpc.ClientStream
}

type wardServiceWatchAlertsClient struct {
	grpc.ClientStream
}

func (x *wardServiceWatchAlertsClient) Recv() (*AlertEvent, error) {
	m := new(AlertEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *wardServiceClient) WatchAlerts(ctx context.Context, in *WatchAlertsRequest, opts ...grpc.CallOption) (WardService_WatchAlertsClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &WardService_ServiceDesc.Streams[0], WardService_WatchAlerts_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &wardServiceWatchAlertsClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The node service speaks protobuf well-known types only. Requests and
// replies are Structs whose fields follow the JSON shape of the Go types.
const (
	NodeServiceName = "ettawallet.NodeService"

	ensureStartedMethod  = "/" + NodeServiceName + "/EnsureStarted"
	awaitReadyMethod     = "/" + NodeServiceName + "/AwaitReady"
	createInvoiceMethod  = "/" + NodeServiceName + "/CreateInvoice"
	pruneExpiredMethod   = "/" + NodeServiceName + "/PruneExpired"
	recordPaymentMethod  = "/" + NodeServiceName + "/RecordPayment"
	getSnapshotMethod    = "/" + NodeServiceName + "/GetSnapshot"
	subscribeStateMethod = "/" + NodeServiceName + "/SubscribeState"
	cancelInvoiceMethod  = "/" + NodeServiceName + "/CancelInvoice"
	resetNodeMethod      = "/" + NodeServiceName + "/ResetNode"
)

type NodeServiceServer interface {
	EnsureStarted(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	AwaitReady(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateInvoice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PruneExpired(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordPayment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SubscribeState(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
	CancelInvoice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetNode(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type NodeServiceClient interface {
	EnsureStarted(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	AwaitReady(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CreateInvoice(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	PruneExpired(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RecordPayment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubscribeState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
	CancelInvoice(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ResetNode(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

func RegisterNodeServiceServer(s grpc.ServiceRegistrar, srv NodeServiceServer) {
	s.RegisterService(&NodeServiceDesc, srv)
}

func unaryHandler[Req proto.Message](fullMethod string, newReq func() Req, call func(NodeServiceServer, context.Context, Req) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(NodeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(NodeServiceServer), ctx, req.(Req))
		}

		return interceptor(ctx, in, info, handler)
	}
}

func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }

func newStruct() *structpb.Struct { return &structpb.Struct{} }

func subscribeStateHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	return srv.(NodeServiceServer).SubscribeState(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

var NodeServiceDesc = grpc.ServiceDesc{
	ServiceName: NodeServiceName,
	HandlerType: (*NodeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "EnsureStarted",
			Handler:    unaryHandler(ensureStartedMethod, newEmpty, NodeServiceServer.EnsureStarted),
		},
		{
			MethodName: "AwaitReady",
			Handler:    unaryHandler(awaitReadyMethod, newStruct, NodeServiceServer.AwaitReady),
		},
		{
			MethodName: "CreateInvoice",
			Handler:    unaryHandler(createInvoiceMethod, newStruct, NodeServiceServer.CreateInvoice),
		},
		{
			MethodName: "PruneExpired",
			Handler:    unaryHandler(pruneExpiredMethod, newStruct, NodeServiceServer.PruneExpired),
		},
		{
			MethodName: "RecordPayment",
			Handler:    unaryHandler(recordPaymentMethod, newStruct, NodeServiceServer.RecordPayment),
		},
		{
			MethodName: "GetSnapshot",
			Handler:    unaryHandler(getSnapshotMethod, newEmpty, NodeServiceServer.GetSnapshot),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeState",
			Handler:       subscribeStateHandler,
			ServerStreams: true,
		},
	},
	Metadata: "rpc/node.proto",
}

type nodeServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewNodeServiceClient(cc grpc.ClientConnInterface) NodeServiceClient {
	return &nodeServiceClient{cc}
}

func (c *nodeServiceClient) unary(ctx context.Context, method string, in proto.Message, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *nodeServiceClient) EnsureStarted(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, ensureStartedMethod, in, opts...)
}

func (c *nodeServiceClient) AwaitReady(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, awaitReadyMethod, in, opts...)
}

func (c *nodeServiceClient) CreateInvoice(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, createInvoiceMethod, in, opts...)
}

func (c *nodeServiceClient) PruneExpired(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, pruneExpiredMethod, in, opts...)
}

func (c *nodeServiceClient) RecordPayment(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, recordPaymentMethod, in, opts...)
}

func (c *nodeServiceClient) GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, getSnapshotMethod, in, opts...)
}

func (c *nodeServiceClient) CancelInvoice(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, cancelInvoiceMethod, in, opts...)
}

func (c *nodeServiceClient) ResetNode(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, resetNodeMethod, in, opts...)
}

func (c *nodeServiceClient) SubscribeState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &NodeServiceDesc.Streams[0], subscribeStateMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

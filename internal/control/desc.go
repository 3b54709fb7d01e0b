package control

import (
	"context"

	"google.golang.org/genproto/googleapis/api/httpbody"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "clipkeep.v1.History"

// HistoryServer is the server API for the History service. Messages are
// protobuf well-known types so no generated code is needed.
type HistoryServer interface {
	List(context.Context, *wrapperspb.Int64Value) (*structpb.ListValue, error)
	Copy(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	CopyText(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Paste(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Pin(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Delete(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Pause(context.Context, *wrapperspb.BoolValue) (*wrapperspb.BoolValue, error)
	Content(context.Context, *structpb.Struct) (*httpbody.HttpBody, error)
}

// HistoryServiceDesc describes the History service to grpc.Server.
var HistoryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HistoryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("List", HistoryServer.List),
		unary("Copy", HistoryServer.Copy),
		unary("CopyText", HistoryServer.CopyText),
		unary("Paste", HistoryServer.Paste),
		unary("Pin", HistoryServer.Pin),
		unary("Delete", HistoryServer.Delete),
		unary("Pause", HistoryServer.Pause),
		unary("Content", HistoryServer.Content),
	},
	Metadata: "clipkeep/v1/history.proto",
}

// RegisterHistoryServer registers srv on s.
func RegisterHistoryServer(s grpc.ServiceRegistrar, srv HistoryServer) {
	s.RegisterService(&HistoryServiceDesc, srv)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary builds the method descriptor protoc-gen-go-grpc would generate for
// a unary method.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](name string, call func(HistoryServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(HistoryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(HistoryServer), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "insights.v1.ShareService"

const (
	MethodCreateShare = "CreateShare"
	MethodGetShare    = "GetShare"
	MethodListShares  = "ListShares"
	MethodDeleteShare = "DeleteShare"
	MethodExportShare = "ExportShare"
	MethodLoadDataset = "LoadDataset"
)

// ShareServiceServer is the server API of insights.v1.ShareService. Every
// method exchanges google.protobuf.Struct documents whose shape is the JSON
// form of the request and response types in this package.
type ShareServiceServer interface {
	CreateShare(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetShare(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListShares(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteShare(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportShare(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoadDataset(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ShareServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ShareServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ShareServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ShareServiceDesc describes insights.v1.ShareService for grpc.Server.
var ShareServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShareServiceServer)(nil),
	Methods:     []grpc.MethodDesc{
		unaryMethod(MethodCreateShare, ShareServiceServer.CreateShare),
		unaryMethod(MethodGetShare, ShareServiceServer.GetShare),
		unaryMethod(MethodListShares, ShareServiceServer.ListShares),
		unaryMethod(MethodDeleteShare, ShareServiceServer.DeleteShare),
		unaryMethod(MethodExportShare, ShareServiceServer.ExportShare),
		unaryMethod(MethodLoadDataset, ShareServiceServer.LoadDataset),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "insights/v1/share.proto",
}

func RegisterShareServiceServer(s grpc.ServiceRegistrar, srv ShareServiceServer) {
	s.RegisterService(&ShareServiceDesc, srv)
}

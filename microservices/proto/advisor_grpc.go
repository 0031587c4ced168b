package proto

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
	structpb "google.golang.org/protobuf/types/known/structpb"
)

// The advisor service exchanges google.protobuf.Struct messages so both ends
// share one descriptor without generated message types. See advisor_codec.go
// for the field layout.

const (
	AdvisorService_Suggest_FullMethodName = "/advisor.AdvisorService/Suggest"
)

type AdvisorServiceClient interface {
	Suggest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type advisorServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAdvisorServiceClient(cc grpc.ClientConnInterface) AdvisorServiceClient {
	return &advisorServiceClient{cc}
}

func (c *advisorServiceClient) Suggest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, AdvisorService_Suggest_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type AdvisorServiceServer interface {
	Suggest(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type UnimplementedAdvisorServiceServer struct{}

func (UnimplementedAdvisorServiceServer) Suggest(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Suggest not implemented")
}

func RegisterAdvisorServiceServer(s grpc.ServiceRegistrar, srv AdvisorServiceServer) {
	s.RegisterService(&AdvisorService_ServiceDesc, srv)
}

func _AdvisorService_Suggest_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AdvisorServiceServer).Suggest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AdvisorService_Suggest_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AdvisorServiceServer).Suggest(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var AdvisorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "advisor.AdvisorService",
	HandlerType: (*AdvisorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Suggest",
			Handler:    _AdvisorService_Suggest_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "advisor.proto",
}

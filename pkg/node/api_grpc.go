package node

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The API service exchanges well-known protobuf types, so no generated
// stubs are needed: Solve takes and returns a Struct mirroring
// SolveRequest / SolveResponse.

const (
	apiSolveMethod       = "/pagerank.API/Solve"
	apiHealthCheckMethod = "/pagerank.API/HealthCheck"
)

type APIServer interface {
	Solve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	HealthCheck(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

type APIClient interface {
	Solve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	HealthCheck(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

func RegisterAPIServer(s grpc.ServiceRegistrar, srv APIServer) {
	s.RegisterService(&apiServiceDesc, srv)
}

func NewAPIClient(cc grpc.ClientConnInterface) APIClient {
	return &apiClient{cc}
}

type apiClient struct {
	cc grpc.ClientConnInterface
}

func (c *apiClient) Solve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, apiSolveMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *apiClient) HealthCheck(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, apiHealthCheckMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func apiSolveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(APIServer).Solve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: apiSolveMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(APIServer).Solve(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func apiHealthCheckHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(APIServer).HealthCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: apiHealthCheckMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(APIServer).HealthCheck(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var apiServiceDesc = grpc.ServiceDesc{
	ServiceName: "pagerank.API",
	HandlerType: (*APIServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Solve", Handler: apiSolveHandler},
		{MethodName: "HealthCheck", Handler: apiHealthCheckHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pagerank.proto",
}

package simulator

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Full method names of the tcgfun.simulator.v1.Simulator service. Requests
// and responses are google.protobuf.Struct values holding the JSON shapes of
// the catalog, guarantee and draw types.
const (
	Simulator_Open_FullMethodName         = "/tcgfun.simulator.v1.Simulator/Open"
	Simulator_ValidateRule_FullMethodName = "/tcgfun.simulator.v1.Simulator/ValidateRule"
	Simulator_Collection_FullMethodName   = "/tcgfun.simulator.v1.Simulator/Collection"
)

// SimulatorClient is the client API for the Simulator service.
type SimulatorClient interface {
	Open(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ValidateRule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Collection(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type simulatorClient struct {
	cc grpc.ClientConnInterface
}

// NewSimulatorClient returns a client on cc.
func NewSimulatorClient(cc grpc.ClientConnInterface) SimulatorClient {
	return &simulatorClient{cc}
}

func (c *simulatorClient) Open(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Simulator_Open_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *simulatorClient) ValidateRule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Simulator_ValidateRule_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *simulatorClient) Collection(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Simulator_Collection_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SimulatorServer is the server API for the Simulator service.
type SimulatorServer interface {
	Open(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ValidateRule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Collection(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterSimulatorServer registers srv on s.
func RegisterSimulatorServer(s grpc.ServiceRegistrar, srv SimulatorServer) {
	s.RegisterService(&Simulator_ServiceDesc, srv)
}

func _Simulator_Open_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServer).Open(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Simulator_Open_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServer).Open(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Simulator_ValidateRule_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServer).ValidateRule(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Simulator_ValidateRule_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServer).ValidateRule(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Simulator_Collection_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServer).Collection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Simulator_Collection_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServer).Collection(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Simulator_ServiceDesc is the grpc.ServiceDesc for the Simulator service.
var Simulator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "tcgfun.simulator.v1.Simulator",
	HandlerType: (*SimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Open", Handler: _Simulator_Open_Handler},
		{MethodName: "ValidateRule", Handler: _Simulator_ValidateRule_Handler},
		{MethodName: "Collection", Handler: _Simulator_Collection_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tcgfun/simulator/v1/simulator.proto",
}

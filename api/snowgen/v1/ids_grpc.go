// Package snowgenv1 holds the gRPC bindings of the snowgen.v1.IDService.
//
// Requests and responses are protobuf well-known types, so the service needs
// no generated message code:
//
//	Mint    google.protobuf.UInt32Value (count) -> google.protobuf.ListValue (decimal id strings)
//	Decode  google.protobuf.Int64Value  (id)    -> google.protobuf.Struct
//	Lookup  google.protobuf.Int64Value  (id)    -> google.protobuf.Struct
package snowgenv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const IDService_ServiceName = "snowgen.v1.IDService"

const (
	IDService_Mint_FullMethodName   = "/snowgen.v1.IDService/Mint"
	IDService_Decode_FullMethodName = "/snowgen.v1.IDService/Decode"
	IDService_Lookup_FullMethodName = "/snowgen.v1.IDService/Lookup"
)

// IDServiceClient is the client API for IDService.
type IDServiceClient interface {
	Mint(ctx context.Context, in *wrapperspb.UInt32Value, opts ...grpc.CallOption) (*structpb.ListValue, error)
	Decode(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
	Lookup(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type idServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIDServiceClient(cc grpc.ClientConnInterface) IDServiceClient {
	return &idServiceClient{cc}
}

func (c *idServiceClient) Mint(ctx context.Context, in *wrapperspb.UInt32Value, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, IDService_Mint_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *idServiceClient) Decode(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, IDService_Decode_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *idServiceClient) Lookup(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, IDService_Lookup_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// IDServiceServer is the server API for IDService. Implementations should
// embed UnimplementedIDServiceServer.
type IDServiceServer interface {
	Mint(context.Context, *wrapperspb.UInt32Value) (*structpb.ListValue, error)
	Decode(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	Lookup(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
}

// UnimplementedIDServiceServer returns Unimplemented for every method.
type UnimplementedIDServiceServer struct{}

func (UnimplementedIDServiceServer) Mint(context.Context, *wrapperspb.UInt32Value) (*structpb.ListValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Mint not implemented")
}
func (UnimplementedIDServiceServer) Decode(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Decode not implemented")
}
func (UnimplementedIDServiceServer) Lookup(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Lookup not implemented")
}

func RegisterIDServiceServer(s grpc.ServiceRegistrar, srv IDServiceServer) {
	s.RegisterService(&IDService_ServiceDesc, srv)
}

func _IDService_Mint_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IDServiceServer).Mint(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IDService_Mint_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IDServiceServer).Mint(ctx, req.(*wrapperspb.UInt32Value))
	}
	return interceptor(ctx, in, info, handler)
}

func _IDService_Decode_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IDServiceServer).Decode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IDService_Decode_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IDServiceServer).Decode(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func _IDService_Lookup_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IDServiceServer).Lookup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: IDService_Lookup_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IDServiceServer).Lookup(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// IDService_ServiceDesc is the grpc.ServiceDesc for IDService.
var IDService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: IDService_ServiceName,
	HandlerType: (*IDServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Mint", Handler: _IDService_Mint_Handler},
		{MethodName: "Decode", Handler: _IDService_Decode_Handler},
		{MethodName: "Lookup", Handler: _IDService_Lookup_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "snowgen/v1/ids.proto",
}

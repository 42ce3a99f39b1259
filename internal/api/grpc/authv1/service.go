package authv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "authcore.v1.Auth"

const (
	Auth_Login_FullMethodName         = "/authcore.v1.Auth/Login"
	Auth_RequestReset_FullMethodName  = "/authcore.v1.Auth/RequestReset"
	Auth_CompleteReset_FullMethodName = "/authcore.v1.Auth/CompleteReset"
	Auth_Me_FullMethodName            = "/authcore.v1.Auth/Me"
)

// AuthServer is the server API for the Auth service.
type AuthServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RequestReset(context.Context, *RequestResetRequest) (*RequestResetResponse, error)
	CompleteReset(context.Context, *CompleteResetRequest) (*CompleteResetResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
}

// UnimplementedAuthServer can be embedded to have forward compatible
// implementations.
type UnimplementedAuthServer struct{}

func (UnimplementedAuthServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}

func (UnimplementedAuthServer) RequestReset(context.Context, *RequestResetRequest) (*RequestResetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestReset not implemented")
}

func (UnimplementedAuthServer) CompleteReset(context.Context, *CompleteResetRequest) (*CompleteResetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CompleteReset not implemented")
}

func (UnimplementedAuthServer) Me(context.Context, *MeRequest) (*MeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Me not implemented")
}

// RegisterAuthServer registers srv on s.
func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&Auth_ServiceDesc, srv)
}

func _Auth_Login_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(LoginRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServer).Login(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Auth_Login_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServer).Login(ctx, req.(*LoginRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Auth_RequestReset_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RequestResetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServer).RequestReset(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Auth_RequestReset_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServer).RequestReset(ctx, req.(*RequestResetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Auth_CompleteReset_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CompleteResetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServer).CompleteReset(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Auth_CompleteReset_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServer).CompleteReset(ctx, req.(*CompleteResetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Auth_Me_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(MeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServer).Me(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Auth_Me_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServer).Me(ctx, req.(*MeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Auth_ServiceDesc is the grpc.ServiceDesc for the Auth service.
var Auth_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Login", Handler: _Auth_Login_Handler},
		{MethodName: "RequestReset", Handler: _Auth_RequestReset_Handler},
		{MethodName: "CompleteReset", Handler: _Auth_CompleteReset_Handler},
		{MethodName: "Me", Handler: _Auth_Me_Handler},
	},
	Streams: []grpc.StreamDesc{},
}

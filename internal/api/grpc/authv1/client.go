package authv1

import (
	"context"

	"google.golang.org/grpc"
)

// AuthClient is the client API for the Auth service.
type AuthClient interface {
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	RequestReset(ctx context.Context, in *RequestResetRequest, opts ...grpc.CallOption) (*RequestResetResponse, error)
	CompleteReset(ctx context.Context, in *CompleteResetRequest, opts ...grpc.CallOption) (*CompleteResetResponse, error)
	Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error)
}

type authClient struct {
	cc grpc.ClientConnInterface
}

// NewAuthClient returns a client that always uses the JSON codec.
func NewAuthClient(cc grpc.ClientConnInterface) AuthClient {
	return &authClient{cc: cc}
}

func (c *authClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	return c.cc.Invoke(ctx, method, in, out, append([]grpc.CallOption{CallOption()}, opts...)...)
}

func (c *authClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	out := new(LoginResponse)
	if err := c.invoke(ctx, Auth_Login_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authClient) RequestReset(ctx context.Context, in *RequestResetRequest, opts ...grpc.CallOption) (*RequestResetResponse, error) {
	out := new(RequestResetResponse)
	if err := c.invoke(ctx, Auth_RequestReset_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authClient) CompleteReset(ctx context.Context, in *CompleteResetRequest, opts ...grpc.CallOption) (*CompleteResetResponse, error) {
	out := new(CompleteResetResponse)
	if err := c.invoke(ctx, Auth_CompleteReset_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error) {
	out := new(MeResponse)
	if err := c.invoke(ctx, Auth_Me_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

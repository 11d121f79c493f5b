package client

import (
	"context"

	"github.com/dmitrijs2005/vaultkeeper/internal/api"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"google.golang.org/grpc"
)

// vaultServiceClient mirrors the remote Vault service, one method per RPC.
type vaultServiceClient interface {
	Prelogin(ctx context.Context, in *api.PreloginRequest, opts ...grpc.CallOption) (*models.KdfParams, error)
	Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*models.IdentityTokenResponse, error)
	RefreshToken(ctx context.Context, in *api.RefreshTokenRequest, opts ...grpc.CallOption) (*api.RefreshTokenResponse, error)
	Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error)
	ListCiphers(ctx context.Context, in *api.ListRequest, opts ...grpc.CallOption) (*api.ListCiphersResponse, error)
	ListOrganizations(ctx context.Context, in *api.ListRequest, opts ...grpc.CallOption) (*api.ListOrganizationsResponse, error)
	ListSends(ctx context.Context, in *api.ListRequest, opts ...grpc.CallOption) (*api.ListSendsResponse, error)
}

type vaultClient struct {
	cc grpc.ClientConnInterface
}

func newVaultServiceClient(cc grpc.ClientConnInterface) vaultServiceClient {
	return &vaultClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(api.CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) Prelogin(ctx context.Context, in *api.PreloginRequest, opts ...grpc.CallOption) (*models.KdfParams, error) {
	return invoke[api.PreloginRequest, models.KdfParams](ctx, c.cc, api.MethodPrelogin, in, opts)
}

func (c *vaultClient) Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*models.IdentityTokenResponse, error) {
	return invoke[api.LoginRequest, models.IdentityTokenResponse](ctx, c.cc, api.MethodLogin, in, opts)
}

func (c *vaultClient) RefreshToken(ctx context.Context, in *api.RefreshTokenRequest, opts ...grpc.CallOption) (*api.RefreshTokenResponse, error) {
	return invoke[api.RefreshTokenRequest, api.RefreshTokenResponse](ctx, c.cc, api.MethodRefreshToken, in, opts)
}

func (c *vaultClient) Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error) {
	return invoke[api.PingRequest, api.PingResponse](ctx, c.cc, api.MethodPing, in, opts)
}

func (c *vaultClient) ListCiphers(ctx context.Context, in *api.ListRequest, opts ...grpc.CallOption) (*api.ListCiphersResponse, error) {
	return invoke[api.ListRequest, api.ListCiphersResponse](ctx, c.cc, api.MethodListCiphers, in, opts)
}

func (c *vaultClient) ListOrganizations(ctx context.Context, in *api.ListRequest, opts ...grpc.CallOption) (*api.ListOrganizationsResponse, error) {
	return invoke[api.ListRequest, api.ListOrganizationsResponse](ctx, c.cc, api.MethodListOrganizations, in, opts)
}

func (c *vaultClient) ListSends(ctx context.Context, in *api.ListRequest, opts ...grpc.CallOption) (*api.ListSendsResponse, error) {
	return invoke[api.ListRequest, api.ListSendsResponse](ctx, c.cc, api.MethodListSends, in, opts)
}

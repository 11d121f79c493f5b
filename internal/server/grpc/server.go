// Package grpc serves the vaultkeeper.v1.Vault service of the development
// server over gRPC with the JSON codec from package api.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/vaultkeeper/internal/api"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
	"github.com/dmitrijs2005/vaultkeeper/internal/server/users"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address   string
	users     *users.Service
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us *users.Service, secretKey []byte) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		jwtSecret: secretKey,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(s.serviceDesc(), s)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	<-stopped
	return nil
}

func unary[Req, Resp any](fullMethod string, h func(ctx context.Context, in *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return h(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return h(ctx, req.(*Req))
		})
	}
}

func (s *GRPCServer) serviceDesc() *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: api.ServiceName,
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Prelogin", Handler: unary(api.MethodPrelogin, s.Prelogin)},
			{MethodName: "Login", Handler: unary(api.MethodLogin, s.Login)},
			{MethodName: "RefreshToken", Handler: unary(api.MethodRefreshToken, s.RefreshToken)},
			{MethodName: "Ping", Handler: unary(api.MethodPing, s.Ping)},
			{MethodName: "ListCiphers", Handler: unary(api.MethodListCiphers, s.ListCiphers)},
			{MethodName: "ListOrganizations", Handler: unary(api.MethodListOrganizations, s.ListOrganizations)},
			{MethodName: "ListSends", Handler: unary(api.MethodListSends, s.ListSends)},
		},
	}
}

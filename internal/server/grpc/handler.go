package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vaultkeeper/internal/api"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/server/users"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Prelogin(ctx context.Context, req *api.PreloginRequest) (*models.KdfParams, error) {
	p := s.users.Prelogin(ctx, req.Email)
	return &p, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*models.IdentityTokenResponse, error) {
	resp, err := s.users.Login(ctx, req.Email, req.MasterPasswordHash)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	resp, err := s.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) ListCiphers(ctx context.Context, req *api.ListRequest) (*api.ListCiphersResponse, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	cs, err := s.users.Ciphers(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ListCiphersResponse{Ciphers: cs}, nil
}

func (s *GRPCServer) ListOrganizations(ctx context.Context, req *api.ListRequest) (*api.ListOrganizationsResponse, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	orgs, err := s.users.Organizations(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ListOrganizationsResponse{Organizations: orgs}, nil
}

func (s *GRPCServer) ListSends(ctx context.Context, req *api.ListRequest) (*api.ListSendsResponse, error) {
	userID, ok := userIDFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	sends, err := s.users.Sends(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ListSendsResponse{Sends: sends}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, users.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, users.ErrUnknownUser):
		return status.Error(codes.NotFound, "unknown user")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

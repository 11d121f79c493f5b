package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/api"
	"github.com/dmitrijs2005/vaultkeeper/internal/client/models"
	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/dmitrijs2005/vaultkeeper/internal/logging"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const preloginTimeout = 12 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      vaultServiceClient
	tokens      TokenSource
	log         logging.Logger
	refreshes   singleflight.Group
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor authorizes calls that carry an account (see
// WithAccount). When the server reports an expired token it refreshes the
// pair once, stores it back and repeats the call.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	userID := accountFrom(ctx)
	if userID == "" {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	tok, err := s.tokens.Tokens(userID)
	if err != nil {
		return err
	}

	err = invoker(withAccessToken(ctx, tok.AccessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if tok.RefreshToken == "" {
		return err
	}

	fresh, err := s.refresh(ctx, userID, tok.RefreshToken)
	if err != nil {
		return err
	}

	return invoker(withAccessToken(ctx, fresh.AccessToken), method, req, reply, cc, opts...)
}

// refresh exchanges the refresh token of userID. Concurrent expirations of
// the same account share one exchange. A pair already rotated by an earlier
// exchange is reused, since refresh tokens are single-use.
func (s *GRPCClient) refresh(ctx context.Context, userID, refreshToken string) (models.Tokens, error) {
	v, err, _ := s.refreshes.Do(userID, func() (any, error) {
		if cur, err := s.tokens.Tokens(userID); err == nil && cur.RefreshToken != refreshToken {
			return cur, nil
		}
		resp, err := s.client.RefreshToken(WithAccount(ctx, ""), &api.RefreshTokenRequest{RefreshToken: refreshToken})
		if err != nil {
			return nil, err
		}
		t := models.Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
		if err := s.tokens.UpdateTokens(userID, t); err != nil {
			return nil, err
		}
		s.log.Debug(ctx, "access token refreshed", "user_id", userID)
		return t, nil
	})
	if err != nil {
		return models.Tokens{}, err
	}
	return v.(models.Tokens), nil
}

func NewGRPCClient(endpointURL string, tokens TokenSource, log logging.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, tokens: tokens, log: log}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = newVaultServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Prelogin(ctx context.Context, email string) (models.KdfParams, error) {
	ctx, cancel := context.WithTimeout(ctx, preloginTimeout)
	defer cancel()

	resp, err := s.client.Prelogin(ctx, &api.PreloginRequest{Email: email})
	if err != nil {
		return models.KdfParams{}, s.mapError(err)
	}
	return *resp, nil
}

func (s *GRPCClient) Login(ctx context.Context, email, passwordHash string) (models.IdentityTokenResponse, error) {
	resp, err := s.client.Login(ctx, &api.LoginRequest{Email: email, MasterPasswordHash: passwordHash})
	if err != nil {
		return models.IdentityTokenResponse{}, s.mapError(err)
	}
	return *resp, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) FetchVaultItems(ctx context.Context, accountID string) ([]RawItem, error) {
	if accountID == "" {
		return nil, ErrNoAccount
	}
	resp, err := s.client.ListCiphers(WithAccount(ctx, accountID), &api.ListRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Ciphers, nil
}

func (s *GRPCClient) FetchOrganizations(ctx context.Context, accountID string) ([]RawOrg, error) {
	if accountID == "" {
		return nil, ErrNoAccount
	}
	resp, err := s.client.ListOrganizations(WithAccount(ctx, accountID), &api.ListRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Organizations, nil
}

func (s *GRPCClient) FetchSends(ctx context.Context, accountID string) ([]RawSend, error) {
	if accountID == "" {
		return nil, ErrNoAccount
	}
	resp, err := s.client.ListSends(WithAccount(ctx, accountID), &api.ListRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Sends, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Canceled:
		return fmt.Errorf("rpc canceled: %w", context.Canceled)
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

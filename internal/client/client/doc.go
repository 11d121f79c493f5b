// Package client talks to the vault backend.
//
// # Overview
//
// The package provides:
//  1. Transport-agnostic contracts: Transport (per-account list fetches used
//     by the sync engine) and Identity (prelogin, password login, ping).
//  2. A gRPC implementation (GRPCClient). Messages are JSON-encoded through a
//     codec registered with grpc/encoding. The access token of the account
//     named in the call context is injected by a unary interceptor, expired
//     tokens are refreshed once and written back to the TokenSource, and
//     status codes are mapped to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// ErrUnavailable and ErrUnauthorized are matched with errors.Is. Anything
// else is wrapped as "rpc error: ...".
//
// All operations accept context.Context and honor cancellation.
package client

// Package api is the wire contract of the vaultkeeper.v1.Vault gRPC service,
// shared by the client transport and the development server.
//
// Messages are plain Go structs carried with a JSON codec, selected per call
// with grpc.CallContentSubtype(CodecName).
package api

package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultPbkdf2Iterations is applied whenever a profile does not carry its
// own PBKDF2 iteration count.
const DefaultPbkdf2Iterations = 600_000

// DefaultArgon2Iterations is applied to Argon2id profiles missing an
// iteration count. Memory and parallelism are never defaulted.
const DefaultArgon2Iterations = 3

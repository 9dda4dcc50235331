// Package client contains the CLI side of the noteshelf account API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     account operations the CLI exposes.
//  2. A gRPC implementation (see GRPCClient) that owns the connection,
//     injects the account token via an interceptor and maps gRPC status
//     codes to sentinel errors.
//
// # Error Handling
//
// Transport conditions are exposed as ErrUnavailable and ErrUnauthorized.
// Other server failures wrap the matching category error from package
// common, so callers can keep using errors.Is.
package client

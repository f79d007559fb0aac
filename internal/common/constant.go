// Package common contains shared constants and sentinel errors used across
// GophAuth components.
package common

// AccessTokenHeaderName is the gRPC/HTTP metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// UserAgentHeaderName is the metadata key the server reads the client
// descriptor from when recording refresh token origin.
const UserAgentHeaderName = "user-agent"

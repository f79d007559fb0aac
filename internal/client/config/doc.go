// Package config loads runtime configuration for the GophAuth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string     address:port of the backend gRPC endpoint
//	-i int        online status check interval (seconds)
//	-s string     SQLite file holding the login session
//	-t duration   per-request timeout
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "session_file": "gophauth_session.db",
//	  "request_timeout": "10s"
//	}
//
// Environment variables are not consulted.
package config

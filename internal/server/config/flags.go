package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-e string     environment (local, dev, prod)
//	-a string     gRPC bind address (e.g., ":50051")
//	-m string     ops HTTP bind address (e.g., ":8081")
//	-d string     PostgreSQL DSN
//	-s string     access token HMAC secret key
//	-i string     access token issuer
//	-t duration   access token validity
//	-r duration   refresh token validity
//	-v duration   email verification token validity
//	-p duration   password reset token validity
//	-b int        bcrypt cost
//	-f string     frontend base URL
//	-n string     NATS URL
//	-j string     notification subject
//
// Only the flags above are considered; anything else in args (the -c config
// flag included) is filtered out first.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Env, "e", config.Env, "environment")
	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "m", config.EndpointAddrHTTP, "ops HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "token issuer")
	fs.DurationVar(&config.AccessTokenValidityDuration, "t", config.AccessTokenValidityDuration, "access token validity")
	fs.DurationVar(&config.RefreshTokenValidityDuration, "r", config.RefreshTokenValidityDuration, "refresh token validity")
	fs.DurationVar(&config.EmailTokenValidityDuration, "v", config.EmailTokenValidityDuration, "email verification token validity")
	fs.DurationVar(&config.ResetTokenValidityDuration, "p", config.ResetTokenValidityDuration, "password reset token validity")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend base URL")
	fs.StringVar(&config.NATSURL, "n", config.NATSURL, "NATS URL")
	fs.StringVar(&config.NotificationSubject, "j", config.NotificationSubject, "notification subject")

	return fs.Parse(flagx.FilterArgs(args, flagx.FlagNames(fs)))
}

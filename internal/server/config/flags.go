package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/storekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":3000")
//	-d string   PostgreSQL DSN
//	-l string   log level
//	-s string   JWT secret for access tokens
//	-rs string  JWT secret for refresh tokens
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-redis string  Redis address for rate limiting
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-o string   order sheet directory
//
// Only these flags are taken from os.Args, see flagx.FilterArgs. Durations
// are whole minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-l", "-s", "-rs", "-t", "-r", "-redis",
		"-u", "-p", "-b", "-g", "-e", "-o",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "access token secret")
	fs.StringVar(&config.JWTRefreshSecret, "rs", config.JWTRefreshSecret, "refresh token secret")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.OrderSheetDir, "o", config.OrderSheetDir, "order sheet directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// sub-minute values from earlier layers survive unless the flag is given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		}
	})
}

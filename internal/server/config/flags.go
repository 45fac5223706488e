package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/blogkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN ("memory" for the in-memory store)
//	-s string     token HMAC secret key
//	-k int        bcrypt cost
//	-t duration   store call timeout (e.g., "5s")
//	-m int        max image size, bytes
//	-o string     comma separated CORS origins
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x string     S3 key prefix for post images
//	-l string     log level
//
// os.Args is first filtered down to these flags with flagx.FilterArgs, so
// flags meant for other components do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-t", "-m", "-o", "-u", "-p", "-b", "-g", "-e", "-x", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.PasswordHashCost, "k", config.PasswordHashCost, "bcrypt cost")
	fs.DurationVar(&config.StoreTimeout, "t", config.StoreTimeout, "store call timeout")
	fs.Int64Var(&config.MaxImageSize, "m", config.MaxImageSize, "max image size (bytes)")
	origins := fs.String("o", strings.Join(config.CORSAllowedOrigins, ","), "CORS allowed origins, comma separated")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3ImagePrefix, "x", config.S3ImagePrefix, "S3 key prefix for images")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.CORSAllowedOrigins = splitList(*origins)
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for godotenv.Load. Variables already present in the
// process environment are not overridden by the file.
var loadDotEnv = func() error {
	return godotenv.Load()
}

// parseEnv overlays config with environment variables. A .env file in the
// working directory is loaded first when present.
//
// Recognised variables:
//
//	HTTP_ADDR, DATABASE_DSN, JSON_SECRET_KEY, PASSWORD_HASH_COST,
//	STORE_TIMEOUT, MAX_IMAGE_SIZE, CORS_ALLOWED_ORIGINS (comma separated),
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	S3_IMAGE_PREFIX, LOG_LEVEL
//
// Malformed numeric or duration values panic, like a malformed JSON file.
func parseEnv(config *Config) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "JSON_SECRET_KEY")

	if v, ok := os.LookupEnv("PASSWORD_HASH_COST"); ok {
		cost, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.PasswordHashCost = cost
	}
	if v, ok := os.LookupEnv("STORE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.StoreTimeout = d
	}
	if v, ok := os.LookupEnv("MAX_IMAGE_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		config.MaxImageSize = n
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		config.CORSAllowedOrigins = splitList(v)
	}

	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.S3ImagePrefix, "S3_IMAGE_PREFIX")
	envString(&config.LogLevel, "LOG_LEVEL")
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/storekeeper/internal/flagx"
	"github.com/joho/godotenv"
)

// loadDotEnv seeds the process environment from the file named by
// -env/-env-file, or from ./.env when present. Variables that are already
// set are never overwritten.
func loadDotEnv() error {
	if path := flagx.EnvFileFlags(); path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// parseEnv overlays environment variables onto config. Malformed numeric
// values are ignored and the previous value is kept.
func parseEnv(config *Config) {
	if err := loadDotEnv(); err != nil {
		panic(err)
	}

	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.EndpointAddrHTTP = ":" + strings.TrimPrefix(port, ":")
	}
	config.EndpointAddrHTTP = getEnv("HTTP_ADDR", config.EndpointAddrHTTP)

	config.DatabaseDSN = getEnv("DATABASE_DSN", config.DatabaseDSN)
	if host, ok := os.LookupEnv("DB_HOST"); ok && host != "" {
		config.DatabaseDSN = composeDSN(
			host,
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USERNAME", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "storekeeper"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)

	config.JWTSecret = getEnv("JWT_SECRET", config.JWTSecret)
	config.AccessTokenValidityDuration = getEnvAsExpiration("JWT_AUTH_TOKEN_EXPIRATION_TIME", config.AccessTokenValidityDuration)
	config.JWTRefreshSecret = getEnv("JWT_REFRESH_TOKEN_SECRET", config.JWTRefreshSecret)
	config.RefreshTokenValidityDuration = getEnvAsExpiration("JWT_REFRESH_TOKEN_EXPIRATION_TIME", config.RefreshTokenValidityDuration)

	config.SMTPHost = getEnv("SMTP_DOMAIN", config.SMTPHost)
	config.SMTPPort = getEnvAsInt("SMTP_PORT", config.SMTPPort)
	config.SMTPUser = getEnv("SMTP_USER", config.SMTPUser)
	config.SMTPPassword = getEnv("SMTP_PASS", config.SMTPPassword)
	config.MailSender = getEnv("DEFAULT_EMAIL_SENDER", config.MailSender)
	config.ForgotPasswordSender = getEnv("FORGOT_PASSWORD_SENDER", config.ForgotPasswordSender)

	config.RedisAddr = getEnv("REDIS_ADDR", config.RedisAddr)
	config.RedisPassword = getEnv("REDIS_PASSWORD", config.RedisPassword)
	config.RedisDB = getEnvAsInt("REDIS_DB", config.RedisDB)
	config.RateLimitRPS = getEnvAsFloat("RATE_LIMIT_RPS", config.RateLimitRPS)
	config.RateLimitBurst = getEnvAsInt("RATE_LIMIT_BURST", config.RateLimitBurst)

	config.S3RootUser = getEnv("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = getEnv("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = getEnv("S3_BUCKET", config.S3Bucket)
	config.S3Region = getEnv("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getEnv("S3_BASE_ENDPOINT", config.S3BaseEndpoint)

	config.OrderSheetDir = getEnv("ORDER_SHEET_DIR", config.OrderSheetDir)
}

func composeDSN(host, port, user, password, name, sslmode string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsExpiration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := ParseExpiration(value)
	if err != nil {
		return fallback
	}
	return d
}

// ParseExpiration reads a token lifetime. It accepts Go durations ("15m",
// "1h30m"), a day count ("7d") or a bare number of seconds ("3600").
func ParseExpiration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty expiration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid expiration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid expiration %q: %w", s, err)
	}
	return d, nil
}

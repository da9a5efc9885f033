package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	t.Setenv("PORT", "8080")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USERNAME", "shop")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_NAME", "inventory")
	t.Setenv("JWT_SECRET", "a")
	t.Setenv("JWT_AUTH_TOKEN_EXPIRATION_TIME", "1h")
	t.Setenv("JWT_REFRESH_TOKEN_SECRET", "r")
	t.Setenv("JWT_REFRESH_TOKEN_EXPIRATION_TIME", "7d")
	t.Setenv("SMTP_DOMAIN", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "u")
	t.Setenv("SMTP_PASS", "p")
	t.Setenv("DEFAULT_EMAIL_SENDER", "shop@example.com")
	t.Setenv("FORGOT_PASSWORD_SENDER", "reset@example.com")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := &Config{RedisDB: 3}
	parseEnv(cfg)

	assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	assert.Equal(t, "postgres://shop:p%40ss@pg:6543/inventory?sslmode=disable", cfg.DatabaseDSN)
	assert.Equal(t, "a", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, "r", cfg.JWTRefreshSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, 465, cfg.SMTPPort)
	assert.Equal(t, "u", cfg.SMTPUser)
	assert.Equal(t, "p", cfg.SMTPPassword)
	assert.Equal(t, "shop@example.com", cfg.MailSender)
	assert.Equal(t, "reset@example.com", cfg.ForgotPasswordSender)
	assert.Equal(t, 3, cfg.RedisDB, "malformed value keeps previous")
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("STOREKEEPER_TEST_UNUSED=1\nS3_BUCKET=dotenv-bucket\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("STOREKEEPER_TEST_UNUSED")
		_ = os.Unsetenv("S3_BUCKET")
	})

	os.Args = []string{"testbin", "-env", envFile}

	cfg := &Config{}
	parseEnv(cfg)

	assert.Equal(t, "dotenv-bucket", cfg.S3Bucket)
}

func TestParseEnv_MissingDotEnvFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env", filepath.Join(t.TempDir(), "missing.env")}

	require.Panics(t, func() { parseEnv(&Config{}) })
}

func TestParseExpiration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"15m", 15 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"3600", time.Hour, false},
		{" 60 ", time.Minute, false},
		{"", 0, true},
		{"xd", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

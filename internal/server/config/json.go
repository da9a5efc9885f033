package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/storekeeper/internal/flagx"
	"github.com/dmitrijs2005/storekeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// both "15m" style strings and integer nanoseconds. Only keys present in the
// file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	LogLevel                     *string         `json:"log_level"`
	JWTSecret                    *string         `json:"jwt_secret"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	JWTRefreshSecret             *string         `json:"jwt_refresh_secret"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	SMTPHost                     *string         `json:"smtp_host"`
	SMTPPort                     *int            `json:"smtp_port"`
	SMTPUser                     *string         `json:"smtp_user"`
	SMTPPassword                 *string         `json:"smtp_password"`
	MailSender                   *string         `json:"mail_sender"`
	ForgotPasswordSender         *string         `json:"forgot_password_sender"`
	RedisAddr                    *string         `json:"redis_addr"`
	RedisPassword                *string         `json:"redis_password"`
	RedisDB                      *int            `json:"redis_db"`
	RateLimitRPS                 *float64        `json:"rate_limit_rps"`
	RateLimitBurst               *int            `json:"rate_limit_burst"`
	S3RootUser                   *string         `json:"s3_root_user"`
	S3RootPassword               *string         `json:"s3_root_password"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	OrderSheetDir                *string         `json:"order_sheet_dir"`
}

// parseJson overlays the file named by -c/-config onto config. Nothing is
// loaded when the flag is absent; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.JWTSecret, c.JWTSecret)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.JWTRefreshSecret, c.JWTRefreshSecret)
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailSender, c.MailSender)
	setString(&config.ForgotPasswordSender, c.ForgotPasswordSender)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	if c.RateLimitRPS != nil {
		config.RateLimitRPS = *c.RateLimitRPS
	}
	setInt(&config.RateLimitBurst, c.RateLimitBurst)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.OrderSheetDir, c.OrderSheetDir)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

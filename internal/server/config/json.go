package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/noteshelf/internal/flagx"
	"github.com/dmitrijs2005/noteshelf/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Pointer fields
// distinguish "absent" from a zero value so a partial file only overrides
// what it names.
type JsonConfig struct {
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	DemoMode              *bool           `json:"demo_mode"`
	LogLevel              *string         `json:"log_level"`
	HashWorkers           *int            `json:"hash_workers"`

	RedisAddr     *string `json:"redis_addr"`
	RedisPassword *string `json:"redis_password"`
	RedisDB       *int    `json:"redis_db"`

	TOTPIssuer            *string         `json:"totp_issuer"`
	TwoFactorChallengeTTL *timex.Duration `json:"two_factor_challenge_ttl"`
	TwoFactorMaxAttempts  *int            `json:"two_factor_max_attempts"`

	S3RootUser     *string         `json:"s3_root_user"`
	S3RootPassword *string         `json:"s3_root_password"`
	S3Bucket       *string         `json:"s3_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint"`
	AvatarURLTTL   *timex.Duration `json:"avatar_url_ttl"`
}

// parseJson overlays config with the file named by -c/-config. Without the
// flag nothing is loaded. Unreadable or invalid files panic.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	setDurationIf(&config.TokenValidityDuration, c.TokenValidityDuration)
	setIf(&config.DemoMode, c.DemoMode)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.HashWorkers, c.HashWorkers)
	setIf(&config.RedisAddr, c.RedisAddr)
	setIf(&config.RedisPassword, c.RedisPassword)
	setIf(&config.RedisDB, c.RedisDB)
	setIf(&config.TOTPIssuer, c.TOTPIssuer)
	setDurationIf(&config.TwoFactorChallengeTTL, c.TwoFactorChallengeTTL)
	setIf(&config.TwoFactorMaxAttempts, c.TwoFactorMaxAttempts)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDurationIf(&config.AvatarURLTTL, c.AvatarURLTTL)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDurationIf(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}

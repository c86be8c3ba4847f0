package config

import "time"

// TokenConfig exposes the signing secrets and lifetimes for the three token
// classes. Access and refresh tokens use distinct secrets; registration and
// recovery tokens share the short-lived recovery secret.
type TokenConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetRecoveryTokenSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetRecoveryTokenTTL() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

func (Tokens) GetAccessTokenSecret() string {
	return GetEnv("ACCESS_TOKEN_SECRET", "")
}

func (Tokens) GetRefreshTokenSecret() string {
	return GetEnv("REFRESH_TOKEN_SECRET", "")
}

func (Tokens) GetRecoveryTokenSecret() string {
	return GetEnv("RECOVERY_TOKEN_SECRET", "")
}

func (Tokens) GetAccessTokenTTL() time.Duration {
	return durationEnv("ACCESS_TOKEN_TTL", 15*time.Minute)
}

func (Tokens) GetRefreshTokenTTL() time.Duration {
	return durationEnv("REFRESH_TOKEN_TTL", 24*time.Hour)
}

func (Tokens) GetRecoveryTokenTTL() time.Duration {
	return durationEnv("RECOVERY_TOKEN_TTL", 10*time.Minute)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(GetEnv(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

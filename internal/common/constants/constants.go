package constants

import "time"

const (
	NameMinLength      = 2
	NameMaxLength      = 255
	PasswordMinLength  = 6
	PasswordMaxLength  = 72
	PostalCodeMaxLen   = 10
	JWTSecretMinLength = 32

	BcryptCost = 10

	DirectoryPageSize = 5

	DefaultSessionTTL     = 24 * time.Hour
	DefaultRequestTimeout = 5 * time.Second

	RevokedSessionCleanupInterval = 10 * time.Minute

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	RateLimitCleanupInterval = 5 * time.Minute

	RateLimitLoginRequestsPerSecond  = 1.0
	RateLimitLoginBurst              = 5
	RateLimitSignupRequestsPerSecond = 0.5
	RateLimitSignupBurst             = 3
	RateLimitGeneralRequestsPerSecond = 10.0
	RateLimitGeneralBurst             = 20
)

type ContextKey string

const TraceIDKey ContextKey = "trace_id"

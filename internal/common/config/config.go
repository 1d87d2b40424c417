package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/yhkim-dev/member-portal/internal/common/constants"
	commonerrors "github.com/yhkim-dev/member-portal/internal/common/errors"
)

type Config struct {
	HTTPPort       string
	DatabaseURL    string
	JWTSecret      string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	PageSize       int
}

func Load() (Config, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return Config{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseURL:    databaseURL,
		JWTSecret:      jwtSecret,
		SessionTTL:     getDurationEnv("SESSION_TTL", constants.DefaultSessionTTL),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		PageSize:       getIntEnv("DIRECTORY_PAGE_SIZE", constants.DirectoryPageSize),
	}, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

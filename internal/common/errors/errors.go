package commonerrors

import (
	"errors"
	"net/http"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")
)

var (
	ErrMemberNotFound = NewDomainError(
		"MEMBER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"member not found",
	)

	ErrNameAlreadyExists = NewDomainError(
		"NAME_ALREADY_EXISTS",
		CategoryConflict,
		http.StatusConflict,
		"this name is already taken",
	)

	ErrEmailAlreadyExists = NewDomainError(
		"EMAIL_ALREADY_EXISTS",
		CategoryConflict,
		http.StatusConflict,
		"this email is already in use",
	)

	ErrInvalidToken = NewDomainError(
		"INVALID_TOKEN",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"token is not valid",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)
)

package service

import (
	"net/http"

	commonerrors "github.com/yhkim-dev/member-portal/internal/common/errors"
)

// ErrInvalidCredentials is deliberately the only failure a caller can
// observe for a bad login: a missing account and a wrong password are
// indistinguishable to prevent user enumeration.
var ErrInvalidCredentials = commonerrors.NewDomainError(
	"INVALID_CREDENTIALS",
	commonerrors.CategoryUnauthorized,
	http.StatusUnauthorized,
	"invalid email or password",
)

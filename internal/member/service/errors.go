package service

import (
	"net/http"

	commonerrors "github.com/yhkim-dev/member-portal/internal/common/errors"
)

var (
	ErrMemberNotFound = commonerrors.ErrMemberNotFound
	ErrNameTaken      = commonerrors.ErrNameAlreadyExists
	ErrEmailTaken     = commonerrors.ErrEmailAlreadyExists

	ErrInvalidDuplicateField = commonerrors.NewDomainError(
		"INVALID_DUPLICATE_FIELD",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"duplicate check field must be name or email",
	)
)

package service

import (
	"context"
	"errors"

	"github.com/yhkim-dev/member-portal/internal/common/clock"
	commoncrypto "github.com/yhkim-dev/member-portal/internal/common/crypto"
	commonerrors "github.com/yhkim-dev/member-portal/internal/common/errors"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
	"github.com/yhkim-dev/member-portal/internal/member/domain"
	"github.com/yhkim-dev/member-portal/internal/member/repository"
	"github.com/yhkim-dev/member-portal/internal/observability/metrics"
)

type MemberService struct {
	repo      repository.Repository
	hasher    commoncrypto.PasswordHasher
	idGen     commoncrypto.IDGenerator
	validator *InputValidator
	clock     clock.Clock
	log       *logger.Logger
	pageSize  int
}

type MemberServiceDeps struct {
	Repo   repository.Repository
	Hasher commoncrypto.PasswordHasher
	IDGen  commoncrypto.IDGenerator
	Clock  clock.Clock
	Log    *logger.Logger
}

func NewMemberService(deps MemberServiceDeps, pageSize int) *MemberService {
	return &MemberService{
		repo:      deps.Repo,
		hasher:    deps.Hasher,
		idGen:     deps.IDGen,
		validator: NewInputValidator(),
		clock:     deps.Clock,
		log:       deps.Log,
		pageSize:  pageSize,
	}
}

type RegisterInput struct {
	Name            string `json:"name" validate:"required,min=2,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Address         string `json:"address" validate:"omitempty,max=500"`
	PostalCode      string `json:"postalCode" validate:"omitempty,max=10"`
}

type UpdateInput struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"omitempty,min=6,max=72"`
	Address    string `json:"address" validate:"omitempty,max=500"`
	PostalCode string `json:"postalCode" validate:"omitempty,max=10"`
}

type DirectoryPage struct {
	Members      []domain.Summary
	CurrentPage  int
	TotalPages   int
	TotalMembers int
	HasNext      bool
	HasPrev      bool
}

// Register validates the input, enforces name/email uniqueness, hashes the
// password and persists the new member. When both fields collide the name
// collision is reported.
func (s *MemberService) Register(ctx context.Context, input RegisterInput) (domain.ID, error) {
	s.log.WithFields(ctx, logger.Fields{
		"email":  input.Email,
		"action": "register_attempt",
	}).Info("register attempt")

	if err := s.validator.Check(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		metrics.RegistrationsTotal.WithLabelValues("validation_error").Inc()
		return "", err
	}

	nameExists, err := s.repo.ExistsByName(ctx, input.Name)
	if err != nil {
		return "", s.storageError(ctx, "register_duplicate_check_failed", err)
	}
	if nameExists {
		s.log.WithFields(ctx, logger.Fields{
			"name":   input.Name,
			"action": "register_name_exists",
		}).Warn("register failed: name already taken")
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return "", ErrNameTaken
	}

	emailExists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return "", s.storageError(ctx, "register_duplicate_check_failed", err)
	}
	if emailExists {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_email_exists",
		}).Warn("register failed: email already in use")
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return "", ErrEmailTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now()
	member := domain.Member{
		ID:           domain.ID(id),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Address:      input.Address,
		PostalCode:   input.PostalCode,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    input.Name,
		UpdatedBy:    input.Name,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		// A concurrent registration can win the race between the duplicate
		// check and the insert; the unique constraint is the final arbiter.
		if errors.Is(err, ErrNameTaken) || errors.Is(err, ErrEmailTaken) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  input.Email,
				"action": "register_insert_conflict",
			}).Warnf("register failed: %v", err)
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return "", err
		}
		return "", s.storageError(ctx, "register_create_failed", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"member_id": id,
		"email":     input.Email,
		"action":    "register_success",
	}).Info("register success")
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	return member.ID, nil
}

// CheckDuplicate is the best-effort pre-flight used by the signup form. The
// authoritative check happens inside Register.
func (s *MemberService) CheckDuplicate(ctx context.Context, field, value string) (bool, error) {
	var (
		exists bool
		err    error
	)

	switch field {
	case "name":
		exists, err = s.repo.ExistsByName(ctx, value)
	case "email":
		exists, err = s.repo.ExistsByEmail(ctx, value)
	default:
		return false, ErrInvalidDuplicateField
	}

	if err != nil {
		return false, s.storageError(ctx, "duplicate_check_failed", err)
	}

	result := "free"
	if exists {
		result = "taken"
	}
	metrics.DuplicateChecksTotal.WithLabelValues(field, result).Inc()

	return exists, nil
}

func (s *MemberService) GetProfile(ctx context.Context, id domain.ID) (domain.Profile, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return domain.Profile{}, ErrMemberNotFound
		}
		return domain.Profile{}, s.storageError(ctx, "get_profile_failed", err)
	}

	return domain.Profile{
		ID:         member.ID,
		Name:       member.Name,
		Email:      member.Email,
		Address:    member.Address,
		PostalCode: member.PostalCode,
	}, nil
}

// UpdateProfile overwrites the member's editable fields. An absent password
// leaves the stored hash untouched. Uniqueness is not re-checked here; the
// unique columns surface a conflict if the member renames into a collision.
func (s *MemberService) UpdateProfile(ctx context.Context, id domain.ID, input UpdateInput) error {
	if err := s.validator.Check(input); err != nil {
		metrics.ProfileUpdatesTotal.WithLabelValues("validation_error").Inc()
		return err
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			metrics.ProfileUpdatesTotal.WithLabelValues("not_found").Inc()
			return ErrMemberNotFound
		}
		return s.storageError(ctx, "update_profile_fetch_failed", err)
	}

	member.Name = input.Name
	member.Email = input.Email
	member.Address = input.Address
	member.PostalCode = input.PostalCode
	member.UpdatedAt = s.clock.Now()
	member.UpdatedBy = input.Name

	if input.Password != "" {
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			metrics.ProfileUpdatesTotal.WithLabelValues("error").Inc()
			return commonerrors.ErrInternalError.WithCause(err)
		}
		member.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, member); err != nil {
		if errors.Is(err, ErrNameTaken) || errors.Is(err, ErrEmailTaken) {
			metrics.ProfileUpdatesTotal.WithLabelValues("duplicate").Inc()
			return err
		}
		if errors.Is(err, ErrMemberNotFound) {
			metrics.ProfileUpdatesTotal.WithLabelValues("not_found").Inc()
			return ErrMemberNotFound
		}
		return s.storageError(ctx, "update_profile_failed", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"member_id": string(id),
		"action":    "profile_updated",
	}).Info("profile updated")
	metrics.ProfileUpdatesTotal.WithLabelValues("success").Inc()

	return nil
}

// List returns one directory page at the configured page size, ordered by
// registration time. Out-of-range pages yield an empty member list with
// valid pagination metadata.
func (s *MemberService) List(ctx context.Context, page int) (DirectoryPage, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return DirectoryPage{}, s.storageError(ctx, "list_members_count_failed", err)
	}

	totalPages := (total + s.pageSize - 1) / s.pageSize

	result := DirectoryPage{
		Members:      []domain.Summary{},
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalMembers: total,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}

	if page < 1 || page > totalPages {
		return result, nil
	}

	offset := (page - 1) * s.pageSize
	members, err := s.repo.List(ctx, offset, s.pageSize)
	if err != nil {
		return DirectoryPage{}, s.storageError(ctx, "list_members_failed", err)
	}
	if members != nil {
		result.Members = members
	}

	return result, nil
}

func (s *MemberService) storageError(ctx context.Context, action string, err error) error {
	s.log.WithFields(ctx, logger.Fields{
		"action": action,
	}).Errorf("storage error: %v", err)
	return commonerrors.ErrInternalError.WithCause(err)
}

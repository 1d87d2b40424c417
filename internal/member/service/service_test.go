package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yhkim-dev/member-portal/internal/common/clock"
	"github.com/yhkim-dev/member-portal/internal/common/logger"
	"github.com/yhkim-dev/member-portal/internal/member/domain"
)

func setupMemberService(t *testing.T) (*MemberService, *mockRepo, *mockHasher, *mockIDGenerator, *clock.MockClock) {
	t.Helper()

	repo := &mockRepo{}
	hasher := &mockHasher{}
	idGen := &mockIDGenerator{}
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	log, _ := logger.New("", "test", "info")

	svc := NewMemberService(MemberServiceDeps{
		Repo:   repo,
		Hasher: hasher,
		IDGen:  idGen,
		Clock:  clk,
		Log:    log,
	}, 5)

	return svc, repo, hasher, idGen, clk
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Name:            "Alice",
		Email:           "a@x.com",
		Password:        "secret1",
		PasswordConfirm: "secret1",
	}
}

func TestMemberService_Register_Success(t *testing.T) {
	svc, repo, _, _, clk := setupMemberService(t)

	var created domain.Member
	repo.createFunc = func(ctx context.Context, member domain.Member) error {
		created = member
		return nil
	}

	id, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if id == "" {
		t.Fatal("expected a member id")
	}

	if created.Name != "Alice" || created.Email != "a@x.com" {
		t.Errorf("unexpected member persisted: %+v", created)
	}
	if created.PasswordHash != "hashed_secret1" {
		t.Errorf("expected hashed password, got %q", created.PasswordHash)
	}
	if created.PasswordHash == "secret1" {
		t.Error("plaintext password must never be persisted")
	}
	if !created.CreatedAt.Equal(clk.Now()) || !created.UpdatedAt.Equal(clk.Now()) {
		t.Errorf("expected audit timestamps at %v, got created=%v updated=%v", clk.Now(), created.CreatedAt, created.UpdatedAt)
	}
	if created.CreatedBy != "Alice" || created.UpdatedBy != "Alice" {
		t.Errorf("expected self-service audit actor, got createdBy=%q updatedBy=%q", created.CreatedBy, created.UpdatedBy)
	}
}

func TestMemberService_Register_ValidationErrors(t *testing.T) {
	svc, repo, _, _, _ := setupMemberService(t)

	repo.createFunc = func(ctx context.Context, member domain.Member) error {
		t.Error("create must not be called on validation failure")
		return nil
	}

	testCases := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{
			name: "short name",
			input: RegisterInput{
				Name: "A", Email: "a@x.com",
				Password: "secret1", PasswordConfirm: "secret1",
			},
			field: "name",
		},
		{
			name: "missing name",
			input: RegisterInput{
				Email:    "a@x.com",
				Password: "secret1", PasswordConfirm: "secret1",
			},
			field: "name",
		},
		{
			name: "malformed email",
			input: RegisterInput{
				Name: "Alice", Email: "not-an-email",
				Password: "secret1", PasswordConfirm: "secret1",
			},
			field: "email",
		},
		{
			name: "short password",
			input: RegisterInput{
				Name: "Alice", Email: "a@x.com",
				Password: "12345", PasswordConfirm: "12345",
			},
			field: "password",
		},
		{
			name: "confirmation mismatch",
			input: RegisterInput{
				Name: "Alice", Email: "a@x.com",
				Password: "secret1", PasswordConfirm: "secret2",
			},
			field: "passwordConfirm",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)

			vErr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, found := vErr.Fields[tc.field]; !found {
				t.Errorf("expected error for field %q, got %v", tc.field, vErr.Fields)
			}
		})
	}
}

func TestMemberService_Register_DuplicateName(t *testing.T) {
	svc, repo, _, _, _ := setupMemberService(t)

	repo.existsByNameFunc = func(ctx context.Context, name string) (bool, error) {
		return true, nil
	}

	_, err := svc.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestMemberService_Register_DuplicateEmail(t *testing.T) {
	svc, repo, _, _, _ := setupMemberService(t)

	repo.existsByEmailFunc = func(ctx context.Context, email string) (bool, error) {
		return true, nil
	}

	_, err := svc.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestMemberService_Register_BothCollideReportsName(t *testing.T) {
	svc, repo, _, _, _ := setupMemberService(t)

	repo.existsByNameFunc = func(ctx context.Context, name string) (bool, error) {
		return true, nil
	}
	repo.existsByEmailFunc = func(ctx context.Context, email string) (bool, error) {
		return true, nil
	}

	_, err := svc.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected the name collision to be reported first, got %v", err)
	}
}

func TestMemberService_Register_InsertRaceSurfacesDuplicate(t *testing.T) {
	// Two concurrent registrations can both pass the duplicate check; the
	// losing insert must surface as a duplicate, not as a storage fault.
	svc, repo, _, _, _ := setupMemberService(t)

	repo.createFunc = func(ctx context.Context, member domain.Member) error {
		return ErrEmailTaken
	}

	_, err := svc.Register(context.Background(), validRegisterInput())
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestMemberService_CheckDuplicate(t *testing.T) {
	svc, repo, _, _, _ := setupMemberService(t)

	repo.existsByNameFunc = func(ctx context.Context, name string) (bool, error) {
		return name == "Alice", nil
	}
	repo.existsByEmailFunc = func(ctx context.Context, email string) (bool, error) {
		return email == "a@x.com", nil
	}

	testCases := []struct {
		field string
		value string
		want  bool
	}{
		{"name", "Alice", true},
		{"name", "Bob", false},
		{"email", "a@x.com", true},
		{"email", "b@x.com", false},
	}

	for _, tc := range testCases {
		got, err := svc.CheckDuplicate(context.Background(), tc.field, tc.value)
		if err != nil {
			t.Fatalf("CheckDuplicate(%s, %s): unexpected error %v", tc.field, tc.value, err)
		}
		if got != tc.want {
			t.Errorf("CheckDuplicate(%s, %s) = %v, want %v", tc.field, tc.value, got, tc.want)
		}
	}

	if _, err := svc.CheckDuplicate(context.Background(), "phone", "x"); !errors.Is(err, ErrInvalidDuplicateField) {
		t.Errorf("expected ErrInvalidDuplicateField for unknown field, got %v", err)
	}
}

func TestMemberService_GetProfile(t *testing.T) {
	svc, repo, _, _, _ := setupMemberService(t)

	repo.findByIDFunc = func(ctx context.Context, id domain.ID) (domain.Member, error) {
		return domain.Member{
			ID:           id,
			Name:         "Alice",
			Email:        "a@x.com",
			PasswordHash: "hashed_secret1",
			Address:      "12 High Street",
			PostalCode:   "04524",
		}, nil
	}

	profile, err := svc.GetProfile(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if profile.Name != "Alice" || profile.Email != "a@x.com" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if profile.Address != "12 High Street" || profile.PostalCode != "04524" {
		t.Errorf("expected address fields in profile, got %+v", profile)
	}
}

func TestMemberService_GetProfile_NotFound(t *testing.T) {
	svc, _, _, _, _ := setupMemberService(t)

	_, err := svc.GetProfile(context.Background(), "missing")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestMemberService_UpdateProfile_KeepsHashWithoutPassword(t *testing.T) {
	svc, repo, hasher, _, clk := setupMemberService(t)

	createdAt := clk.Now().Add(-24 * time.Hour)
	repo.findByIDFunc = func(ctx context.Context, id domain.ID) (domain.Member, error) {
		return domain.Member{
			ID:           id,
			Name:         "Alice",
			Email:        "a@x.com",
			PasswordHash: "existing-hash",
			CreatedAt:    createdAt,
			UpdatedAt:    createdAt,
			CreatedBy:    "Alice",
			UpdatedBy:    "Alice",
		}, nil
	}

	hasher.hashFunc = func(password string) (string, error) {
		t.Error("hash must not be called when no password is submitted")
		return "", nil
	}

	var updated domain.Member
	repo.updateFunc = func(ctx context.Context, member domain.Member) error {
		updated = member
		return nil
	}

	err := svc.UpdateProfile(context.Background(), "member-1", UpdateInput{
		Name:  "Alicia",
		Email: "a@x.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.PasswordHash != "existing-hash" {
		t.Errorf("expected stored hash to be untouched, got %q", updated.PasswordHash)
	}
	if !updated.UpdatedAt.Equal(clk.Now()) {
		t.Errorf("expected updatedAt refreshed to %v, got %v", clk.Now(), updated.UpdatedAt)
	}
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Error("updatedAt must never precede createdAt")
	}
	if updated.UpdatedBy != "Alicia" {
		t.Errorf("expected updatedBy set to the submitted name, got %q", updated.UpdatedBy)
	}
	if updated.CreatedBy != "Alice" || !updated.CreatedAt.Equal(createdAt) {
		t.Errorf("creation audit fields must be immutable, got %+v", updated)
	}
}

func TestMemberService_UpdateProfile_RehashesPassword(t *testing.T) {
	svc, repo, _, _, _ := setupMemberService(t)

	repo.findByIDFunc = func(ctx context.Context, id domain.ID) (domain.Member, error) {
		return domain.Member{ID: id, Name: "Alice", Email: "a@x.com", PasswordHash: "existing-hash"}, nil
	}

	var updated domain.Member
	repo.updateFunc = func(ctx context.Context, member domain.Member) error {
		updated = member
		return nil
	}

	err := svc.UpdateProfile(context.Background(), "member-1", UpdateInput{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "newsecret",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.PasswordHash != "hashed_newsecret" {
		t.Errorf("expected re-hashed password, got %q", updated.PasswordHash)
	}
}

func TestMemberService_UpdateProfile_NotFound(t *testing.T) {
	svc, _, _, _, _ := setupMemberService(t)

	err := svc.UpdateProfile(context.Background(), "missing", UpdateInput{
		Name:  "Alice",
		Email: "a@x.com",
	})
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestMemberService_List_Pagination(t *testing.T) {
	svc, repo, _, _, _ := setupMemberService(t)

	all := make([]domain.Summary, 12)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range all {
		all[i] = domain.Summary{
			ID:        domain.ID(string(rune('a' + i))),
			Name:      "member",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	repo.countFunc = func(ctx context.Context) (int, error) {
		return len(all), nil
	}
	repo.listFunc = func(ctx context.Context, offset, limit int) ([]domain.Summary, error) {
		if offset >= len(all) {
			return nil, nil
		}
		end := offset + limit
		if end > len(all) {
			end = len(all)
		}
		return all[offset:end], nil
	}

	first, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(first.Members) != 5 {
		t.Errorf("expected 5 members on page 1, got %d", len(first.Members))
	}
	if first.TotalPages != 3 || first.TotalMembers != 12 {
		t.Errorf("expected 3 pages of 12 members, got %d/%d", first.TotalPages, first.TotalMembers)
	}
	if !first.HasNext || first.HasPrev {
		t.Errorf("page 1: expected hasNext=true hasPrev=false, got %v/%v", first.HasNext, first.HasPrev)
	}

	last, err := svc.List(context.Background(), 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(last.Members) != 2 {
		t.Errorf("expected 2 members on page 3, got %d", len(last.Members))
	}
	if last.HasNext || !last.HasPrev {
		t.Errorf("page 3: expected hasNext=false hasPrev=true, got %v/%v", last.HasNext, last.HasPrev)
	}
}

func TestMemberService_List_OutOfRangePages(t *testing.T) {
	svc, repo, _, _, _ := setupMemberService(t)

	repo.countFunc = func(ctx context.Context) (int, error) {
		return 12, nil
	}
	repo.listFunc = func(ctx context.Context, offset, limit int) ([]domain.Summary, error) {
		t.Error("list must not be queried for out-of-range pages")
		return nil, nil
	}

	for _, page := range []int{0, -1, 4, 100} {
		result, err := svc.List(context.Background(), page)
		if err != nil {
			t.Fatalf("page %d: expected no error, got %v", page, err)
		}
		if len(result.Members) != 0 {
			t.Errorf("page %d: expected empty members, got %d", page, len(result.Members))
		}
		if result.TotalPages != 3 || result.TotalMembers != 12 {
			t.Errorf("page %d: expected valid metadata, got %+v", page, result)
		}
	}
}

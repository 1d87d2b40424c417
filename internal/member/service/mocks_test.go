package service

import (
	"context"

	"github.com/yhkim-dev/member-portal/internal/member/domain"
	"github.com/yhkim-dev/member-portal/internal/member/repository"
)

type mockRepo struct {
	createFunc        func(ctx context.Context, member domain.Member) error
	findByIDFunc      func(ctx context.Context, id domain.ID) (domain.Member, error)
	findByEmailFunc   func(ctx context.Context, email string) (domain.Member, error)
	existsByNameFunc  func(ctx context.Context, name string) (bool, error)
	existsByEmailFunc func(ctx context.Context, email string) (bool, error)
	updateFunc        func(ctx context.Context, member domain.Member) error
	listFunc          func(ctx context.Context, offset, limit int) ([]domain.Summary, error)
	countFunc         func(ctx context.Context) (int, error)
}

func (m *mockRepo) Create(ctx context.Context, member domain.Member) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, member)
	}
	return nil
}

func (m *mockRepo) FindByID(ctx context.Context, id domain.ID) (domain.Member, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return domain.Member{}, repository.ErrMemberNotFound
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (domain.Member, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return domain.Member{}, repository.ErrMemberNotFound
}

func (m *mockRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	if m.existsByNameFunc != nil {
		return m.existsByNameFunc(ctx, name)
	}
	return false, nil
}

func (m *mockRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFunc != nil {
		return m.existsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *mockRepo) Update(ctx context.Context, member domain.Member) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, member)
	}
	return nil
}

func (m *mockRepo) List(ctx context.Context, offset, limit int) ([]domain.Summary, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockRepo) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return nil
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "11111111-1111-1111-1111-111111111111", nil
}

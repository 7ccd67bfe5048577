package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/hotellisting/hotellisting-api/domain/entity"
	"github.com/hotellisting/hotellisting-api/domain/valueobject"
)

type mockIdentityStore struct {
	mock.Mock
}

func (m *mockIdentityStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockIdentityStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockIdentityStore) Create(ctx context.Context, user *entity.User, password string) ([]valueobject.IdentityError, error) {
	args := m.Called(ctx, user, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]valueobject.IdentityError), args.Error(1)
}

func (m *mockIdentityStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockIdentityStore) CheckPassword(ctx context.Context, user *entity.User, password string) (bool, error) {
	args := m.Called(ctx, user, password)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdentityStore) UpdateSecurityStamp(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockIdentityStore) AddToRole(ctx context.Context, user *entity.User, role string) error {
	args := m.Called(ctx, user, role)
	return args.Error(0)
}

func (m *mockIdentityStore) GetRoles(ctx context.Context, user *entity.User) ([]string, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockIdentityStore) GetClaims(ctx context.Context, user *entity.User) ([]entity.Claim, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Claim), args.Error(1)
}

// sequenceGenerator hands out predictable refresh tokens.
type sequenceGenerator struct {
	n int64
}

func (g *sequenceGenerator) GenerateRefreshToken() (string, error) {
	return fmt.Sprintf("refresh-%d", atomic.AddInt64(&g.n, 1)), nil
}

type recordingMetrics struct {
	mock.Mock
}

func (m *recordingMetrics) RecordLogin(success bool) {
	m.Called(success)
}

func (m *recordingMetrics) RecordRegistration(role string, success bool) {
	m.Called(role, success)
}

func (m *recordingMetrics) RecordRefresh(outcome string) {
	m.Called(outcome)
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shift-service/internal/config"
	"github.com/spec-kit/shift-service/internal/domain"
	"github.com/spec-kit/shift-service/internal/repository"
	apperrors "github.com/spec-kit/shift-service/pkg/util/errorutil"
)

type memRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMemRevocationStore() *memRevocationStore {
	return &memRevocationStore{revoked: make(map[string]bool)}
}

func (s *memRevocationStore) Revoke(_ context.Context, jti string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = true
	return nil
}

func (s *memRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[jti], nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

func TestLoginAfterCreate(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	revoked := newMemRevocationStore()
	authSvc := NewAuthService(testConfig(), users, revoked)
	userSvc := NewUserService(users, nil, bcrypt.MinCost)

	manager := domain.Session{UserID: 1, Role: domain.RoleManager}
	created, err := userSvc.Create(context.Background(), manager, UserCreateInput{
		Email:    "a@x.com",
		Name:     "Ann",
		Role:     "waiter",
		Password: "p1",
	})
	require.NoError(t, err)

	user, token, _, err := authSvc.Login(context.Background(), "a@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, domain.RoleWaiter, user.Role)
	assert.NotEmpty(t, token)
}

func TestVerifyWrongPassword(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	authSvc := NewAuthService(testConfig(), users, newMemRevocationStore())
	userSvc := NewUserService(users, nil, bcrypt.MinCost)

	manager := domain.Session{UserID: 1, Role: domain.RoleManager}
	_, err := userSvc.Create(context.Background(), manager, UserCreateInput{
		Email: "a@x.com", Name: "Ann", Role: "waiter", Password: "p1",
	})
	require.NoError(t, err)

	_, err = authSvc.Verify(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	// Unknown account surfaces the same way as a bad password.
	_, err = authSvc.Verify(context.Background(), "nobody@x.com", "p1")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	revoked := newMemRevocationStore()
	authSvc := NewAuthService(testConfig(), users, revoked)
	userSvc := NewUserService(users, nil, bcrypt.MinCost)

	manager := domain.Session{UserID: 1, Role: domain.RoleManager}
	_, err := userSvc.Create(context.Background(), manager, UserCreateInput{
		Email: "a@x.com", Name: "Ann", Role: "waiter", Password: "p1",
	})
	require.NoError(t, err)

	_, token, _, err := authSvc.Login(context.Background(), "a@x.com", "p1")
	require.NoError(t, err)

	claims, err := authSvc.TokenManager().ParseToken(token)
	require.NoError(t, err)

	require.NoError(t, authSvc.Logout(context.Background(), claims))

	isRevoked, err := revoked.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, isRevoked)
}

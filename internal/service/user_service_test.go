package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shift-service/internal/domain"
	"github.com/spec-kit/shift-service/internal/repository"
	apperrors "github.com/spec-kit/shift-service/pkg/util/errorutil"
)

func newUserService() (*UserService, repository.UserRepository) {
	users := repository.NewMemoryUserRepository()
	return NewUserService(users, nil, bcrypt.MinCost), users
}

var managerSession = domain.Session{UserID: 1, Role: domain.RoleManager}

func TestUserCreateDuplicateEmail(t *testing.T) {
	svc, users := newUserService()
	ctx := context.Background()

	_, err := svc.Create(ctx, managerSession, UserCreateInput{
		Email: "a@x.com", Name: "Ann", Role: "waiter", Password: "p1",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, managerSession, UserCreateInput{
		Email: "a@x.com", Name: "Other Ann", Role: "waiter", Password: "p2",
	})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_EMAIL", apperrors.ToDomainError(err).Code)

	all, err := users.List(ctx)
	require.NoError(t, err)
	count := 0
	for _, user := range all {
		if user.Email == "a@x.com" {
			count++
		}
	}
	assert.Equal(t, 1, count, "store must contain exactly one record for the email")
}

func TestUserCreateForbiddenForWaiter(t *testing.T) {
	svc, _ := newUserService()
	waiter := domain.Session{UserID: 2, Role: domain.RoleWaiter}

	_, err := svc.Create(context.Background(), waiter, UserCreateInput{
		Email: "b@x.com", Name: "Bob", Role: "waiter", Password: "p1",
	})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestUserCreateValidation(t *testing.T) {
	svc, _ := newUserService()
	ctx := context.Background()

	_, err := svc.Create(ctx, managerSession, UserCreateInput{
		Email: "", Name: "Ann", Role: "waiter", Password: "p1",
	})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.Create(ctx, managerSession, UserCreateInput{
		Email: "a@x.com", Name: "Ann", Role: "chef", Password: "p1",
	})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestUserUpdatePatch(t *testing.T) {
	svc, users := newUserService()
	ctx := context.Background()

	created, err := svc.Create(ctx, managerSession, UserCreateInput{
		Email: "a@x.com", Name: "Ann", Role: "waiter", Password: "p1",
	})
	require.NoError(t, err)
	oldHash := created.PasswordHash

	newName := "Anna"
	newPassword := "p2"
	updated, err := svc.Update(ctx, managerSession, created.ID, UserPatch{
		Name:     &newName,
		Password: &newPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.Name)
	assert.Equal(t, "a@x.com", updated.Email, "untouched field keeps its value")
	assert.Equal(t, domain.RoleWaiter, updated.Role)
	assert.NotEqual(t, oldHash, updated.PasswordHash, "new password must be re-hashed")

	stored, err := users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", stored.Name)
}

func TestUserUpdateNotFound(t *testing.T) {
	svc, _ := newUserService()
	name := "Ghost"

	_, err := svc.Update(context.Background(), managerSession, 9999, UserPatch{Name: &name})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestUserDelete(t *testing.T) {
	svc, users := newUserService()
	ctx := context.Background()

	created, err := svc.Create(ctx, managerSession, UserCreateInput{
		Email: "a@x.com", Name: "Ann", Role: "waiter", Password: "p1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, managerSession, created.ID))

	_, err = users.GetByID(ctx, created.ID)
	assert.Error(t, err)

	err = svc.Delete(ctx, managerSession, created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestEnsureAdminIdempotent(t *testing.T) {
	svc, users := newUserService()
	ctx := context.Background()

	first, err := svc.EnsureAdmin(ctx, "admin@x.com", "Admin", "secret")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, domain.RoleManager, first.Role)

	second, err := svc.EnsureAdmin(ctx, "admin@x.com", "Admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEnsureAdminSkippedWithoutCredentials(t *testing.T) {
	svc, users := newUserService()

	admin, err := svc.EnsureAdmin(context.Background(), "", "Admin", "")
	require.NoError(t, err)
	assert.Nil(t, admin)

	all, err := users.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

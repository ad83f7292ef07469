package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shift-service/internal/auth"
	"github.com/spec-kit/shift-service/internal/domain"
	"github.com/spec-kit/shift-service/internal/events"
	"github.com/spec-kit/shift-service/internal/repository"
	apperrors "github.com/spec-kit/shift-service/pkg/util/errorutil"
)

// UserService implements manager-only account administration.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, bcryptCost int) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, bcryptCost: bcryptCost}
}

// UserCreateInput describes account creation payload.
type UserCreateInput struct {
	Email    string
	Name     string
	Role     string
	Password string
}

// UserPatch describes a partial account update; nil fields are left alone.
type UserPatch struct {
	Email    *string
	Name     *string
	Role     *string
	Password *string
}

// List returns all accounts, ordered by insertion.
func (s *UserService) List(ctx context.Context, session domain.Session) ([]domain.User, error) {
	if err := auth.Authorize(session, auth.ActionManageUsers, nil); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Create registers a new account. Fails with a duplicate-email error when the
// address is already registered.
func (s *UserService) Create(ctx context.Context, session domain.Session, input UserCreateInput) (*domain.User, error) {
	if err := auth.Authorize(session, auth.ActionManageUsers, nil); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("email, name and password are required")
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewDuplicateEmail()
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique index catches what the pre-check raced past.
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewDuplicateEmail()
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:  events.EventUserCreated,
		Actor: session,
		Payload: events.UserCreatedPayload{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		},
	})
	return user, nil
}

// Update applies a partial patch to an account. A new password is re-hashed
// before storing.
func (s *UserService) Update(ctx context.Context, session domain.Session, id int64, patch UserPatch) (*domain.User, error) {
	if err := auth.Authorize(session, auth.ActionManageUsers, nil); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}

	if patch.Email != nil {
		user.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Role != nil {
		role, err := domain.ParseRole(*patch.Role)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		user.Role = role
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewDuplicateEmail()
		}
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, err
	}
	return user, nil
}

// Delete removes an account. The account's shifts are removed with it.
func (s *UserService) Delete(ctx context.Context, session domain.Session, id int64) error {
	if err := auth.Authorize(session, auth.ActionManageUsers, nil); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user")
		}
		return err
	}
	return nil
}

// EnsureAdmin seeds the initial manager account on boot. Idempotent: no-op
// when the email already exists or no admin credentials are configured.
func (s *UserService) EnsureAdmin(ctx context.Context, email, name, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, nil
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		return existing, nil
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	admin := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleManager,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

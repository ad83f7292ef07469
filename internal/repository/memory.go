package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/shift-service/internal/domain"
)

// In-memory implementations backing tests and DSN-less development runs.
// They honor the same error contract as the postgres implementations:
// pgx.ErrNoRows on a miss, a 23505 PgError on a duplicate email and
// ErrShiftTaken on a double booking.

type memoryUserRepository struct {
	mu    sync.RWMutex
	seq   int64
	users map[int64]domain.User
}

// NewMemoryUserRepository returns a map-backed UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[int64]domain.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}
		}
	}
	r.seq++
	user.ID = r.seq
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for id, existing := range r.users {
		if id != user.ID && existing.Email == user.Email {
			return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}
		}
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type memoryShiftRepository struct {
	mu     sync.RWMutex
	seq    int64
	shifts map[int64]domain.Shift
	users  UserRepository
}

// NewMemoryShiftRepository returns a map-backed ShiftRepository. The user
// repository is consulted for the owner's name in listings, mirroring the
// SQL join.
func NewMemoryShiftRepository(users UserRepository) ShiftRepository {
	return &memoryShiftRepository{shifts: make(map[int64]domain.Shift), users: users}
}

func (r *memoryShiftRepository) Insert(_ context.Context, shift *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(shift)
	return nil
}

func (r *memoryShiftRepository) InsertUnlessBooked(_ context.Context, shift *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.shifts {
		if existing.UserID == shift.UserID && sameDate(existing.Date, shift.Date) {
			return ErrShiftTaken
		}
	}
	r.insertLocked(shift)
	return nil
}

func (r *memoryShiftRepository) insertLocked(shift *domain.Shift) {
	r.seq++
	shift.ID = r.seq
	now := time.Now()
	shift.CreatedAt = now
	shift.UpdatedAt = now
	r.shifts[shift.ID] = *shift
}

func (r *memoryShiftRepository) GetByID(_ context.Context, id int64) (*domain.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	shift, ok := r.shifts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &shift, nil
}

func (r *memoryShiftRepository) FindByUserAndDate(_ context.Context, userID int64, date time.Time) (*domain.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, shift := range r.shifts {
		if shift.UserID == userID && sameDate(shift.Date, date) {
			s := shift
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryShiftRepository) ListAll(ctx context.Context) ([]domain.ShiftWithUser, error) {
	r.mu.RLock()
	shifts := make([]domain.Shift, 0, len(r.shifts))
	for _, shift := range r.shifts {
		shifts = append(shifts, shift)
	}
	r.mu.RUnlock()

	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].Date.Equal(shifts[j].Date) {
			return shifts[i].Date.Before(shifts[j].Date)
		}
		return shifts[i].ID < shifts[j].ID
	})

	// Inner-join semantics: rows whose owner is gone are omitted, as in SQL.
	rows := make([]domain.ShiftWithUser, 0, len(shifts))
	for _, shift := range shifts {
		user, err := r.users.GetByID(ctx, shift.UserID)
		if err != nil {
			continue
		}
		rows = append(rows, domain.ShiftWithUser{Shift: shift, UserName: user.Name})
	}
	return rows, nil
}

func (r *memoryShiftRepository) ListByUser(_ context.Context, userID int64) ([]domain.Shift, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var shifts []domain.Shift
	for _, shift := range r.shifts {
		if shift.UserID == userID {
			shifts = append(shifts, shift)
		}
	}
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].Date.Equal(shifts[j].Date) {
			return shifts[i].Date.Before(shifts[j].Date)
		}
		return shifts[i].ID < shifts[j].ID
	})
	return shifts, nil
}

func (r *memoryShiftRepository) Update(_ context.Context, shift *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shifts[shift.ID]; !ok {
		return pgx.ErrNoRows
	}
	shift.UpdatedAt = time.Now()
	r.shifts[shift.ID] = *shift
	return nil
}

func (r *memoryShiftRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shifts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.shifts, id)
	return nil
}

func sameDate(a, b time.Time) bool {
	return a.Format(domain.DateLayout) == b.Format(domain.DateLayout)
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shift-service/internal/domain"
)

// ErrShiftTaken reports that the target user already holds a shift on the
// requested date.
var ErrShiftTaken = errors.New("user already has a shift on this date")

// ShiftRepository encapsulates shift persistence.
type ShiftRepository interface {
	Insert(ctx context.Context, shift *domain.Shift) error
	// InsertUnlessBooked inserts atomically only when the user holds no shift
	// on that date, returning ErrShiftTaken otherwise. A single conditional
	// statement, so two concurrent requests cannot both insert.
	InsertUnlessBooked(ctx context.Context, shift *domain.Shift) error
	GetByID(ctx context.Context, id int64) (*domain.Shift, error)
	FindByUserAndDate(ctx context.Context, userID int64, date time.Time) (*domain.Shift, error)
	ListAll(ctx context.Context) ([]domain.ShiftWithUser, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Shift, error)
	Update(ctx context.Context, shift *domain.Shift) error
	Delete(ctx context.Context, id int64) error
}

type shiftRepository struct {
	pool *pgxpool.Pool
}

// NewShiftRepository instantiates repository.
func NewShiftRepository(pool *pgxpool.Pool) ShiftRepository {
	return &shiftRepository{pool: pool}
}

func (r *shiftRepository) Insert(ctx context.Context, shift *domain.Shift) error {
	const query = `
        INSERT INTO shifts (user_id, date, start_time, end_time, status, shift_type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		shift.UserID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.Status,
		shift.Type,
	).Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt)
}

func (r *shiftRepository) InsertUnlessBooked(ctx context.Context, shift *domain.Shift) error {
	const query = `
        INSERT INTO shifts (user_id, date, start_time, end_time, status, shift_type)
        SELECT $1, $2, $3, $4, $5, $6
        WHERE NOT EXISTS (SELECT 1 FROM shifts WHERE user_id=$1 AND date=$2)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		shift.UserID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.Status,
		shift.Type,
	).Scan(&shift.ID, &shift.CreatedAt, &shift.UpdatedAt)
	if err == pgx.ErrNoRows {
		return ErrShiftTaken
	}
	return err
}

func (r *shiftRepository) GetByID(ctx context.Context, id int64) (*domain.Shift, error) {
	const query = `
        SELECT id, user_id, date, start_time, end_time, status, shift_type, created_at, updated_at
        FROM shifts WHERE id=$1`

	var shift domain.Shift
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&shift.ID,
		&shift.UserID,
		&shift.Date,
		&shift.StartTime,
		&shift.EndTime,
		&shift.Status,
		&shift.Type,
		&shift.CreatedAt,
		&shift.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepository) FindByUserAndDate(ctx context.Context, userID int64, date time.Time) (*domain.Shift, error) {
	const query = `
        SELECT id, user_id, date, start_time, end_time, status, shift_type, created_at, updated_at
        FROM shifts WHERE user_id=$1 AND date=$2`

	var shift domain.Shift
	if err := r.pool.QueryRow(ctx, query, userID, date).Scan(
		&shift.ID,
		&shift.UserID,
		&shift.Date,
		&shift.StartTime,
		&shift.EndTime,
		&shift.Status,
		&shift.Type,
		&shift.CreatedAt,
		&shift.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &shift, nil
}

// ListAll returns every shift joined with the owner's name, explicit join
// instead of any lazy association.
func (r *shiftRepository) ListAll(ctx context.Context) ([]domain.ShiftWithUser, error) {
	const query = `
        SELECT s.id, s.user_id, s.date, s.start_time, s.end_time, s.status, s.shift_type,
               s.created_at, s.updated_at, u.name
        FROM shifts s
        JOIN users u ON u.id = s.user_id
        ORDER BY s.date, s.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []domain.ShiftWithUser
	for rows.Next() {
		var row domain.ShiftWithUser
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Date,
			&row.StartTime,
			&row.EndTime,
			&row.Status,
			&row.Type,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.UserName,
		); err != nil {
			return nil, err
		}
		shifts = append(shifts, row)
	}
	return shifts, rows.Err()
}

func (r *shiftRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Shift, error) {
	const query = `
        SELECT id, user_id, date, start_time, end_time, status, shift_type, created_at, updated_at
        FROM shifts WHERE user_id=$1 ORDER BY date, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []domain.Shift
	for rows.Next() {
		var shift domain.Shift
		if err := rows.Scan(
			&shift.ID,
			&shift.UserID,
			&shift.Date,
			&shift.StartTime,
			&shift.EndTime,
			&shift.Status,
			&shift.Type,
			&shift.CreatedAt,
			&shift.UpdatedAt,
		); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

func (r *shiftRepository) Update(ctx context.Context, shift *domain.Shift) error {
	const query = `
        UPDATE shifts SET user_id=$1, date=$2, start_time=$3, end_time=$4, status=$5,
            shift_type=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		shift.UserID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.Status,
		shift.Type,
		shift.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shiftRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shifts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

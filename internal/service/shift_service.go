package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shift-service/internal/auth"
	"github.com/spec-kit/shift-service/internal/domain"
	"github.com/spec-kit/shift-service/internal/events"
	"github.com/spec-kit/shift-service/internal/repository"
	apperrors "github.com/spec-kit/shift-service/pkg/util/errorutil"
)

// ShiftService orchestrates the shift lifecycle: policy first, validation
// before any mutation, then persistence.
type ShiftService struct {
	shifts     repository.ShiftRepository
	dispatcher events.Dispatcher
}

// NewShiftService constructs the service.
func NewShiftService(shifts repository.ShiftRepository, dispatcher events.Dispatcher) *ShiftService {
	return &ShiftService{shifts: shifts, dispatcher: dispatcher}
}

// ShiftCreateInput describes shift creation payload. UserID nil means the
// caller is requesting a shift for themselves.
type ShiftCreateInput struct {
	UserID    *int64
	Date      string
	StartTime string
	EndTime   string
	ShiftType string
}

// ShiftPatch describes a partial shift update; nil fields are left alone.
// Times are never patched directly, only recomputed from the shift type.
type ShiftPatch struct {
	ShiftType *string
	Status    *string
	Date      *string
	UserID    *int64
}

// ShiftView is one row of the denormalized listing.
type ShiftView struct {
	domain.ShiftWithUser
	IsCurrentUser bool
}

// CreateShift records a new shift. Managers may create for any user, already
// approved; waiters request for themselves and may not hold two shifts on
// the same date.
func (s *ShiftService) CreateShift(ctx context.Context, session domain.Session, input ShiftCreateInput) (*domain.Shift, error) {
	targetID := session.UserID
	if input.UserID != nil {
		targetID = *input.UserID
	}

	if err := auth.Authorize(session, auth.ActionCreateShift, &auth.ShiftTarget{UserID: targetID}); err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(input.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date, expected YYYY-MM-DD")
	}
	shiftType, err := domain.ParseShiftType(input.ShiftType)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	start, end := input.StartTime, input.EndTime
	if start == "" && end == "" {
		start, end = shiftType.Times()
	} else {
		if start, err = domain.ParseTimeOfDay(start); err != nil {
			return nil, apperrors.NewValidationError("invalid start_time, expected HH:MM")
		}
		if end, err = domain.ParseTimeOfDay(end); err != nil {
			return nil, apperrors.NewValidationError("invalid end_time, expected HH:MM")
		}
	}

	status := domain.ShiftStatusRequested
	if session.IsManager() {
		status = domain.ShiftStatusApproved
	}

	shift := &domain.Shift{
		UserID:    targetID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    status,
		Type:      shiftType,
	}

	// Managers bypass the double-booking check entirely.
	if session.IsManager() {
		err = s.shifts.Insert(ctx, shift)
	} else {
		err = s.shifts.InsertUnlessBooked(ctx, shift)
	}
	if err != nil {
		if err == repository.ErrShiftTaken {
			return nil, apperrors.NewConflict("you already have a shift on this day")
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:  events.EventShiftCreated,
		Actor: session,
		Payload: events.ShiftCreatedPayload{
			ShiftID: shift.ID,
			UserID:  shift.UserID,
			Date:    shift.Date.Format(domain.DateLayout),
			Status:  shift.Status,
			Type:    shift.Type,
		},
	})
	return shift, nil
}

// ListShifts returns the full shift table with the owner's name, each row
// flagged when it belongs to the caller.
func (s *ShiftService) ListShifts(ctx context.Context, session domain.Session) ([]ShiftView, error) {
	if err := auth.Authorize(session, auth.ActionListShifts, nil); err != nil {
		return nil, err
	}

	rows, err := s.shifts.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ShiftView, 0, len(rows))
	for _, row := range rows {
		views = append(views, ShiftView{
			ShiftWithUser: row,
			IsCurrentUser: row.UserID == session.UserID,
		})
	}
	return views, nil
}

// UpdateShift applies a manager patch. A shift type in the patch recomputes
// the canonical times, overriding anything else supplied for that call.
func (s *ShiftService) UpdateShift(ctx context.Context, session domain.Session, id int64, patch ShiftPatch) (*domain.Shift, error) {
	if err := auth.Authorize(session, auth.ActionManageShift, nil); err != nil {
		return nil, err
	}

	shift, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("shift")
		}
		return nil, err
	}
	oldStatus := shift.Status

	if patch.ShiftType != nil {
		shiftType, err := domain.ParseShiftType(*patch.ShiftType)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		shift.Type = shiftType
		shift.StartTime, shift.EndTime = shiftType.Times()
	}
	if patch.Status != nil {
		status, err := domain.ParseShiftStatus(*patch.Status)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		shift.Status = status
	}
	if patch.Date != nil {
		date, err := domain.ParseDate(*patch.Date)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid date, expected YYYY-MM-DD")
		}
		shift.Date = date
	}
	if patch.UserID != nil {
		shift.UserID = *patch.UserID
	}

	if err := s.shifts.Update(ctx, shift); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("shift")
		}
		return nil, err
	}

	if shift.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:  events.EventShiftStatusChanged,
			Actor: session,
			Payload: events.ShiftStatusChangedPayload{
				ShiftID:   shift.ID,
				OldStatus: oldStatus,
				NewStatus: shift.Status,
			},
		})
	}
	return shift, nil
}

// DeleteShift removes a shift permanently.
func (s *ShiftService) DeleteShift(ctx context.Context, session domain.Session, id int64) error {
	if err := auth.Authorize(session, auth.ActionManageShift, nil); err != nil {
		return err
	}

	shift, err := s.shifts.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("shift")
		}
		return err
	}

	if err := s.shifts.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("shift")
		}
		return err
	}

	s.publish(ctx, events.Event{
		Type:  events.EventShiftDeleted,
		Actor: session,
		Payload: events.ShiftDeletedPayload{
			ShiftID: shift.ID,
			UserID:  shift.UserID,
		},
	})
	return nil
}

func (s *ShiftService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

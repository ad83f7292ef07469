package auth

import (
	"github.com/spec-kit/shift-service/internal/domain"
	apperrors "github.com/spec-kit/shift-service/pkg/util/errorutil"
)

// Action enumerates the operations subject to authorization.
type Action string

const (
	ActionManageUsers Action = "manage_users"
	ActionCreateShift Action = "create_shift"
	ActionListShifts  Action = "list_shifts"
	ActionManageShift Action = "manage_shift"
)

// ShiftTarget carries the target of a shift creation for policy evaluation.
type ShiftTarget struct {
	UserID int64
}

// Authorize is a pure decision function mapping (caller, action, target) to
// allow or deny. Deny is always a catchable FORBIDDEN error, never a no-op.
func Authorize(session domain.Session, action Action, target *ShiftTarget) error {
	switch action {
	case ActionManageUsers:
		if session.IsManager() {
			return nil
		}
		return apperrors.NewForbidden("manager role required")
	case ActionCreateShift:
		if session.IsManager() {
			return nil
		}
		if target != nil && target.UserID == session.UserID {
			return nil
		}
		return apperrors.NewForbidden("waiters may only request their own shifts")
	case ActionListShifts:
		// Any authenticated caller sees the full table.
		return nil
	case ActionManageShift:
		if session.IsManager() {
			return nil
		}
		return apperrors.NewForbidden("manager role required")
	default:
		return apperrors.NewForbidden("unknown action")
	}
}

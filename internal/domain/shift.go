package domain

import (
	"fmt"
	"time"
)

// ShiftStatus enumerates lifecycle states for shifts.
type ShiftStatus string

const (
	ShiftStatusRequested ShiftStatus = "requested"
	ShiftStatusApproved  ShiftStatus = "approved"
	ShiftStatusRejected  ShiftStatus = "rejected"
)

// ParseShiftStatus validates a raw status value.
func ParseShiftStatus(raw string) (ShiftStatus, error) {
	switch ShiftStatus(raw) {
	case ShiftStatusRequested, ShiftStatusApproved, ShiftStatusRejected:
		return ShiftStatus(raw), nil
	default:
		return "", fmt.Errorf("unknown shift status %q", raw)
	}
}

// ShiftType enumerates the canonical shift slots.
type ShiftType string

const (
	ShiftTypeMorning ShiftType = "morning"
	ShiftTypeEvening ShiftType = "evening"
	ShiftTypeDouble  ShiftType = "double"
)

// ParseShiftType validates a raw shift type value.
func ParseShiftType(raw string) (ShiftType, error) {
	switch ShiftType(raw) {
	case ShiftTypeMorning, ShiftTypeEvening, ShiftTypeDouble:
		return ShiftType(raw), nil
	default:
		return "", fmt.Errorf("unknown shift type %q", raw)
	}
}

// Times returns the canonical start/end pair for the shift type.
// The evening and double shifts end at 01:00 the next day.
func (t ShiftType) Times() (start, end string) {
	switch t {
	case ShiftTypeMorning:
		return "09:00", "17:00"
	case ShiftTypeEvening:
		return "17:00", "01:00"
	case ShiftTypeDouble:
		return "09:00", "01:00"
	default:
		return "", ""
	}
}

const (
	// DateLayout is the wire format for shift dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for times of day.
	TimeLayout = "15:04"
)

// ParseDate parses a calendar date in the wire format.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}

// ParseTimeOfDay validates an HH:MM time string and returns it normalized.
func ParseTimeOfDay(raw string) (string, error) {
	t, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return "", err
	}
	return t.Format(TimeLayout), nil
}

// Shift is a scheduled work interval for one user on one calendar date.
type Shift struct {
	ID        int64
	UserID    int64
	Date      time.Time
	StartTime string
	EndTime   string
	Status    ShiftStatus
	Type      ShiftType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShiftWithUser is the denormalized listing row, joined with the owner's name.
type ShiftWithUser struct {
	Shift
	UserName string
}

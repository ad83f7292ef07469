package dto

// ShiftCreateRequest payload for POST /shifts. UserID is optional; waiters
// default to themselves. Times may be omitted when a shift type is given.
type ShiftCreateRequest struct {
	UserID    *int64 `json:"user_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	ShiftType string `json:"shift_type"`
}

// ShiftUpdateRequest payload for PUT /shifts/:id; nil fields are untouched.
// Start and end times follow the shift type and are not directly patchable.
type ShiftUpdateRequest struct {
	ShiftType *string `json:"shift_type"`
	Status    *string `json:"status"`
	Date      *string `json:"date"`
	UserID    *int64  `json:"user_id"`
}

// ShiftResponse is one row of GET /shifts.
type ShiftResponse struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	UserName      string `json:"user_name"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	ShiftType     string `json:"shift_type"`
	IsCurrentUser bool   `json:"is_current_user"`
}

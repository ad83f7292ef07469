package domain

// Session is the resolved caller identity for one request. It is passed
// explicitly into every service call rather than read from ambient state.
type Session struct {
	UserID int64
	Role   Role
}

// IsManager reports whether the session belongs to a manager.
func (s Session) IsManager() bool {
	return s.Role == RoleManager
}

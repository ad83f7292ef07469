package dto

// LoginRequest payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the authenticated identity and session token.
type LoginResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Token   string `json:"token"`
}

// UserCreateRequest payload for POST /users.
type UserCreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// UserUpdateRequest payload for PUT /users/:id; nil fields are untouched.
type UserUpdateRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// UserResponse is one row of GET /users.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

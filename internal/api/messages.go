package api

type Empty struct{}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age,omitempty"`
	Address  string `json:"address,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RoleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Age     int     `json:"age,omitempty"`
	Address string  `json:"address,omitempty"`
	Role    RoleRef `json:"role"`
}

// SessionResponse carries the access token in the body. The refresh token
// travels in the refresh_token response header.
type SessionResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type UserResponse struct {
	User User `json:"user"`
}

// GetUserRequest addresses a user by id; an empty id means the caller.
type GetUserRequest struct {
	ID string `json:"id,omitempty"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age,omitempty"`
	Address  string `json:"address,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest is a partial update; absent fields stay unchanged.
type UpdateUserRequest struct {
	ID      string  `json:"id"`
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Age     *int    `json:"age,omitempty"`
	Address *string `json:"address,omitempty"`
	Role    *string `json:"role,omitempty"`
}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

type PingResponse struct {
	Status string `json:"status"`
}

package models

import "time"

// Actor identifies the user performing a mutation. It is stamped into the
// audit fields of the records it touches.
type Actor struct {
	ID    string
	Email string
}

// Deletion is the soft-delete mark of a record. A user with a non-nil
// Deletion is invisible to every active lookup but is never removed.
type Deletion struct {
	By Actor
	At time.Time
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          int
	Address      string
	Role         Role
	RefreshToken string
	CreatedBy    *Actor
	UpdatedBy    *Actor
	Deleted      *Deletion
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsDeleted reports whether the record carries a soft-delete mark.
func (u *User) IsDeleted() bool {
	return u.Deleted != nil
}

// Actor returns the audit reference for u.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Email: u.Email}
}

// Public returns the outward view of u, without the password hash or the
// refresh token.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role.Ref(),
	}
}

// PublicProfile is what callers see of a user.
type PublicProfile struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  RoleRef `json:"role"`
}

// Profile is the input of registration and administrative creation.
// Role is a role name and is only honoured by administrative creation.
type Profile struct {
	Name     string
	Email    string
	Password string
	Age      int
	Address  string
	Role     string
}

// UserPatch is a partial update addressed by ID. Nil fields are left as is.
type UserPatch struct {
	ID      string
	Name    *string
	Email   *string
	Age     *int
	Address *string
	Role    *string
}

package models

// Role is a resolved role record.
type Role struct {
	ID          string
	Name        string
	Permissions []string
}

// RoleRef is the weak reference to a role carried in tokens and profiles.
type RoleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r Role) Ref() RoleRef {
	return RoleRef{ID: r.ID, Name: r.Name}
}

// Well-known role names.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

package domain

import "time"

// UserRole enumerates dealership operator roles.
type UserRole string

const (
	RoleSuperadmin UserRole = "superadmin"
	RoleManager    UserRole = "manager"
	RoleSales      UserRole = "sales"
)

// User models a dealership staff account.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	Role         UserRole
	AvatarURL    *string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName concatenates first and last name for display and audit entries.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

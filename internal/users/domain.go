package users

import "time"

// User is an account known to the host. The core never creates or deletes users
// through the admin surface; it reads them and manages their role memberships.
type User struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Roles       []string  `json:"roles"`
	CreatedAt   time.Time `json:"created_at"`
}

// Name returns the display name, falling back to the login.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Login
}

// ListFilters narrows ListUsers.
type ListFilters struct {
	Role    string
	Search  string
	Page    int
	PerPage int
}

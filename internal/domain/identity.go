package domain

// UserRef is the identity payload carried by signed tokens.
type UserRef struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Identity is the resolved caller of a request: either an authenticated
// user or an anonymous guest, never both.
type Identity struct {
	User    *UserRef
	GuestID string
}

// IsUser reports whether the identity belongs to an authenticated user.
func (i Identity) IsUser() bool {
	return i.User != nil
}

// IsAdmin reports whether the identity is an authenticated admin.
func (i Identity) IsAdmin() bool {
	return i.User != nil && i.User.Role == RoleAdmin
}

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

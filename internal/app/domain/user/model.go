package user

// Role distinguishes ordinary shoppers from store administrators.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the authenticated account as returned by the backend. It lives
// only for the duration of the session and is discarded on logout.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user may call admin operations.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

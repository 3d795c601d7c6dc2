package model

// Roles recognised in access tokens.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Session is the authenticated caller of a request.  It is built by the JWT
// middleware and passed explicitly to everything that talks to the backend
// on the caller's behalf; nothing reads credentials from global state.
type Session struct {
	UserID string
	Role   string
	Token  string // raw bearer token forwarded to the backend
}

// IsAdmin reports whether the session carries the ADMIN role.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

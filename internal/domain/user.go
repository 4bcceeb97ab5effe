package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the authenticated identity returned by /auth/login.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// AuthResult carries the credential and identity issued by a successful login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

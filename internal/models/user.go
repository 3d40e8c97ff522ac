package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       int64  `json:"user_id" db:"user_id"`
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
	Role     string `json:"role" db:"role"`
}

// Caller is the identity/role pair resolved by the access gate. The
// services layer trusts it as-is; credentials are never re-validated
// past the gate.
type Caller struct {
	UserID int64
	Role   string
}

package domain

// UserRole controls whether sensitive item fields may be edited without an
// audit reason.
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleSalesperson UserRole = "salesperson"
)

// User is a cached copy of a remote account. Authentication itself is
// delegated to the remote backend; this row only serves offline display
// and audit attribution.
type User struct {
	ID        string   `json:"id" db:"id"`
	Email     string   `json:"email" db:"email"`
	FullName  string   `json:"full_name" db:"full_name"`
	Role      UserRole `json:"role" db:"role"`
	CreatedAt string   `json:"created_at" db:"created_at"`
}

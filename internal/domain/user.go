package domain

import "time"

// Role enumerates the single role an actor holds. Roles form a total order
// used for authorization checks: user < render < admin.
type Role string

const (
	RoleUser   Role = "user"
	RoleRender Role = "render"
	RoleAdmin  Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:   1,
	RoleRender: 2,
	RoleAdmin:  3,
}

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role grants at least the capabilities of min.
// Unknown roles rank below every valid role.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// User is an actor account. A user with RoleRender is a reader offering
// paid tarot sessions.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	Phone        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsReader reports whether the user can be booked for sessions.
func (u *User) IsReader() bool {
	return u.Role == RoleRender
}

// UpgradeRecord captures a paid role upgrade (user -> render).
type UpgradeRecord struct {
	ID        string
	UserID    string
	FromRole  Role
	ToRole    Role
	AmountVND int64
	CreatedAt time.Time
}

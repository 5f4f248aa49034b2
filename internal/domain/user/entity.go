package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// User represents an account with its marketplace ledger balances.
// Credit is money received from sales, debit money spent on purchases;
// both are mutated only inside the purchase transaction.
type User struct {
	ID           uuid.UUID    `db:"id"`
	Username     string       `db:"username"`
	PasswordHash string       `db:"password_hash"`
	Role         Role         `db:"role"`
	Disabled     bool         `db:"disabled"`
	Credit       int64        `db:"credit"`
	Debit        int64        `db:"debit"`
	LastLoginAt  sql.NullTime `db:"last_login_at"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// IsSeller returns true if the user may list images for sale
func (u *User) IsSeller() bool {
	return u.Role == RoleSeller || u.Role == RoleAdmin
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive returns true if the account is not disabled
func (u *User) IsActive() bool {
	return !u.Disabled
}

// Balance returns credit minus debit
func (u *User) Balance() int64 {
	return u.Credit - u.Debit
}

// IsValidRole checks if role is a known role value
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

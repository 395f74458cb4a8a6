package domain

import "time"

const (
	RoleSeller   = "SELLER"
	RoleCustomer = "CUSTOMER"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Hash      string    `db:"password_hash" json:"-"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Identity is what the identity provider hands back after authentication.
type Identity struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

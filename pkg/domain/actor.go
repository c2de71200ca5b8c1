package domain

// Role determines how far an actor can see into the ledger.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role is one the system knows.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Unrestricted reports whether the role sees every purchase.
func (r Role) Unrestricted() bool {
	return r == RoleAdmin || r == RoleManager
}

// Actor is the authenticated caller: identity plus role. It is the sole
// input to visibility scoping; nothing else about a request influences row
// access.
type Actor struct {
	ID   UserID
	Role Role
}

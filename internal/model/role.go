package model

import "strings"

// Role is the closed set of actor roles.  Authorization decisions switch
// on these values rather than comparing raw request strings.
type Role string

const (
    RoleCustomer Role = "customer"
    RoleStaff    Role = "staff"
    RoleManager  Role = "manager"
    RoleAdmin    Role = "admin"
)

// ParseRole normalizes a stored or claimed role string into a Role.  The
// second return value is false for anything outside the known set.
func ParseRole(s string) (Role, bool) {
    switch Role(strings.ToLower(strings.TrimSpace(s))) {
    case RoleCustomer:
        return RoleCustomer, true
    case RoleStaff:
        return RoleStaff, true
    case RoleManager:
        return RoleManager, true
    case RoleAdmin:
        return RoleAdmin, true
    }
    return "", false
}

// Staff reports whether the role belongs to restaurant personnel.  Staff,
// managers and admins share the staff-side reservation operations.
func (r Role) Staff() bool {
    return r == RoleStaff || r == RoleManager || r == RoleAdmin
}

// Actor is the authenticated caller of a service operation, extracted
// from the access token by middleware.
type Actor struct {
    ID   CustomerID // users.id of the caller
    Role Role
}

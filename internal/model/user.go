package model

import "time"

// User represents an account record in the `users` table.  Both
// customers and restaurant personnel live here, distinguished by Role.
// Handlers define separate response types with JSON tags; this struct
// is used by the repository layer only.
//
// Fields:
//  ID           – primary key identifier of the account.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – account role (customer, staff, manager, admin).
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           CustomerID // users.id
    Name         string     // users.name
    Email        string     // users.email
    PasswordHash string     // users.password_hash
    Role         Role       // users.role
    IsActive     bool       // users.is_active
    CreatedAt    time.Time  // users.created_at
    UpdatedAt    time.Time  // users.updated_at
}

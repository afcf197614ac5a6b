package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/pizzas505/table-reservation/internal/model"
    "github.com/pizzas505/table-reservation/internal/utils"
)

// UserRepo persists accounts in the `users` table.  Customers register
// themselves; staff/manager/admin accounts are created by admins.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts an account and returns its ID.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, role model.Role, cost int) (model.CustomerID, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
        name, email, hash, string(role))
    if err != nil {
        if isDuplicateKey(err) {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return model.CustomerID(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return r.getOne(ctx,
        "SELECT id,name,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
        email)
}

// GetByID fetches an account by id.
func (r *UserRepo) GetByID(ctx context.Context, id model.CustomerID) (model.User, error) {
    return r.getOne(ctx,
        "SELECT id,name,email,password_hash,role,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
        uint64(id))
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
    var (
        u    model.User
        role string
    )
    err := r.DB.QueryRowContext(ctx, q, arg).Scan(
        &u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
    if err != nil {
        return model.User{}, err
    }
    parsed, ok := model.ParseRole(role)
    if !ok {
        parsed = model.RoleCustomer
    }
    u.Role = parsed
    return u, nil
}

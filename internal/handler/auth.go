package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/pizzas505/table-reservation/internal/config"
    "github.com/pizzas505/table-reservation/internal/model"
    "github.com/pizzas505/table-reservation/internal/repository"
    "github.com/pizzas505/table-reservation/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
    Cfg   config.Config
    Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
    if u == nil {
        panic("nil repository passed to NewAuthHandler")
    }
    return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type userPart struct {
    ID    uint64 `json:"id"`
    Name  string `json:"name"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

// Register creates a customer account and returns a token immediately.
// Self-registration always yields the customer role; staff accounts are
// provisioned out of band.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Name == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, model.RoleCustomer, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uint64(uid), string(model.RoleCustomer), h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }

    return c.JSON(http.StatusCreated, authResp{
        User:    userPart{ID: uint64(uid), Name: req.Name, Email: req.Email, Role: string(model.RoleCustomer)},
        Token:   access.Token,
        Expires: access.Exp,
    })
}

// Login verifies credentials and returns a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uint64(u.ID), string(u.Role), h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
    }

    return c.JSON(http.StatusOK, authResp{
        User:    userPart{ID: uint64(u.ID), Name: u.Name, Email: u.Email, Role: string(u.Role)},
        Token:   access.Token,
        Expires: access.Exp,
    })
}

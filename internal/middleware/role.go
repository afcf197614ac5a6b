package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/pizzas505/table-reservation/internal/model"
)

// RequireRole aborts the request with 403 unless the authenticated
// user's role is one of the given roles.  It assumes JWTAuth already
// ran and stored the "role" claim in the context.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v, _ := c.Get("role").(string)
            role, ok := model.ParseRole(v)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}

// RequireStaff is RequireRole for any of the staff-side roles.
func RequireStaff() echo.MiddlewareFunc {
    return RequireRole(model.RoleStaff, model.RoleManager, model.RoleAdmin)
}

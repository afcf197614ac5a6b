package router // route registration for the reservation API

import (
    "github.com/labstack/echo/v4"

    "github.com/pizzas505/table-reservation/internal/handler"
    "github.com/pizzas505/table-reservation/internal/middleware"
    "github.com/pizzas505/table-reservation/internal/model"
)

// RegisterRoutes registers the unauthenticated service routes: the
// health check, the availability projection, the policy listing and the
// reference lookup.
func RegisterRoutes(e *echo.Echo, av *handler.AvailabilityHandler, rh *handler.ReservationHandler, ph *handler.PolicyHandler) {
    e.GET("/healthz", handler.Health)
    e.GET("/v1/availability", av.Get)
    e.GET("/v1/policies", ph.List)
    // Confirmation view: the reference token is the credential.
    e.GET("/v1/reservations/lookup/:ref", rh.Lookup)
}

// RegisterAuth registers the register/login endpoints under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
}

// RegisterCustomer registers the booking endpoints for authenticated
// customers under /v1/reservations.  Staff roles pass too; the service
// layer applies ownership rules per role.
func RegisterCustomer(e *echo.Echo, rh *handler.ReservationHandler, jwtSecret string) {
    g := e.Group("/v1/reservations")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleStaff, model.RoleManager, model.RoleAdmin))
    g.POST("", rh.Create)
    g.GET("", rh.List)
    g.GET("/:ref", rh.Get)
    g.PATCH("/:ref", rh.Modify)
    g.POST("/:ref/cancel", rh.Cancel)
}

// RegisterStaff registers the floor-management endpoints under
// /v1/staff.  Only staff, manager and admin roles pass the middleware.
func RegisterStaff(e *echo.Echo, sh *handler.StaffHandler, jwtSecret string) {
    g := e.Group("/v1/staff")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireStaff())
    g.GET("/reservations", sh.List)
    g.POST("/reservations", sh.Create)
    g.POST("/reservations/:id/reassign", sh.Reassign)
    g.POST("/reservations/:id/seated", sh.Seated)
    g.POST("/reservations/:id/no-show", sh.NoShow)
    g.POST("/reservations/:id/complete", sh.Complete)
    g.GET("/tables", sh.Tables)
}

package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/pizzas505/table-reservation/internal/model"
)

// PolicyLister supplies the cutoff policy rows for the public view.
// *repository.PolicyRepo implements it.
type PolicyLister interface {
    Policies(ctx context.Context) ([]model.Policy, error)
}

// PolicyHandler serves the guest-facing policy listing so clients can
// show the cancellation/modification terms before booking.
type PolicyHandler struct {
    Policies PolicyLister
}

func NewPolicyHandler(p PolicyLister) *PolicyHandler {
    if p == nil {
        panic("nil policy lister passed to NewPolicyHandler")
    }
    return &PolicyHandler{Policies: p}
}

type policyView struct {
    Kind        string `json:"kind"`
    HoursBefore int    `json:"hours_before"`
    Description string `json:"description,omitempty"`
}

// List handles GET /v1/policies.
func (h *PolicyHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    policies, err := h.Policies.Policies(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    out := make([]policyView, 0, len(policies))
    for _, p := range policies {
        out = append(out, policyView{
            Kind:        string(p.Kind),
            HoursBefore: p.HoursBefore,
            Description: p.Description,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"policies": out})
}

package handler // handler defines the HTTP endpoints

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/pizzas505/table-reservation/internal/model"
    "github.com/pizzas505/table-reservation/internal/service"
)

// dbTimeout bounds every request-scoped database interaction.
const dbTimeout = 5 * time.Second

// getActor extracts the authenticated caller from the context values
// set by the JWT middleware.  JWT numeric claims decode as float64, so
// the type switch covers the encodings we may see.
func getActor(c echo.Context) (model.Actor, error) {
    var id uint64
    switch t := c.Get("user_id").(type) {
    case uint64:
        id = t
    case int:
        id = uint64(t)
    case int64:
        id = uint64(t)
    case float64:
        id = uint64(t)
    case string:
        n, err := strconv.ParseUint(t, 10, 64)
        if err != nil {
            return model.Actor{}, errors.New("invalid user_id in context")
        }
        id = n
    default:
        return model.Actor{}, errors.New("missing user_id in context")
    }
    roleStr, _ := c.Get("role").(string)
    role, ok := model.ParseRole(roleStr)
    if !ok {
        return model.Actor{}, errors.New("invalid role in context")
    }
    return model.Actor{ID: model.CustomerID(id), Role: role}, nil
}

// parseDateTime combines a "YYYY-MM-DD" date and an "HH:MM" time into
// an instant in the restaurant's zone.
func parseDateTime(date, tm string, loc *time.Location) (time.Time, error) {
    return time.ParseInLocation("2006-01-02 15:04", date+" "+tm, loc)
}

// reservationView is the JSON shape every endpoint returns for a
// reservation.
type reservationView struct {
    ID           uint64  `json:"id"`
    ReferenceID  string  `json:"reference_id"`
    CustomerID   *uint64 `json:"customer_id,omitempty"`
    CustomerName string  `json:"customer_name"`
    Contact      string  `json:"contact"`
    TableID      uint64  `json:"table_id"`
    Date         string  `json:"date"`
    Time         string  `json:"time"`
    PartySize    int     `json:"party_size"`
    Status       string  `json:"status"`
    Notes        string  `json:"notes,omitempty"`
    CreatedAt    string  `json:"created_at"`
    ModifiedAt   string  `json:"modified_at"`
}

func toView(r *model.Reservation) reservationView {
    v := reservationView{
        ID:           uint64(r.ID),
        ReferenceID:  string(r.ReferenceID),
        CustomerName: r.CustomerName,
        Contact:      r.Contact,
        TableID:      uint64(r.TableID),
        Date:         r.DateTime.Format("2006-01-02"),
        Time:         r.DateTime.Format("15:04"),
        PartySize:    r.PartySize,
        Status:       string(r.Status),
        Notes:        r.Notes,
        CreatedAt:    r.CreatedAt.Format(time.RFC3339),
        ModifiedAt:   r.ModifiedAt.Format(time.RFC3339),
    }
    if r.CustomerID != nil {
        id := uint64(*r.CustomerID)
        v.CustomerID = &id
    }
    return v
}

func toViews(rs []model.Reservation) []reservationView {
    out := make([]reservationView, 0, len(rs))
    for i := range rs {
        out = append(out, toView(&rs[i]))
    }
    return out
}

// serviceError maps the service's tagged error kinds onto HTTP
// responses.  Validation rejections are 422, state and slot conflicts
// 409, the rest as expected.  Unrecognized errors become opaque 500s.
func serviceError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, service.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
    case errors.Is(err, service.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, service.ErrUnknownTable):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown table"})
    case errors.Is(err, service.ErrPastTime):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "requested time is in the past"})
    case errors.Is(err, service.ErrOutsideHours):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "outside business hours"})
    case errors.Is(err, service.ErrCapacityExceeded):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "party size exceeds table capacity"})
    case errors.Is(err, service.ErrCutoffPassed):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "too close to the reservation time"})
    case errors.Is(err, service.ErrTableConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "table already reserved for that time"})
    case errors.Is(err, service.ErrNotModifiable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "reservation can no longer be modified"})
    case errors.Is(err, service.ErrNotCancelable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "reservation can no longer be cancelled"})
    case errors.Is(err, service.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

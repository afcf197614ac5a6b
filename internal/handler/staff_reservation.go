package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/pizzas505/table-reservation/internal/clock"
    "github.com/pizzas505/table-reservation/internal/model"
    "github.com/pizzas505/table-reservation/internal/service"
)

// StaffHandler serves the staff-side endpoints: floor listings, walk-in
// creation, reassignment and lifecycle transitions.
type StaffHandler struct {
    Svc   *service.ReservationService
    Clock clock.Clock
}

func NewStaffHandler(svc *service.ReservationService, clk clock.Clock) *StaffHandler {
    if svc == nil || clk == nil {
        panic("nil dependency passed to NewStaffHandler")
    }
    return &StaffHandler{Svc: svc, Clock: clk}
}

// List handles GET /v1/staff/reservations.  With ?date=YYYY-MM-DD it
// returns that local day's bookings in seating order, otherwise all.
func (h *StaffHandler) List(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    var out []model.Reservation
    if d := strings.TrimSpace(c.QueryParam("date")); d != "" {
        day, perr := time.ParseInLocation("2006-01-02", d, h.Clock.Location())
        if perr != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
        }
        out, err = h.Svc.ListByDate(ctx, day, actor)
    } else {
        out, err = h.Svc.ListAll(ctx, actor)
    }
    if err != nil {
        return serviceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": toViews(out)})
}

// Create handles POST /v1/staff/reservations: a walk-in booking with no
// owning account.  Validation is identical to the customer path.
func (h *StaffHandler) Create(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req bookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.CustomerName = strings.TrimSpace(req.CustomerName)
    req.Contact = strings.TrimSpace(req.Contact)
    if req.CustomerName == "" || req.Contact == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_name/contact required"})
    }
    if req.TableID == 0 || req.PartySize <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id and party_size required"})
    }
    at, err := parseDateTime(req.Date, req.Time, h.Clock.Location())
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date/time"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    res, err := h.Svc.Create(ctx, service.CreateInput{
        CustomerName: req.CustomerName,
        Contact:      req.Contact,
        TableID:      model.TableID(req.TableID),
        DateTime:     at,
        PartySize:    req.PartySize,
        Notes:        req.Notes,
    }, actor)
    if err != nil {
        return serviceError(c, err)
    }
    return c.JSON(http.StatusCreated, toView(res))
}

// Reassign handles POST /v1/staff/reservations/:id/reassign.  Moves a
// booking to a new table and/or time; only the conflict rule applies.
func (h *StaffHandler) Reassign(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := reservationIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    var req struct {
        TableID uint64 `json:"table_id"`
        Date    string `json:"date"`
        Time    string `json:"time"`
    }
    if err := c.Bind(&req); err != nil || req.TableID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id required"})
    }
    at, err := parseDateTime(req.Date, req.Time, h.Clock.Location())
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date/time"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Svc.Reassign(ctx, id, model.TableID(req.TableID), at, actor); err != nil {
        return serviceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "reassigned"})
}

// Seated handles POST /v1/staff/reservations/:id/seated.
func (h *StaffHandler) Seated(c echo.Context) error {
    return h.transition(c, h.Svc.MarkSeated, "seated")
}

// NoShow handles POST /v1/staff/reservations/:id/no-show.
func (h *StaffHandler) NoShow(c echo.Context) error {
    return h.transition(c, h.Svc.MarkNoShow, "no-show")
}

// Complete handles POST /v1/staff/reservations/:id/complete.
func (h *StaffHandler) Complete(c echo.Context) error {
    return h.transition(c, h.Svc.Complete, "completed")
}

func (h *StaffHandler) transition(c echo.Context, op func(context.Context, model.ReservationID, model.Actor) error, status string) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := reservationIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := op(ctx, id, actor); err != nil {
        return serviceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"status": status})
}

// Tables handles GET /v1/staff/tables: the floor plan with pricing.
func (h *StaffHandler) Tables(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    tables, err := h.Svc.Tables(ctx)
    if err != nil {
        return serviceError(c, err)
    }
    out := make([]tableView, 0, len(tables))
    for _, t := range tables {
        out = append(out, toTableView(t))
    }
    return c.JSON(http.StatusOK, echo.Map{"tables": out})
}

func reservationIDParam(c echo.Context) (model.ReservationID, error) {
    n, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || n == 0 {
        return 0, strconv.ErrSyntax
    }
    return model.ReservationID(n), nil
}

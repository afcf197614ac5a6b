package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/pizzas505/table-reservation/internal/clock"
    "github.com/pizzas505/table-reservation/internal/model"
    "github.com/pizzas505/table-reservation/internal/service"
)

// ReservationHandler serves the customer-facing booking endpoints and
// the unauthenticated reference lookup.  Authentication and role checks
// happen in middleware; ownership is enforced by the service.
type ReservationHandler struct {
    Svc   *service.ReservationService
    Clock clock.Clock
}

func NewReservationHandler(svc *service.ReservationService, clk clock.Clock) *ReservationHandler {
    if svc == nil || clk == nil {
        panic("nil dependency passed to NewReservationHandler")
    }
    return &ReservationHandler{Svc: svc, Clock: clk}
}

// bookingReq is shared by create and modify.  Date and Time are split
// fields, interpreted in the restaurant's zone.
type bookingReq struct {
    CustomerName string `json:"customer_name"`
    Contact      string `json:"contact"`
    TableID      uint64 `json:"table_id"`
    Date         string `json:"date"` // YYYY-MM-DD
    Time         string `json:"time"` // HH:MM
    PartySize    int    `json:"party_size"`
    Notes        string `json:"notes"`
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
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

// List handles GET /v1/reservations: the caller's own bookings, newest
// first.
func (h *ReservationHandler) List(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    out, err := h.Svc.ListForCustomer(ctx, actor.ID, actor)
    if err != nil {
        return serviceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": toViews(out)})
}

// Get handles GET /v1/reservations/:ref.
func (h *ReservationHandler) Get(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ref := model.ReferenceID(strings.TrimSpace(c.Param("ref")))
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    res, err := h.Svc.GetByReference(ctx, ref, actor)
    if err != nil {
        return serviceError(c, err)
    }
    return c.JSON(http.StatusOK, toView(res))
}

// Modify handles PATCH /v1/reservations/:ref.  The body carries the
// full mutable set: table, date, time, party size and notes.
func (h *ReservationHandler) Modify(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ref := model.ReferenceID(strings.TrimSpace(c.Param("ref")))
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
    }
    var req bookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
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

    res, err := h.Svc.Modify(ctx, ref, service.Changes{
        TableID:   model.TableID(req.TableID),
        DateTime:  at,
        PartySize: req.PartySize,
        Notes:     req.Notes,
    }, actor)
    if err != nil {
        return serviceError(c, err)
    }
    return c.JSON(http.StatusOK, toView(res))
}

// Cancel handles POST /v1/reservations/:ref/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    actor, err := getActor(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ref := model.ReferenceID(strings.TrimSpace(c.Param("ref")))
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Svc.Cancel(ctx, ref, actor); err != nil {
        return serviceError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
}

// Lookup handles GET /v1/reservations/lookup/:ref — the confirmation
// view.  No login: the random reference token is the credential.
func (h *ReservationHandler) Lookup(c echo.Context) error {
    ref := model.ReferenceID(strings.TrimSpace(c.Param("ref")))
    if ref == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reference required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    res, err := h.Svc.Lookup(ctx, ref)
    if err != nil {
        return serviceError(c, err)
    }
    return c.JSON(http.StatusOK, toView(res))
}

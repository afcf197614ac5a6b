package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/pizzas505/table-reservation/internal/clock"
    "github.com/pizzas505/table-reservation/internal/model"
    "github.com/pizzas505/table-reservation/internal/service"
)

// AvailabilityHandler serves the public availability projection.
type AvailabilityHandler struct {
    Svc   *service.ReservationService
    Clock clock.Clock
}

func NewAvailabilityHandler(svc *service.ReservationService, clk clock.Clock) *AvailabilityHandler {
    if svc == nil || clk == nil {
        panic("nil dependency passed to NewAvailabilityHandler")
    }
    return &AvailabilityHandler{Svc: svc, Clock: clk}
}

// defaultSeatingTime fills in for requests that only pick a date.
const defaultSeatingTime = "18:00"

type tableView struct {
    ID          uint64 `json:"id"`
    TableNumber string `json:"table_number"`
    Capacity    int    `json:"capacity"`
    Zone        string `json:"zone"`
    PriceCents  int64  `json:"price_cents"`
}

func toTableView(t model.Table) tableView {
    return tableView{
        ID:          uint64(t.ID),
        TableNumber: t.TableNumber,
        Capacity:    t.Capacity,
        Zone:        t.Zone,
        PriceCents:  t.TotalPriceCents(),
    }
}

type availabilityRow struct {
    Table     tableView `json:"table"`
    Available bool      `json:"available"`
}

// Get handles GET /v1/availability?date=YYYY-MM-DD&time=HH:MM&party_size=N.
// Date defaults to today, time to 18:00, party_size to unfiltered.
func (h *AvailabilityHandler) Get(c echo.Context) error {
    date := strings.TrimSpace(c.QueryParam("date"))
    if date == "" {
        date = h.Clock.Now().In(h.Clock.Location()).Format("2006-01-02")
    }
    tm := strings.TrimSpace(c.QueryParam("time"))
    if tm == "" {
        tm = defaultSeatingTime
    }
    at, err := parseDateTime(date, tm, h.Clock.Location())
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date/time"})
    }

    partySize := 0
    if p := strings.TrimSpace(c.QueryParam("party_size")); p != "" {
        n, perr := strconv.Atoi(p)
        if perr != nil || n <= 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid party_size"})
        }
        partySize = n
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    rows, err := h.Svc.Availability(ctx, at, partySize)
    if err != nil {
        return serviceError(c, err)
    }

    out := make([]availabilityRow, 0, len(rows))
    for _, r := range rows {
        out = append(out, availabilityRow{Table: toTableView(r.Table), Available: r.Available})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "date":       date,
        "time":       tm,
        "party_size": partySize,
        "tables":     out,
    })
}

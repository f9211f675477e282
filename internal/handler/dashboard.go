package handler

import (
    "context"
    "log/slog"
    "net/http"

    "github.com/labstack/echo/v4"
)

// StatusCounter counts accounts per account status label.
type StatusCounter interface {
    CountByStatus(ctx context.Context) (map[string]int, error)
}

// DashboardHandler serves aggregate figures for staff dashboards.
type DashboardHandler struct {
    Users          StatusCounter
    Attractions    ActiveCounter
    Activities     ActiveCounter
    Accommodations ActiveCounter
    Log            *slog.Logger
}

type dashboardStats struct {
    UsersByStatus  map[string]int `json:"users_by_status"`
    TotalUsers     int            `json:"total_users"`
    Attractions    int            `json:"active_attractions"`
    Activities     int            `json:"active_activities"`
    Accommodations int            `json:"active_accommodations"`
}

func (h *DashboardHandler) Stats(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    byStatus, err := h.Users.CountByStatus(ctx)
    if err != nil {
        return respondError(c, h.Log, err)
    }
    out := dashboardStats{UsersByStatus: byStatus}
    for _, n := range byStatus {
        out.TotalUsers += n
    }
    for _, x := range []struct {
        counter ActiveCounter
        dst     *int
    }{
        {h.Attractions, &out.Attractions},
        {h.Activities, &out.Activities},
        {h.Accommodations, &out.Accommodations},
    } {
        n, err := x.counter.CountActive(ctx)
        if err != nil {
            return respondError(c, h.Log, err)
        }
        *x.dst = n
    }
    return c.JSON(http.StatusOK, out)
}

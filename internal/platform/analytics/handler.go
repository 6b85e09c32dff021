package analytics

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/claimwise/claimwise/internal/platform/auth"
)

const defaultWindowDays = 30

type Handler struct {
	svc *Service
	now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/analytics", auth.RequireRole(auth.RolePayerProcessor))
	g.GET("/overview", h.GetOverview)
	g.GET("/trends", h.GetTrends)
}

func (h *Handler) GetOverview(c echo.Context) error {
	from, to, err := h.window(c)
	if err != nil {
		return err
	}
	ov, err := h.svc.Overview(c.Request().Context(), from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ov)
}

func (h *Handler) GetTrends(c echo.Context) error {
	from, to, err := h.window(c)
	if err != nil {
		return err
	}
	points, err := h.svc.Trends(c.Request().Context(), from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, points)
}

// window parses start_date and end_date query parameters into a half-open
// [from, to) range, defaulting to the trailing 30 days ending today. Each
// bound may be a calendar date or a full RFC 3339 timestamp; a date-only
// end bound is inclusive of that day, a timestamp is used as given.
func (h *Handler) window(c echo.Context) (from, to time.Time, err error) {
	today := h.now().UTC().Truncate(24 * time.Hour)
	to = today.AddDate(0, 0, 1)
	from = to.AddDate(0, 0, -defaultWindowDays)

	if s := c.QueryParam("start_date"); s != "" {
		from, _, err = parseDateParam(s)
		if err != nil {
			return from, to, echo.NewHTTPError(http.StatusBadRequest, "start_date must be a YYYY-MM-DD date or an RFC 3339 timestamp")
		}
	}
	if s := c.QueryParam("end_date"); s != "" {
		end, dateOnly, err := parseDateParam(s)
		if err != nil {
			return from, to, echo.NewHTTPError(http.StatusBadRequest, "end_date must be a YYYY-MM-DD date or an RFC 3339 timestamp")
		}
		to = end
		if dateOnly {
			to = end.AddDate(0, 0, 1)
		}
	}
	if !from.Before(to) {
		return from, to, echo.NewHTTPError(http.StatusBadRequest, "start_date must not be after end_date")
	}
	return from, to, nil
}

func parseDateParam(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	return t, false, err
}

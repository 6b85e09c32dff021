package claims

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/claimwise/claimwise/internal/platform/auth"
	"github.com/claimwise/claimwise/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – both roles; row-level scoping happens in the service
	readGroup := api.Group("", auth.RequireRole(auth.RoleProviderStaff, auth.RolePayerProcessor))
	readGroup.GET("/claims", h.ListClaims)
	readGroup.GET("/claims/:id", h.GetClaim)

	// Submission – provider staff only
	api.POST("/claims", h.CreateClaim, auth.RequireRole(auth.RoleProviderStaff))

	// Adjudication – payer processors only
	api.POST("/claims/:id/adjudicate", h.AdjudicateClaim, auth.RequireRole(auth.RolePayerProcessor))
}

func (h *Handler) CreateClaim(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	claim, err := h.svc.Create(c.Request().Context(), userID, in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, claim)
}

func (h *Handler) GetClaim(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	detail, err := h.svc.Get(c.Request().Context(), userID, auth.RoleFromContext(c.Request().Context()), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) ListClaims(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var filter ListFilter
	if s := c.QueryParam("status"); s != "" {
		status := Status(s)
		if status != StatusSubmitted && status != StatusApproved && status != StatusDenied {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
		filter.Status = &status
	}
	if p := c.QueryParam("priority"); p != "" {
		priority := Priority(p)
		if !priority.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid priority filter")
		}
		filter.Priority = &priority
	}
	if pid := c.QueryParam("provider_id"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid provider_id")
		}
		filter.ProviderID = &id
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), userID, auth.RoleFromContext(c.Request().Context()), filter, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AdjudicateClaim(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in AdjudicationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.Adjudicate(c.Request().Context(), userID, id, in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func callerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
	}
	return id, nil
}

func mapError(err error) error {
	switch {
	case IsInputError(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "claim not found")
	case errors.Is(err, ErrAlreadyAdjudicated):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNoProvider):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

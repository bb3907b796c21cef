package notification

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medika/medika/internal/platform/auth"
	"github.com/medika/medika/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerTokenRequest struct {
	ExpoToken string `json:"expo_token"`
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/notifications", h.List)
	api.PATCH("/notifications/:id/read", h.MarkRead)
	api.POST("/notifications/read-all", h.MarkAllRead)
	api.POST("/push-tokens", h.RegisterToken)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	subject := auth.SubjectUUID(ctx)
	if subject == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown subject")
	}
	pg := pagination.FromContext(c)

	var (
		items []*Notification
		total int
		err   error
	)
	if auth.RoleFromContext(ctx) == "doctor" {
		items, total, err = h.svc.ListForDoctor(ctx, subject, pg.Limit, pg.Offset)
	} else {
		items, total, err = h.svc.ListForUser(ctx, subject, pg.Limit, pg.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list notifications")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.MarkRead(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "notification not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to mark notification read")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "notification marked read"})
}

func (h *Handler) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()
	subject := auth.SubjectUUID(ctx)
	if subject == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown subject")
	}
	if err := h.svc.MarkAllRead(ctx, auth.RoleFromContext(ctx), subject); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to mark notifications read")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "notifications marked read"})
}

func (h *Handler) RegisterToken(c echo.Context) error {
	ctx := c.Request().Context()
	subject := auth.SubjectUUID(ctx)
	if subject == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown subject")
	}
	var req registerTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ExpoToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "expo_token is required")
	}

	var err error
	if auth.RoleFromContext(ctx) == "doctor" {
		err = h.svc.RegisterDoctorToken(ctx, subject, req.ExpoToken)
	} else {
		err = h.svc.RegisterUserToken(ctx, subject, req.ExpoToken)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to register push token")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "push token registered"})
}

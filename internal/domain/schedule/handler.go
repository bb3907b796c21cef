package schedule

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

type createBlockRequest struct {
	DoctorID  string `json:"doctor_id"`
	Date      string `json:"date"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/blocked-times/doctor/:doctorId/date/:date", h.ListByDoctorDate)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/blocked-times", h.List)
	admin.POST("/blocked-times", h.Create)
	admin.DELETE("/blocked-times/:id", h.Delete)

	doc := api.Group("", auth.RequireRole("doctor"))
	doc.GET("/blocked-times/my", h.ListMine)
	doc.POST("/blocked-times/doctor", h.CreateMine)
}

func (h *Handler) Create(c echo.Context) error {
	var req createBlockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
	}
	return h.create(c, doctorID, req)
}

// CreateMine lets an authenticated doctor block their own time.
func (h *Handler) CreateMine(c echo.Context) error {
	var req createBlockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doctorID := auth.SubjectUUID(c.Request().Context())
	if doctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown doctor")
	}
	return h.create(c, doctorID, req)
}

func (h *Handler) create(c echo.Context, doctorID uuid.UUID, req createBlockRequest) error {
	date, err := ParseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	start, err := ParseClock(req.TimeStart)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid time_start")
	}
	end, err := ParseClock(req.TimeEnd)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid time_end")
	}

	block, err := h.svc.CreateBlock(c.Request().Context(), doctorID, date, start, end)
	switch {
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "blocked time overlaps an existing block")
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create blocked time")
	}
	return c.JSON(http.StatusCreated, block)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list blocked times")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListMine(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctorID := auth.SubjectUUID(c.Request().Context())
	if doctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown doctor")
	}
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list blocked times")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByDoctorDate(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := ParseDate(c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	items, err := h.svc.ListByDoctorDate(c.Request().Context(), doctorID, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list blocked times")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBlock(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "blocked time not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete blocked time")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "blocked time deleted"})
}

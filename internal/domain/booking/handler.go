package booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medika/medika/internal/domain/schedule"
	"github.com/medika/medika/internal/platform/auth"
	"github.com/medika/medika/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createBookingRequest struct {
	ServiceID string `json:"service_id"`
	DoctorID  string `json:"doctor_id"`
	Date      string `json:"date"`
	TimeStart string `json:"time_start"`
	Notes     string `json:"notes"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	patient := api.Group("", auth.RequireRole("patient"))
	patient.POST("/bookings", h.Create)
	patient.GET("/bookings/me", h.ListMine)

	doc := api.Group("", auth.RequireRole("doctor"))
	doc.GET("/bookings/doctor", h.ListForDoctor)

	staff := api.Group("", auth.RequireRole("admin", "doctor"))
	staff.PATCH("/bookings/:id/status", h.Transition)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/bookings", h.List)
	admin.PATCH("/bookings/:id/payment", h.MarkPaid)

	api.GET("/bookings/:id", h.Get)
	api.GET("/bookings/code/:code", h.GetByCode)
}

func (h *Handler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patientID := auth.SubjectUUID(c.Request().Context())
	if patientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown patient")
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid service_id")
	}

	var doctorID *uuid.UUID
	if req.DoctorID != "" {
		id, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		doctorID = &id
	}

	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	start, err := schedule.ParseClock(req.TimeStart)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid time_start")
	}

	b, err := h.svc.Create(c.Request().Context(), CreateInput{
		PatientID: patientID,
		ServiceID: serviceID,
		DoctorID:  doctorID,
		Date:      date,
		Start:     start,
		Notes:     req.Notes,
	})
	switch {
	case errors.Is(err, ErrServiceNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
	case errors.Is(err, ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "requested slot is already taken")
	case errors.Is(err, ErrTransient):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "temporary contention, please retry")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create booking")
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) Transition(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b, err := h.svc.Transition(c.Request().Context(), id, req.Status)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	case errors.Is(err, ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update booking status")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "booking not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch booking")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) GetByCode(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing code")
	}
	b, err := h.svc.GetByCode(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "booking not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch booking")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	var f Filter

	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = &id
	}
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		f.DoctorID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		f.Status = &v
	}

	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list bookings")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListMine(c echo.Context) error {
	pg := pagination.FromContext(c)
	patientID := auth.SubjectUUID(c.Request().Context())
	if patientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown patient")
	}
	f := Filter{PatientID: &patientID}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list bookings")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListForDoctor(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctorID := auth.SubjectUUID(c.Request().Context())
	if doctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown doctor")
	}
	f := Filter{DoctorID: &doctorID}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list bookings")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) MarkPaid(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.MarkPaid(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "booking not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to mark booking paid")
	}
	return c.JSON(http.StatusOK, b)
}

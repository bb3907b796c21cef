package medicalrecord

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

type createRecordRequest struct {
	BookingID string `json:"booking_id"`
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doc := api.Group("/medical-records", auth.RequireRole("doctor"))
	doc.GET("", h.List)
	doc.GET("/:id", h.Get)
	doc.POST("", h.Create)
	doc.PATCH("/:id", h.Update)
	doc.DELETE("/:id", h.Delete)
}

func (h *Handler) doctorID(c echo.Context) (uuid.UUID, error) {
	id := auth.SubjectUUID(c.Request().Context())
	if id == uuid.Nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown doctor")
	}
	return id, nil
}

func (h *Handler) List(c echo.Context) error {
	doctorID, err := h.doctorID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list medical records")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	doctorID, err := h.doctorID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id, doctorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch medical record")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Create(c echo.Context) error {
	doctorID, err := h.doctorID(c)
	if err != nil {
		return err
	}
	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking_id")
	}

	rec, err := h.svc.Create(c.Request().Context(), bookingID, doctorID)
	switch {
	case errors.Is(err, ErrBookingNotOwned):
		return echo.NewHTTPError(http.StatusForbidden, "booking not found or unauthorized")
	case errors.Is(err, ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusBadRequest, "medical record already exists for this booking")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create medical record")
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Update(c echo.Context) error {
	doctorID, err := h.doctorID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd SOAPUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.svc.UpdateSOAP(c.Request().Context(), id, doctorID, upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update medical record")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	doctorID, err := h.doctorID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, doctorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete medical record")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "medical record deleted"})
}

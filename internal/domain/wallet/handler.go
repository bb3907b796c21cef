package wallet

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

type withdrawRequestBody struct {
	Amount      int64  `json:"amount"`
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
	AccountName string `json:"account_name"`
}

type processWithdrawBody struct {
	Status     string  `json:"status"`
	ProofImage *string `json:"proof_image"`
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doc := api.Group("", auth.RequireRole("doctor"))
	doc.GET("/wallet", h.MyBalance)
	doc.GET("/wallet/revenue", h.MyRevenue)
	doc.POST("/withdrawals", h.RequestWithdraw)
	doc.GET("/withdrawals/my", h.ListMine)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/withdrawals", h.List)
	admin.PATCH("/withdrawals/:id", h.Process)
}

func (h *Handler) MyBalance(c echo.Context) error {
	doctorID := auth.SubjectUUID(c.Request().Context())
	if doctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown doctor")
	}
	balance, err := h.svc.Balance(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load wallet")
	}
	return c.JSON(http.StatusOK, map[string]int64{"balance": balance})
}

func (h *Handler) MyRevenue(c echo.Context) error {
	doctorID := auth.SubjectUUID(c.Request().Context())
	if doctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown doctor")
	}
	report, err := h.svc.Revenue(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build revenue report")
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) RequestWithdraw(c echo.Context) error {
	var body withdrawRequestBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doctorID := auth.SubjectUUID(c.Request().Context())
	if doctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown doctor")
	}

	req, err := h.svc.RequestWithdraw(c.Request().Context(), doctorID, body.Amount, body.BankName, body.BankAccount, body.AccountName)
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "insufficient balance")
	case errors.Is(err, ErrInvalidAmount):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create withdraw request")
	}
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListMine(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctorID := auth.SubjectUUID(c.Request().Context())
	if doctorID == uuid.Nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown doctor")
	}
	items, total, err := h.svc.ListWithdrawsByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list withdraw requests")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListWithdraws(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list withdraw requests")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Process(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body processWithdrawBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req, err := h.svc.ProcessWithdraw(c.Request().Context(), id, body.Status, body.ProofImage)
	switch {
	case errors.Is(err, ErrRequestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "withdraw request not found")
	case errors.Is(err, ErrAlreadyCompleted):
		return echo.NewHTTPError(http.StatusConflict, "withdraw request already paid")
	case errors.Is(err, ErrProofRequired):
		return echo.NewHTTPError(http.StatusBadRequest, "proof image is required to mark paid")
	case errors.Is(err, ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process withdraw request")
	}
	return c.JSON(http.StatusOK, req)
}

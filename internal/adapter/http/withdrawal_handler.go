package http

import (
	"log/slog"
	"net/http"

	"creator-marketplace/internal/adapter/middleware"
	withdrawalDomain "creator-marketplace/internal/domain/withdrawal"
	"creator-marketplace/internal/usecase/withdrawal"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type WithdrawalHandler struct {
	uc     *withdrawal.Usecase
	logger *slog.Logger
}

func NewWithdrawalHandler(uc *withdrawal.Usecase, logger *slog.Logger) *WithdrawalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WithdrawalHandler{uc: uc, logger: logger}
}

type createWithdrawalReq struct {
	Amount  decimal.Decimal `json:"amount"             validate:"required,gt=0,dec2"`
	Method  string          `json:"withdrawal_method"  validate:"required,oneof=bank_transfer pagarme_account pix"`
	Details map[string]any  `json:"withdrawal_details"`
}

// CreateWithdrawal draws from the caller's own balance.
func (h *WithdrawalHandler) CreateWithdrawal(c echo.Context) error {
	var req createWithdrawalReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	actor := middleware.CurrentActor(c)
	w, err := h.uc.Create(c.Request().Context(), actor, withdrawal.CreateWithdrawalInput{
		CreatorID: actor.UserID,
		Amount:    req.Amount,
		Method:    withdrawalDomain.Method(req.Method),
		Details:   req.Details,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *WithdrawalHandler) GetWithdrawal(c echo.Context) error {
	w, err := h.uc.Get(c.Request().Context(), middleware.CurrentActor(c), c.Param("withdrawal_id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, w)
}

// ProcessWithdrawal answers 200 for failed payouts too; the body carries status failed.
func (h *WithdrawalHandler) ProcessWithdrawal(c echo.Context) error {
	w, err := h.uc.Process(c.Request().Context(), middleware.CurrentActor(c), c.Param("withdrawal_id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WithdrawalHandler) CancelWithdrawal(c echo.Context) error {
	var req reasonReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	w, err := h.uc.Cancel(c.Request().Context(), middleware.CurrentActor(c), c.Param("withdrawal_id"), req.Reason)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *WithdrawalHandler) ListWithdrawals(c echo.Context) error {
	var limit, offset int
	err := echo.QueryParamsBinder(c).
		Int("limit", &limit).
		Int("offset", &offset).
		BindError()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid paging parameters"})
	}
	list, err := h.uc.List(c.Request().Context(), middleware.CurrentActor(c), c.Param("creator_id"), limit, offset)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"withdrawals": list})
}

func (h *WithdrawalHandler) GetBalance(c echo.Context) error {
	b, err := h.uc.Balance(c.Request().Context(), middleware.CurrentActor(c), c.Param("creator_id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, b)
}

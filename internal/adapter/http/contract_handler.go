package http

import (
	"log/slog"
	"net/http"

	"creator-marketplace/internal/adapter/middleware"
	contractDomain "creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/usecase/contract"

	"github.com/labstack/echo/v4"
)

type ContractHandler struct {
	uc     *contract.Usecase
	logger *slog.Logger
}

func NewContractHandler(uc *contract.Usecase, logger *slog.Logger) *ContractHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractHandler{uc: uc, logger: logger}
}

type reasonReq struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type disputeReq struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type resolveReq struct {
	Outcome string `json:"outcome" validate:"required,oneof=completed cancelled"`
	Note    string `json:"note"    validate:"max=1000"`
}

type retryPaymentReq struct {
	PaymentMethod string `json:"payment_method" validate:"max=64"`
}

func (h *ContractHandler) reply(c echo.Context, ct *contractDomain.Contract, err error) error {
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *ContractHandler) GetContract(c echo.Context) error {
	ct, err := h.uc.Get(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"))
	return h.reply(c, ct, err)
}

func (h *ContractHandler) GetPayment(c echo.Context) error {
	p, err := h.uc.GetPayment(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ContractHandler) CompleteContract(c echo.Context) error {
	ct, err := h.uc.Complete(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"))
	return h.reply(c, ct, err)
}

func (h *ContractHandler) CancelContract(c echo.Context) error {
	var req reasonReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ct, err := h.uc.Cancel(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"), req.Reason)
	return h.reply(c, ct, err)
}

func (h *ContractHandler) DisputeContract(c echo.Context) error {
	var req disputeReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ct, err := h.uc.Dispute(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"), req.Reason)
	return h.reply(c, ct, err)
}

func (h *ContractHandler) TerminateContract(c echo.Context) error {
	var req reasonReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ct, err := h.uc.Terminate(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"), req.Reason)
	return h.reply(c, ct, err)
}

func (h *ContractHandler) ResolveDispute(c echo.Context) error {
	var req resolveReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ct, err := h.uc.ResolveDispute(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"),
		contractDomain.Resolution(req.Outcome), req.Note)
	return h.reply(c, ct, err)
}

func (h *ContractHandler) RetryPayment(c echo.Context) error {
	var req retryPaymentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ct, err := h.uc.RetryPayment(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"), req.PaymentMethod)
	return h.reply(c, ct, err)
}

func (h *ContractHandler) MarkPaymentWithdrawn(c echo.Context) error {
	ct, err := h.uc.MarkPaymentWithdrawn(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"))
	return h.reply(c, ct, err)
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"creator-marketplace/internal/adapter/middleware"
	"creator-marketplace/internal/domain/user"
	"creator-marketplace/internal/usecase/offer"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OfferHandler struct {
	uc     *offer.Usecase
	logger *slog.Logger
}

func NewOfferHandler(uc *offer.Usecase, logger *slog.Logger) *OfferHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OfferHandler{uc: uc, logger: logger}
}

type createOfferReq struct {
	CreatorID     string          `json:"creator_id"     validate:"required,hex32"`
	Title         string          `json:"title"          validate:"required,max=255"`
	Description   string          `json:"description"    validate:"max=5000"`
	Budget        decimal.Decimal `json:"budget"         validate:"required,gt=0,dec2"`
	EstimatedDays int             `json:"estimated_days" validate:"required,gte=1,lte=365"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=64"`
	ExpiresAt     *time.Time      `json:"expires_at"`
}

type rejectOfferReq struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// CreateOffer is sent by a brand; the brand id is the caller.
func (h *OfferHandler) CreateOffer(c echo.Context) error {
	var req createOfferReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	actor := middleware.CurrentActor(c)
	o, err := h.uc.Create(c.Request().Context(), actor, offer.CreateOfferInput{
		BrandID:       actor.UserID,
		CreatorID:     req.CreatorID,
		Title:         req.Title,
		Description:   req.Description,
		Budget:        req.Budget,
		EstimatedDays: req.EstimatedDays,
		PaymentMethod: req.PaymentMethod,
		ExpiresAt:     req.ExpiresAt,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *OfferHandler) GetOffer(c echo.Context) error {
	o, err := h.uc.Get(c.Request().Context(), middleware.CurrentActor(c), c.Param("offer_id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, o)
}

// AcceptOffer returns the contract; a declined charge still answers 200 with
// status payment_failed.
func (h *OfferHandler) AcceptOffer(c echo.Context) error {
	ct, err := h.uc.Accept(c.Request().Context(), middleware.CurrentActor(c), c.Param("offer_id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *OfferHandler) RejectOffer(c echo.Context) error {
	var req rejectOfferReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	o, err := h.uc.Reject(c.Request().Context(), middleware.CurrentActor(c), offer.RejectOfferInput{
		OfferID: c.Param("offer_id"),
		Reason:  req.Reason,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OfferHandler) CancelOffer(c echo.Context) error {
	o, err := h.uc.Cancel(c.Request().Context(), middleware.CurrentActor(c), c.Param("offer_id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, o)
}

var adminOnly = user.Capability{Roles: []user.Role{user.RoleAdmin}}

func (h *OfferHandler) ListStaleOffers(c echo.Context) error {
	if err := middleware.CurrentActor(c).Can(adminOnly); err != nil {
		return writeError(c, h.logger, err)
	}
	limit := 100
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	stale, err := h.uc.ListStale(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"offers": stale})
}

func (h *OfferHandler) ExpireStaleOffers(c echo.Context) error {
	if err := middleware.CurrentActor(c).Can(adminOnly); err != nil {
		return writeError(c, h.logger, err)
	}
	limit := 100
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	n, err := h.uc.ExpireStale(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"expired": n})
}

package http

import (
	"log/slog"
	"net/http"

	"creator-marketplace/internal/adapter/middleware"
	"creator-marketplace/internal/usecase/review"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	uc     *review.Usecase
	logger *slog.Logger
}

func NewReviewHandler(uc *review.Usecase, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{uc: uc, logger: logger}
}

type submitReviewReq struct {
	Rating     int            `json:"rating"            validate:"required,gte=1,lte=5"`
	Comment    string         `json:"comment"           validate:"max=2000"`
	Categories map[string]int `json:"rating_categories" validate:"omitempty,dive,keys,required,endkeys,gte=1,lte=5"`
	IsPublic   *bool          `json:"is_public"`
}

func (h *ReviewHandler) SubmitReview(c echo.Context) error {
	var req submitReviewReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	rv, err := h.uc.Submit(c.Request().Context(), middleware.CurrentActor(c), review.SubmitReviewInput{
		ContractID: c.Param("contract_id"),
		Rating:     req.Rating,
		Comment:    req.Comment,
		Categories: req.Categories,
		IsPublic:   req.IsPublic,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHandler) ListReviews(c echo.Context) error {
	list, err := h.uc.List(c.Request().Context(), middleware.CurrentActor(c), c.Param("contract_id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"reviews": list})
}

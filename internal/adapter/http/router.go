package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health      *Handler
	Offers      *OfferHandler
	Contracts   *ContractHandler
	Reviews     *ReviewHandler
	Withdrawals *WithdrawalHandler
}

// Register mounts the API. mw runs on every /v1 route, in order; the actor
// middleware is expected first.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}
	e.GET("/health", h.Health.Health)
	e.GET("/ready", h.Health.Ready)

	v1 := e.Group("/v1", mw...)

	v1.POST("/offers", h.Offers.CreateOffer)
	v1.GET("/offers/stale", h.Offers.ListStaleOffers)
	v1.POST("/offers/expire-stale", h.Offers.ExpireStaleOffers)
	v1.GET("/offers/:offer_id", h.Offers.GetOffer)
	v1.POST("/offers/:offer_id/accept", h.Offers.AcceptOffer)
	v1.POST("/offers/:offer_id/reject", h.Offers.RejectOffer)
	v1.POST("/offers/:offer_id/cancel", h.Offers.CancelOffer)

	v1.GET("/contracts/:contract_id", h.Contracts.GetContract)
	v1.GET("/contracts/:contract_id/payment", h.Contracts.GetPayment)
	v1.POST("/contracts/:contract_id/complete", h.Contracts.CompleteContract)
	v1.POST("/contracts/:contract_id/cancel", h.Contracts.CancelContract)
	v1.POST("/contracts/:contract_id/dispute", h.Contracts.DisputeContract)
	v1.POST("/contracts/:contract_id/terminate", h.Contracts.TerminateContract)
	v1.POST("/contracts/:contract_id/resolve", h.Contracts.ResolveDispute)
	v1.POST("/contracts/:contract_id/retry-payment", h.Contracts.RetryPayment)
	v1.POST("/contracts/:contract_id/mark-withdrawn", h.Contracts.MarkPaymentWithdrawn)

	v1.POST("/contracts/:contract_id/reviews", h.Reviews.SubmitReview)
	v1.GET("/contracts/:contract_id/reviews", h.Reviews.ListReviews)

	v1.POST("/withdrawals", h.Withdrawals.CreateWithdrawal)
	v1.GET("/withdrawals/:withdrawal_id", h.Withdrawals.GetWithdrawal)
	v1.POST("/withdrawals/:withdrawal_id/process", h.Withdrawals.ProcessWithdrawal)
	v1.POST("/withdrawals/:withdrawal_id/cancel", h.Withdrawals.CancelWithdrawal)

	v1.GET("/creators/:creator_id/withdrawals", h.Withdrawals.ListWithdrawals)
	v1.GET("/creators/:creator_id/balance", h.Withdrawals.GetBalance)
}

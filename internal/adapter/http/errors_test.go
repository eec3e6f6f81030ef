package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"creator-marketplace/internal/domain/apperr"
	"creator-marketplace/internal/domain/balance"
	"creator-marketplace/internal/domain/offer"
	"creator-marketplace/internal/usecase/payment"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{offer.ErrInvalidCreator, http.StatusUnprocessableEntity},
		{balance.ErrInsufficientBalance, http.StatusConflict},
		{apperr.ErrConcurrentUpdate, http.StatusConflict},
		{offer.ErrNotFound, http.StatusNotFound},
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{apperr.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("payout: %w", payment.ErrGatewayUnavailable), http.StatusBadGateway},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError_HidesInternalText(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := writeError(c, discardLogger(), errors.New("dial tcp 10.0.0.5:3306")); err != nil {
		t.Fatalf("writeError: %v", err)
	}
	var body ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusInternalServerError || body.Error != "internal error" || body.Code != "internal" {
		t.Fatalf("got %d %+v", rec.Code, body)
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = writeError(c, discardLogger(), offer.ErrAlreadyPending)
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusConflict || body.Code != "precondition" || body.Error != offer.ErrAlreadyPending.Error() {
		t.Fatalf("got %d %+v", rec.Code, body)
	}
}

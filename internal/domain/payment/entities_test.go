package payment

import (
	"errors"
	"testing"
	"time"

	"creator-marketplace/internal/domain/pricing"

	"github.com/shopspring/decimal"
)

func TestPayment_Lifecycle(t *testing.T) {
	now := time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)
	pol := pricing.DefaultPolicy()
	p := New("p1", "c1", "b", "cr", "card_tok", pol.AtAcceptance(decimal.NewFromInt(1000)))

	if p.Status != StatusPending || p.Stage != StageAuthorized {
		t.Fatalf("new payment = %s/%s", p.Status, p.Stage)
	}
	if err := p.Release(now); !errors.Is(err, ErrNotCaptured) {
		t.Fatalf("release before capture err = %v", err)
	}
	if err := p.Fail("card declined"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if p.Status != StatusFailed || p.Attempts != 1 {
		t.Fatalf("after fail = %s attempts=%d", p.Status, p.Attempts)
	}
	if err := p.Retry(); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if err := p.Capture(now, "tx-1"); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if p.Status != StatusPending || p.Stage != StageCaptured || p.TransactionID != "tx-1" || p.FailureReason != "" {
		t.Fatalf("after capture = %+v", p)
	}
	if err := p.Retry(); !errors.Is(err, ErrInvalidStage) {
		t.Fatalf("retry captured err = %v", err)
	}

	p.Reprice(pol.AtRelease(p.TotalAmount))
	if !p.CreatorAmount.Equal(decimal.NewFromInt(950)) || !p.PlatformFee.Add(p.CreatorAmount).Equal(p.TotalAmount) {
		t.Fatalf("reprice = %s/%s", p.PlatformFee, p.CreatorAmount)
	}

	if err := p.Release(now); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if p.Status != StatusCompleted || p.Stage != StageReleased {
		t.Fatalf("after release = %s/%s", p.Status, p.Stage)
	}
	if err := p.Release(now); !errors.Is(err, ErrAlreadyReleased) {
		t.Fatalf("double release err = %v", err)
	}
}

func TestPayment_RetryAfterLostVerdict(t *testing.T) {
	p := New("p1", "c1", "b", "cr", "card_tok", pricing.DefaultPolicy().AtAcceptance(decimal.NewFromInt(100)))
	_ = p.Fail("declined")
	if err := p.Retry(); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	key := p.ChargeKey()

	// the verdict of that retry was never stored: still pending, still authorized
	if err := p.Retry(); err != nil {
		t.Fatalf("Retry while pending: %v", err)
	}
	if p.ChargeKey() != key {
		t.Fatalf("key moved without a verdict: %s -> %s", key, p.ChargeKey())
	}
	if err := p.Capture(time.Now(), "ch_1"); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if p.ChargeKey() == key {
		t.Fatal("key did not move after a stored verdict")
	}
}

package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	contractDomain "creator-marketplace/internal/domain/contract"
	offerDomain "creator-marketplace/internal/domain/offer"
	"creator-marketplace/internal/domain/uow"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Offers.Create(ctx, makeOffer("OF-1", "BR-1", "CR-1", time.Now().Add(time.Hour))); err != nil {
			return err
		}
		return r.Contracts.Create(ctx, makeContract("CT-1", "OF-1", "CR-1"))
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	if _, err := NewOfferRepository(db).GetByOfferID(ctx, "OF-1"); err != nil {
		t.Fatalf("offer not visible after commit: %v", err)
	}
	if _, err := NewContractRepository(db).GetByContractID(ctx, "CT-1"); err != nil {
		t.Fatalf("contract not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)
	sentinel := errors.New("boom")

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Offers.Create(ctx, makeOffer("OF-R", "BR-1", "CR-1", time.Now().Add(time.Hour))); err != nil {
			return err
		}
		if _, err := r.Balances.LockOrCreate(ctx, "CR-1"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}

	if _, err := NewOfferRepository(db).GetByOfferID(ctx, "OF-R"); !errors.Is(err, offerDomain.ErrNotFound) {
		t.Fatalf("offer survived rollback: %v", err)
	}
	if _, err := NewBalanceRepository(db).Get(ctx, "CR-1"); err == nil {
		t.Fatal("balance survived rollback")
	}
}

func TestGormUoW_WithinOfferTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	if err := NewOfferRepository(db).Create(ctx, makeOffer("OF-1", "BR-1", "CR-1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := guow.WithinOfferTx(ctx, "OF-1", func(r uow.Repos, o *offerDomain.Offer) error {
		if err := o.Accept(time.Now()); err != nil {
			return err
		}
		return r.Offers.Update(ctx, o)
	})
	if err != nil {
		t.Fatalf("WithinOfferTx: %v", err)
	}
	got, _ := NewOfferRepository(db).GetByOfferID(ctx, "OF-1")
	if got.Status != offerDomain.StatusAccepted {
		t.Errorf("status = %s", got.Status)
	}

	called := false
	err = guow.WithinOfferTx(ctx, "NOPE", func(uow.Repos, *offerDomain.Offer) error {
		called = true
		return nil
	})
	if !errors.Is(err, offerDomain.ErrNotFound) || called {
		t.Fatalf("expected ErrNotFound without callback, got %v called=%v", err, called)
	}
}

func TestGormUoW_WithinContractTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	guow := NewGormUoW(db)

	if err := NewContractRepository(db).Create(ctx, makeContract("CT-1", "OF-1", "CR-1")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sentinel := errors.New("abort")
	err := guow.WithinContractTx(ctx, "CT-1", func(r uow.Repos, c *contractDomain.Contract) error {
		if err := c.Activate(time.Now()); err != nil {
			return err
		}
		if err := r.Contracts.Update(ctx, c); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	got, _ := NewContractRepository(db).GetByContractID(ctx, "CT-1")
	if got.Status != contractDomain.StatusPending {
		t.Errorf("rolled back update leaked: %s", got.Status)
	}
}

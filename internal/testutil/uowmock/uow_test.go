package uowmock

import (
	"context"
	"errors"
	"testing"

	"creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/offer"
	"creator-marketplace/internal/domain/uow"
	"creator-marketplace/internal/testutil/contractmock"
	"creator-marketplace/internal/testutil/offermock"
)

func TestUoW_Unimplemented(t *testing.T) {
	m := &UoW{}
	ctx := context.Background()
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx: got %v", err)
	}
	if err := m.WithinOfferTx(ctx, "OF", func(uow.Repos, *offer.Offer) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinOfferTx: got %v", err)
	}
	if err := m.WithinContractTx(ctx, "CT", func(uow.Repos, *contract.Contract) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinContractTx: got %v", err)
	}
}

func TestPassthrough_LocksThroughRepos(t *testing.T) {
	ctx := context.Background()
	offers := &offermock.Repo{
		GetByOfferIDForUpdateFn: func(_ context.Context, id string) (*offer.Offer, error) {
			return &offer.Offer{OfferID: id}, nil
		},
	}
	contracts := &contractmock.Repo{
		GetByContractIDForUpdateFn: func(context.Context, string) (*contract.Contract, error) {
			return nil, contract.ErrNotFound
		},
	}
	m := Passthrough(uow.Repos{Offers: offers, Contracts: contracts})

	var got string
	err := m.WithinOfferTx(ctx, "OF-1", func(r uow.Repos, o *offer.Offer) error {
		if r.Offers != offers {
			t.Fatal("repos not forwarded")
		}
		got = o.OfferID
		return nil
	})
	if err != nil || got != "OF-1" {
		t.Fatalf("WithinOfferTx: %v %q", err, got)
	}

	called := false
	err = m.WithinContractTx(ctx, "CT-1", func(uow.Repos, *contract.Contract) error {
		called = true
		return nil
	})
	if !errors.Is(err, contract.ErrNotFound) || called {
		t.Fatalf("WithinContractTx: %v called=%v", err, called)
	}

	sentinel := errors.New("boom")
	if err := m.WithinTx(ctx, func(uow.Repos) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

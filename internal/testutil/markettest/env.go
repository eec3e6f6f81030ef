// Package markettest wires the gorm repositories over an in-memory sqlite
// database for use-case tests.
package markettest

import (
	"context"
	"testing"
	"time"

	"creator-marketplace/internal/adapter/events"
	"creator-marketplace/internal/adapter/repository/mysql"
	"creator-marketplace/internal/domain/balance"
	"creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/payment"
	"creator-marketplace/internal/domain/pricing"
	"creator-marketplace/internal/domain/uow"
	"creator-marketplace/internal/domain/user"
	"creator-marketplace/internal/testutil/dbtest"
	"creator-marketplace/internal/testutil/gatewaymock"
	escrow "creator-marketplace/internal/usecase/payment"
	"creator-marketplace/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	Brand   = "b0000000000000000000000000000001"
	Creator = "c0000000000000000000000000000001"
	Admin   = "a0000000000000000000000000000001"
	Other   = "c0000000000000000000000000000002"
)

type Env struct {
	DB          *gorm.DB
	UoW         *mysql.GormUoW
	Users       *mysql.UserRepository
	Offers      *mysql.OfferRepository
	Contracts   *mysql.ContractRepository
	Payments    *mysql.PaymentRepository
	Reviews     *mysql.ReviewRepository
	Balances    *mysql.BalanceRepository
	Withdrawals *mysql.WithdrawalRepository
	// Gateway approves by default; swap its function fields per test.
	Gateway *gatewaymock.Gateway
	Escrow  *escrow.Escrow
	Events  *events.Memory
}

// New migrates a fresh in-memory database and seeds Brand, Creator, Admin
// and Other.
func New(t *testing.T) *Env {
	t.Helper()
	return wire(t, dbtest.Open(t, mysql.Models()...))
}

// NewFile is New over a file database that serves concurrent transactions.
func NewFile(t *testing.T) *Env {
	t.Helper()
	return wire(t, dbtest.OpenFile(t, mysql.Models()...))
}

func wire(t *testing.T, db *gorm.DB) *Env {
	t.Helper()
	dbtest.SeedUser(t, db, Brand, user.RoleBrand)
	dbtest.SeedUser(t, db, Creator, user.RoleCreator)
	dbtest.SeedUser(t, db, Admin, user.RoleAdmin)
	dbtest.SeedUser(t, db, Other, user.RoleCreator)

	tx := mysql.NewGormUoW(db)
	gw := gatewaymock.Approving()
	return &Env{
		DB:          db,
		UoW:         tx,
		Users:       mysql.NewUserRepository(db),
		Offers:      mysql.NewOfferRepository(db),
		Contracts:   mysql.NewContractRepository(db),
		Payments:    mysql.NewPaymentRepository(db),
		Reviews:     mysql.NewReviewRepository(db),
		Balances:    mysql.NewBalanceRepository(db),
		Withdrawals: mysql.NewWithdrawalRepository(db),
		Gateway:     gw,
		Escrow:      escrow.NewEscrow(tx, gw, nil),
		Events:      events.NewMemory(),
	}
}

func Actor(userID string, role user.Role) user.Actor {
	return user.Actor{UserID: userID, Role: role}
}

func (e *Env) Contract(t *testing.T, contractID string) *contract.Contract {
	t.Helper()
	c, err := e.Contracts.GetByContractID(context.Background(), contractID)
	if err != nil {
		t.Fatalf("load contract %s: %v", contractID, err)
	}
	return c
}

func (e *Env) Payment(t *testing.T, contractID string) *payment.Payment {
	t.Helper()
	p, err := e.Payments.GetByContractID(context.Background(), contractID)
	if err != nil {
		t.Fatalf("load payment %s: %v", contractID, err)
	}
	return p
}

// Balance returns the creator's balance, or an empty one if none exists yet.
func (e *Env) Balance(t *testing.T, creatorID string) *balance.CreatorBalance {
	t.Helper()
	b, err := e.Balances.Get(context.Background(), creatorID)
	if err != nil {
		return balance.Empty(creatorID)
	}
	return b
}

// SeedContract stores a pending contract for Brand and Creator and runs the
// escrow charge through Gateway, so the result is active or payment_failed.
func (e *Env) SeedContract(t *testing.T, budget decimal.Decimal) *contract.Contract {
	t.Helper()
	return e.SeedContractWithContext(t, context.Background(), budget)
}

func (e *Env) SeedContractWithContext(t *testing.T, ctx context.Context, budget decimal.Decimal) *contract.Contract {
	t.Helper()
	split := pricing.DefaultPolicy().AtAcceptance(budget)
	c := contract.New(id.NewID32(), id.NewID32(), Brand, Creator, split, time.Now().UTC().AddDate(0, 0, 7))
	p := payment.New(id.NewID32(), c.ContractID, Brand, Creator, "pm_card_visa", split)
	err := e.UoW.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Contracts.Create(ctx, c); err != nil {
			return err
		}
		return r.Payments.Create(ctx, p)
	})
	if err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	out, err := e.Escrow.Charge(ctx, c.ContractID, budget, p.PaymentMethod)
	if err != nil {
		t.Fatalf("charge contract: %v", err)
	}
	return out
}

// CompleteContract seeds an active contract and completes it, leaving the
// creator amount in pending balance.
func (e *Env) CompleteContract(t *testing.T, budget decimal.Decimal) *contract.Contract {
	t.Helper()
	ctx := context.Background()
	c := e.SeedContract(t, budget)
	var out *contract.Contract
	err := e.UoW.WithinContractTx(ctx, c.ContractID, func(r uow.Repos, locked *contract.Contract) error {
		if err := locked.Complete(time.Now().UTC(), pricing.DefaultPolicy().AtRelease(locked.Budget)); err != nil {
			return err
		}
		if _, err := escrow.Hold(ctx, r, locked); err != nil {
			return err
		}
		out = locked
		return r.Contracts.Update(ctx, locked)
	})
	if err != nil {
		t.Fatalf("complete contract: %v", err)
	}
	return out
}

// ReleaseContract completes a contract and releases it as the creator's
// review would, crediting available balance.
func (e *Env) ReleaseContract(t *testing.T, budget decimal.Decimal) *contract.Contract {
	t.Helper()
	ctx := context.Background()
	c := e.CompleteContract(t, budget)
	var out *contract.Contract
	err := e.UoW.WithinContractTx(ctx, c.ContractID, func(r uow.Repos, locked *contract.Contract) error {
		if _, err := escrow.Release(ctx, r, locked, time.Now().UTC()); err != nil {
			return err
		}
		out = locked
		return nil
	})
	if err != nil {
		t.Fatalf("release contract: %v", err)
	}
	return out
}

package withdrawal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"creator-marketplace/internal/domain/apperr"
	balanceDomain "creator-marketplace/internal/domain/balance"
	contractDomain "creator-marketplace/internal/domain/contract"
	"creator-marketplace/internal/domain/event"
	"creator-marketplace/internal/domain/gateway"
	"creator-marketplace/internal/domain/user"
	withdrawalDomain "creator-marketplace/internal/domain/withdrawal"
	"creator-marketplace/internal/testutil/markettest"

	"github.com/shopspring/decimal"
)

var (
	brand   = markettest.Actor(markettest.Brand, user.RoleBrand)
	creator = markettest.Actor(markettest.Creator, user.RoleCreator)
	admin   = markettest.Actor(markettest.Admin, user.RoleAdmin)
	other   = markettest.Actor(markettest.Other, user.RoleCreator)
)

func newUsecase(t *testing.T) (*Usecase, *markettest.Env) {
	t.Helper()
	env := markettest.New(t)
	uc := NewUsecase(env.UoW, env.Withdrawals, env.Balances, env.Gateway, withdrawalDomain.DefaultLimits(), env.Events, nil)
	return uc, env
}

func pix(amount int64) CreateWithdrawalInput {
	return CreateWithdrawalInput{
		CreatorID: markettest.Creator,
		Amount:    decimal.NewFromInt(amount),
		Method:    withdrawalDomain.MethodPix,
		Details:   map[string]any{"pix_key": "creator@example.com"},
	}
}

func assertBalance(t *testing.T, env *markettest.Env, available, held, withdrawn int64) {
	t.Helper()
	b := env.Balance(t, markettest.Creator)
	if !b.AvailableBalance.Equal(decimal.NewFromInt(available)) ||
		!b.HeldBalance.Equal(decimal.NewFromInt(held)) ||
		!b.TotalWithdrawn.Equal(decimal.NewFromInt(withdrawn)) {
		t.Fatalf("balance available=%s held=%s withdrawn=%s, want %d/%d/%d",
			b.AvailableBalance, b.HeldBalance, b.TotalWithdrawn, available, held, withdrawn)
	}
	if !b.NonNegative() {
		t.Fatalf("negative balance: %+v", b)
	}
}

func TestWithdrawal_RoundTrip(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	c := env.ReleaseContract(t, decimal.NewFromInt(1000))
	assertBalance(t, env, 950, 0, 0)

	w, err := uc.Create(ctx, creator, pix(950))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.Status != withdrawalDomain.StatusPending {
		t.Fatalf("status = %s", w.Status)
	}
	assertBalance(t, env, 0, 950, 0)

	var paid decimal.Decimal
	env.Gateway.PayoutFn = func(_ context.Context, amount decimal.Decimal, method string, details map[string]any) (gateway.Result, error) {
		if method != "pix" || details["pix_key"] != "creator@example.com" {
			t.Errorf("payout method=%s details=%v", method, details)
		}
		paid = amount
		return gateway.Result{Success: true, TransactionRef: "po_1"}, nil
	}
	done, err := uc.Process(ctx, creator, w.WithdrawalID)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if done.Status != withdrawalDomain.StatusCompleted || done.TransactionID != "po_1" || done.ProcessedAt == nil {
		t.Fatalf("withdrawal = %+v", done)
	}
	if !paid.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("paid %s", paid)
	}
	assertBalance(t, env, 0, 0, 950)

	if got := env.Contract(t, c.ContractID); got.WorkflowStatus != contractDomain.WorkflowPaymentWithdrawn {
		t.Fatalf("contract workflow = %s", got.WorkflowStatus)
	}
	want := []event.Type{event.WithdrawalRequested, event.WithdrawalProcessing, event.WithdrawalCompleted, event.ContractPaymentWithdrawn}
	got := env.Events.Types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}

	if _, err := uc.Process(ctx, creator, w.WithdrawalID); !errors.Is(err, withdrawalDomain.ErrNotPending) {
		t.Fatalf("second Process err = %v", err)
	}
}

func TestCreate_InsufficientBalanceMutatesNothing(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	env.ReleaseContract(t, decimal.NewFromInt(100))
	assertBalance(t, env, 95, 0, 0)

	if _, err := uc.Create(ctx, creator, pix(96)); !errors.Is(err, balanceDomain.ErrInsufficientBalance) {
		t.Fatalf("err = %v", err)
	}
	assertBalance(t, env, 95, 0, 0)
	list, _ := uc.List(ctx, creator, markettest.Creator, 0, 0)
	if len(list) != 0 {
		t.Fatalf("withdrawals = %d", len(list))
	}
	if len(env.Events.Types()) != 0 {
		t.Fatalf("events = %v", env.Events.Types())
	}
}

func TestCreate_Validation(t *testing.T) {
	uc, env := newUsecase(t)
	env.ReleaseContract(t, decimal.NewFromInt(1000))

	tests := []struct {
		name  string
		actor user.Actor
		in    CreateWithdrawalInput
		want  error
	}{
		{"brand", brand, pix(10), apperr.ErrForbidden},
		{"other creator", other, pix(10), apperr.ErrForbidden},
		{"zero amount", creator, pix(0), balanceDomain.ErrInvalidAmount},
		{"fractional cents", creator, CreateWithdrawalInput{CreatorID: markettest.Creator, Amount: decimal.RequireFromString("10.001"), Method: withdrawalDomain.MethodPix, Details: map[string]any{"pix_key": "k"}}, balanceDomain.ErrInvalidAmount},
		{"unknown method", creator, CreateWithdrawalInput{CreatorID: markettest.Creator, Amount: decimal.NewFromInt(100), Method: "cheque"}, withdrawalDomain.ErrInvalidMethod},
		{"below pix minimum", creator, pix(4), withdrawalDomain.ErrBelowMinimum},
		{"bank transfer below minimum", creator, CreateWithdrawalInput{CreatorID: markettest.Creator, Amount: decimal.NewFromInt(49), Method: withdrawalDomain.MethodBankTransfer}, withdrawalDomain.ErrBelowMinimum},
		{"missing details", creator, CreateWithdrawalInput{CreatorID: markettest.Creator, Amount: decimal.NewFromInt(20), Method: withdrawalDomain.MethodPix}, withdrawalDomain.ErrInvalidDetails},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.Create(context.Background(), tt.actor, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	assertBalance(t, env, 950, 0, 0)
}

func TestCreate_TooManyInFlight(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	env.ReleaseContract(t, decimal.NewFromInt(1000))

	for i := 0; i < 3; i++ {
		if _, err := uc.Create(ctx, creator, pix(10)); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}
	if _, err := uc.Create(ctx, creator, pix(10)); !errors.Is(err, withdrawalDomain.ErrTooManyPending) {
		t.Fatalf("fourth Create err = %v", err)
	}
	assertBalance(t, env, 920, 30, 0)
}

func TestProcess_DeclineReleasesHold(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	c := env.ReleaseContract(t, decimal.NewFromInt(1000))
	w, _ := uc.Create(ctx, creator, pix(500))

	env.Gateway.PayoutFn = func(context.Context, decimal.Decimal, string, map[string]any) (gateway.Result, error) {
		return gateway.Result{Reason: "invalid pix key"}, nil
	}
	failed, err := uc.Process(ctx, admin, w.WithdrawalID)
	if err != nil {
		t.Fatalf("a decline is not an error: %v", err)
	}
	if failed.Status != withdrawalDomain.StatusFailed || failed.FailureReason != "invalid pix key" {
		t.Fatalf("withdrawal = %s %q", failed.Status, failed.FailureReason)
	}
	assertBalance(t, env, 950, 0, 0)
	if got := env.Contract(t, c.ContractID); got.WorkflowStatus != contractDomain.WorkflowPaymentAvailable {
		t.Fatalf("contract workflow = %s", got.WorkflowStatus)
	}
	if types := env.Events.Types(); types[len(types)-1] != event.WithdrawalFailed {
		t.Fatalf("events = %v", types)
	}
}

func TestProcess_GatewayErrorReleasesHold(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	env.ReleaseContract(t, decimal.NewFromInt(1000))
	w, _ := uc.Create(ctx, creator, pix(500))

	env.Gateway.PayoutFn = func(context.Context, decimal.Decimal, string, map[string]any) (gateway.Result, error) {
		return gateway.Result{}, errors.New("timeout")
	}
	failed, err := uc.Process(ctx, creator, w.WithdrawalID)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if failed.Status != withdrawalDomain.StatusFailed || failed.FailureReason != "gateway unavailable" {
		t.Fatalf("withdrawal = %s %q", failed.Status, failed.FailureReason)
	}
	assertBalance(t, env, 950, 0, 0)
}

func TestProcess_Forbidden(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	env.ReleaseContract(t, decimal.NewFromInt(1000))
	w, _ := uc.Create(ctx, creator, pix(100))

	for _, a := range []user.Actor{brand, other} {
		if _, err := uc.Process(ctx, a, w.WithdrawalID); !errors.Is(err, apperr.ErrForbidden) {
			t.Fatalf("%s err = %v", a.UserID, err)
		}
	}
	got, _ := uc.Get(ctx, creator, w.WithdrawalID)
	if got.Status != withdrawalDomain.StatusPending {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestCancel(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	env.ReleaseContract(t, decimal.NewFromInt(1000))
	w, _ := uc.Create(ctx, creator, pix(300))
	assertBalance(t, env, 650, 300, 0)

	if _, err := uc.Cancel(ctx, admin, w.WithdrawalID, ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("admin cancel err = %v", err)
	}
	cancelled, err := uc.Cancel(ctx, creator, w.WithdrawalID, "changed my mind")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != withdrawalDomain.StatusCancelled {
		t.Fatalf("status = %s", cancelled.Status)
	}
	assertBalance(t, env, 950, 0, 0)

	if _, err := uc.Cancel(ctx, creator, w.WithdrawalID, ""); !errors.Is(err, withdrawalDomain.ErrNotPending) {
		t.Fatalf("second cancel err = %v", err)
	}
	if _, err := uc.Process(ctx, creator, w.WithdrawalID); !errors.Is(err, withdrawalDomain.ErrNotPending) {
		t.Fatalf("process cancelled err = %v", err)
	}
	assertBalance(t, env, 950, 0, 0)
}

func TestProcess_MarksContractsOldestFirst(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	first := env.ReleaseContract(t, decimal.NewFromInt(100))
	second := env.ReleaseContract(t, decimal.NewFromInt(200))
	assertBalance(t, env, 285, 0, 0)

	// covers the first contract (95) but not the second (190)
	w, err := uc.Create(ctx, creator, pix(150))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uc.Process(ctx, creator, w.WithdrawalID); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := env.Contract(t, first.ContractID); got.WorkflowStatus != contractDomain.WorkflowPaymentWithdrawn {
		t.Fatalf("first workflow = %s", got.WorkflowStatus)
	}
	if got := env.Contract(t, second.ContractID); got.WorkflowStatus != contractDomain.WorkflowPaymentAvailable {
		t.Fatalf("second workflow = %s", got.WorkflowStatus)
	}
	assertBalance(t, env, 135, 0, 150)
}

func TestReads(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()

	b, err := uc.Balance(ctx, creator, markettest.Creator)
	if err != nil || !b.AvailableBalance.IsZero() || b.CreatorID != markettest.Creator {
		t.Fatalf("empty Balance = %+v, %v", b, err)
	}
	if _, err := uc.Balance(ctx, brand, markettest.Creator); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("brand balance err = %v", err)
	}

	env.ReleaseContract(t, decimal.NewFromInt(1000))
	w1, _ := uc.Create(ctx, creator, pix(10))
	w2, _ := uc.Create(ctx, creator, pix(20))

	list, err := uc.List(ctx, admin, markettest.Creator, 0, 0)
	if err != nil || len(list) != 2 {
		t.Fatalf("List = %d, %v", len(list), err)
	}
	page, _ := uc.List(ctx, creator, markettest.Creator, 1, 1)
	if len(page) != 1 {
		t.Fatalf("page = %d", len(page))
	}
	if _, err := uc.List(ctx, other, markettest.Creator, 0, 0); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("other list err = %v", err)
	}

	got, err := uc.Get(ctx, admin, w2.WithdrawalID)
	if err != nil || got.WithdrawalID != w2.WithdrawalID {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := uc.Get(ctx, other, w1.WithdrawalID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("other get err = %v", err)
	}
	if _, err := uc.Get(ctx, creator, "ffffffffffffffffffffffffffffffff"); !errors.Is(err, withdrawalDomain.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestProcess_ResumesAfterLostVerdict(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	env.ReleaseContract(t, decimal.NewFromInt(1000))
	w, err := uc.Create(ctx, creator, pix(950))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var keys []string
	env.Gateway.PayoutFn = func(ctx context.Context, _ decimal.Decimal, _ string, _ map[string]any) (gateway.Result, error) {
		k, _ := gateway.IdempotencyKey(ctx)
		keys = append(keys, k)
		return gateway.Result{Success: true, TransactionRef: "po_once"}, nil
	}

	// the payout succeeds but its verdict cannot be stored
	if err := env.DB.Exec(`CREATE TRIGGER balances_down BEFORE UPDATE ON creator_balances
		BEGIN SELECT RAISE(ABORT, 'db down'); END`).Error; err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	if _, err := uc.Process(ctx, creator, w.WithdrawalID); err == nil {
		t.Fatal("Process should fail while the verdict cannot be stored")
	}
	if err := env.DB.Exec(`DROP TRIGGER balances_down`).Error; err != nil {
		t.Fatalf("drop trigger: %v", err)
	}
	assertBalance(t, env, 0, 950, 0)

	if _, err := uc.Process(ctx, creator, w.WithdrawalID); !errors.Is(err, withdrawalDomain.ErrPayoutInFlight) {
		t.Fatalf("immediate reprocess err = %v", err)
	}

	stale := time.Now().UTC().Add(-2 * withdrawalDomain.StaleProcessingAfter)
	if err := env.DB.Model(&withdrawalDomain.Withdrawal{}).
		Where("withdrawal_id = ?", w.WithdrawalID).
		UpdateColumn("updated_at", stale).Error; err != nil {
		t.Fatalf("age claim: %v", err)
	}
	done, err := uc.Process(ctx, creator, w.WithdrawalID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if done.Status != withdrawalDomain.StatusCompleted || done.TransactionID != "po_once" {
		t.Fatalf("withdrawal = %s %q", done.Status, done.TransactionID)
	}
	assertBalance(t, env, 0, 0, 950)
	if len(keys) != 2 || keys[0] != w.PayoutKey() || keys[1] != keys[0] {
		t.Fatalf("payout keys = %v", keys)
	}
}

func TestProcess_PartialWithdrawalsDrainOneContract(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	c := env.ReleaseContract(t, decimal.NewFromInt(1000))

	for i, want := range []contractDomain.WorkflowStatus{
		contractDomain.WorkflowPaymentAvailable,
		contractDomain.WorkflowPaymentWithdrawn,
	} {
		w, err := uc.Create(ctx, creator, pix(475))
		if err != nil {
			t.Fatalf("Create #%d: %v", i+1, err)
		}
		if _, err := uc.Process(ctx, creator, w.WithdrawalID); err != nil {
			t.Fatalf("Process #%d: %v", i+1, err)
		}
		if got := env.Contract(t, c.ContractID); got.WorkflowStatus != want {
			t.Fatalf("after withdrawal #%d workflow = %s, want %s", i+1, got.WorkflowStatus, want)
		}
	}
	assertBalance(t, env, 0, 0, 950)
}

func TestProcess_EarlierWithdrawalsCountTowardNewerContracts(t *testing.T) {
	uc, env := newUsecase(t)
	ctx := context.Background()
	first := env.ReleaseContract(t, decimal.NewFromInt(100))

	// 50 of the first contract's 95 goes out before the second one is released
	w, _ := uc.Create(ctx, creator, pix(50))
	if _, err := uc.Process(ctx, creator, w.WithdrawalID); err != nil {
		t.Fatalf("Process: %v", err)
	}
	second := env.ReleaseContract(t, decimal.NewFromInt(100))

	w, _ = uc.Create(ctx, creator, pix(140))
	if _, err := uc.Process(ctx, creator, w.WithdrawalID); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for _, c := range []*contractDomain.Contract{first, second} {
		if got := env.Contract(t, c.ContractID); got.WorkflowStatus != contractDomain.WorkflowPaymentWithdrawn {
			t.Fatalf("contract %s workflow = %s", c.ContractID, got.WorkflowStatus)
		}
	}
	assertBalance(t, env, 0, 0, 190)
}

func TestCreate_ConcurrentRequestsCannotOverdraw(t *testing.T) {
	env := markettest.NewFile(t)
	uc := NewUsecase(env.UoW, env.Withdrawals, env.Balances, env.Gateway, withdrawalDomain.DefaultLimits(), env.Events, nil)
	env.ReleaseContract(t, decimal.NewFromInt(1000))

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = uc.Create(context.Background(), creator, pix(600))
		}(i)
	}
	close(start)
	wg.Wait()

	created := 0
	for i, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, balanceDomain.ErrInsufficientBalance):
		default:
			t.Fatalf("request %d: unexpected error %v", i, err)
		}
	}
	if created != 1 {
		t.Fatalf("created %d withdrawals of 600 from 950", created)
	}
	assertBalance(t, env, 350, 600, 0)
}

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"sportpredict/internal/domain"
	"sportpredict/internal/repository"
	"sportpredict/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	entries, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	var names []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(migDir, name))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", name, err)
		}
	}
}

func connect(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	applyMigrations(t, db)
	return db
}

func createUser(t *testing.T, repo *repository.UserRepository, name string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        fmt.Sprintf("%s-%d@example.test", name, time.Now().UnixNano()),
		Username:     name,
		PasswordHash: "x",
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func activateSubscription(t *testing.T, db *pgxpool.Pool, userID int64) {
	t.Helper()
	subRepo := repository.NewSubscriptionRepository(db)
	plan, err := subRepo.GetPlanByCode(context.Background(), "starter")
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	sub := &domain.Subscription{
		UserID:             userID,
		PlanID:             plan.ID,
		Status:             domain.SubscriptionActive,
		ProviderSubID:      fmt.Sprintf("sub-%d-%d", userID, time.Now().UnixNano()),
		CurrentPeriodStart: time.Now().Add(-time.Hour),
		CurrentPeriodEnd:   time.Now().Add(30 * 24 * time.Hour),
	}
	if err := subRepo.Upsert(context.Background(), sub); err != nil {
		t.Fatalf("upsert subscription: %v", err)
	}
}

func TestAttachIsIdempotentAndCappedAtTwoLevels(t *testing.T) {
	db := connect(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	refRepo := repository.NewReferralRepository(db)
	referrals := service.NewReferralService(db)

	a := createUser(t, userRepo, "a")
	b := createUser(t, userRepo, "b")
	c := createUser(t, userRepo, "c")
	d := createUser(t, userRepo, "d")

	// Chain a -> b -> c -> d, attaching twice each to prove idempotency.
	for i := 0; i < 2; i++ {
		if err := referrals.Attach(ctx, a.ReferralCode, b.ID); err != nil {
			t.Fatalf("attach b: %v", err)
		}
		if err := referrals.Attach(ctx, b.ReferralCode, c.ID); err != nil {
			t.Fatalf("attach c: %v", err)
		}
		if err := referrals.Attach(ctx, c.ReferralCode, d.ID); err != nil {
			t.Fatalf("attach d: %v", err)
		}
	}

	edges, err := refRepo.ListByReferred(ctx, d.ID)
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("d has %d edges, want 2 (direct from c, indirect from b)", len(edges))
	}
	if edges[0].Level != domain.LevelDirect || edges[0].ReferrerID != c.ID {
		t.Fatalf("direct edge = %+v, want referrer c", edges[0])
	}
	if edges[1].Level != domain.LevelIndirect || edges[1].ReferrerID != b.ID {
		t.Fatalf("indirect edge = %+v, want referrer b", edges[1])
	}
	// a must hold no edge to d: the chain never attributes three levels up.
	for _, e := range edges {
		if e.ReferrerID == a.ID {
			t.Fatalf("a has an edge to d: %+v", e)
		}
	}
}

func TestAttachRejectsSelfReferral(t *testing.T) {
	db := connect(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	referrals := service.NewReferralService(db)

	u := createUser(t, userRepo, "self")
	if err := referrals.Attach(ctx, u.ReferralCode, u.ID); err != service.ErrSelfReferral {
		t.Fatalf("attach self = %v, want ErrSelfReferral", err)
	}

	edges, err := repository.NewReferralRepository(db).ListByReferred(ctx, u.ID)
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("self-referral created edges: %+v", edges)
	}
}

func TestCommissionFanOutGatingAndIdempotency(t *testing.T) {
	db := connect(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	referrals := service.NewReferralService(db)
	commissions := service.NewCommissionService(db, service.DefaultRates(), nil)

	b := createUser(t, userRepo, "grand")
	c := createUser(t, userRepo, "middle")
	d := createUser(t, userRepo, "payer")

	if err := referrals.Attach(ctx, b.ReferralCode, c.ID); err != nil {
		t.Fatalf("attach c: %v", err)
	}
	if err := referrals.Attach(ctx, c.ReferralCode, d.ID); err != nil {
		t.Fatalf("attach d: %v", err)
	}

	// Only c holds an active subscription; b must be skipped.
	activateSubscription(t, db, c.ID)

	inv := domain.Invoice{
		ProviderInvoiceID: fmt.Sprintf("inv-%d", time.Now().UnixNano()),
		UserID:            d.ID,
		Total:             decimal.RequireFromString("100.00"),
		PaidAt:            time.Now(),
	}

	awarded, err := commissions.AwardForInvoice(ctx, inv)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if len(awarded) != 1 {
		t.Fatalf("awarded %d commissions, want 1 (b has no subscription)", len(awarded))
	}
	if awarded[0].ReceiverID != c.ID || !awarded[0].Amount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("award = %+v, want 20.00 to c", awarded[0])
	}

	balC, err := userRepo.GetBalance(ctx, c.ID)
	if err != nil {
		t.Fatalf("balance c: %v", err)
	}
	if !balC.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("c balance = %s, want 20.00", balC)
	}

	balB, err := userRepo.GetBalance(ctx, b.ID)
	if err != nil {
		t.Fatalf("balance b: %v", err)
	}
	if !balB.IsZero() {
		t.Fatalf("b balance = %s, want 0 (gated by subscription)", balB)
	}

	// Replaying the same invoice must award nothing.
	again, err := commissions.AwardForInvoice(ctx, inv)
	if err != nil {
		t.Fatalf("replay award: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("replay awarded %d commissions, want 0", len(again))
	}
	balC2, _ := userRepo.GetBalance(ctx, c.ID)
	if !balC2.Equal(balC) {
		t.Fatalf("replay changed balance: %s -> %s", balC, balC2)
	}

	// After b subscribes, a fresh invoice pays both levels.
	activateSubscription(t, db, b.ID)
	inv2 := domain.Invoice{
		ProviderInvoiceID: fmt.Sprintf("inv-%d", time.Now().UnixNano()),
		UserID:            d.ID,
		Total:             decimal.RequireFromString("100.00"),
		PaidAt:            time.Now(),
	}
	awarded2, err := commissions.AwardForInvoice(ctx, inv2)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if len(awarded2) != 2 {
		t.Fatalf("second award count = %d, want 2", len(awarded2))
	}
	balB2, _ := userRepo.GetBalance(ctx, b.ID)
	if !balB2.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("b balance = %s, want 5.00 indirect commission", balB2)
	}

	// Earnings total for c matches the dashboard aggregate.
	total, err := repository.NewEarningRepository(db).SumByReceiver(ctx, c.ID)
	if err != nil {
		t.Fatalf("sum earnings: %v", err)
	}
	network, err := referrals.BuildNetwork(ctx, c.ID)
	if err != nil {
		t.Fatalf("build network: %v", err)
	}
	if !network.TotalEarnings.Equal(total) {
		t.Fatalf("network total %s != ledger total %s", network.TotalEarnings, total)
	}
}

func TestCommissionSkipsAmountsRoundingToZero(t *testing.T) {
	db := connect(t)
	ctx := context.Background()

	userRepo := repository.NewUserRepository(db)
	referrals := service.NewReferralService(db)
	commissions := service.NewCommissionService(db, service.DefaultRates(), nil)

	b := createUser(t, userRepo, "tiny-grand")
	c := createUser(t, userRepo, "tiny-middle")
	d := createUser(t, userRepo, "tiny-payer")

	if err := referrals.Attach(ctx, b.ReferralCode, c.ID); err != nil {
		t.Fatalf("attach c: %v", err)
	}
	if err := referrals.Attach(ctx, c.ReferralCode, d.ID); err != nil {
		t.Fatalf("attach d: %v", err)
	}
	activateSubscription(t, db, b.ID)
	activateSubscription(t, db, c.ID)

	// Both commissions on a 0.01 invoice round to zero. The fan-out must
	// still succeed and claim the invoice instead of aborting on the
	// positive-amount constraint.
	inv := domain.Invoice{
		ProviderInvoiceID: fmt.Sprintf("inv-%d", time.Now().UnixNano()),
		UserID:            d.ID,
		Total:             decimal.RequireFromString("0.01"),
		PaidAt:            time.Now(),
	}
	awarded, err := commissions.AwardForInvoice(ctx, inv)
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if len(awarded) != 0 {
		t.Fatalf("awarded %d commissions on a 0.01 invoice, want 0", len(awarded))
	}

	recorded, err := repository.NewInvoiceRepository(db).GetByProviderID(ctx, inv.ProviderInvoiceID)
	if err != nil {
		t.Fatalf("lookup invoice: %v", err)
	}
	if recorded == nil {
		t.Fatal("invoice was not claimed, provider retries would loop forever")
	}

	again, err := commissions.AwardForInvoice(ctx, inv)
	if err != nil {
		t.Fatalf("replay award: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("replay awarded %d commissions, want 0", len(again))
	}

	// 0.09 pays the direct level (0.02) but the indirect share still rounds
	// away; only one earning row may exist.
	inv2 := domain.Invoice{
		ProviderInvoiceID: fmt.Sprintf("inv-%d", time.Now().UnixNano()),
		UserID:            d.ID,
		Total:             decimal.RequireFromString("0.09"),
		PaidAt:            time.Now(),
	}
	awarded2, err := commissions.AwardForInvoice(ctx, inv2)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if len(awarded2) != 1 {
		t.Fatalf("awarded %d commissions on a 0.09 invoice, want 1", len(awarded2))
	}
	if awarded2[0].ReceiverID != c.ID || !awarded2[0].Amount.Equal(decimal.RequireFromString("0.02")) {
		t.Fatalf("award = %+v, want 0.02 to the direct referrer", awarded2[0])
	}

	balB, err := userRepo.GetBalance(ctx, b.ID)
	if err != nil {
		t.Fatalf("balance b: %v", err)
	}
	if !balB.IsZero() {
		t.Fatalf("b balance = %s, want 0 (all shares rounded away)", balB)
	}
}

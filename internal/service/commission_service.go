package service

import (
	"context"

	"sportpredict/internal/domain"
	"sportpredict/internal/logger"
	"sportpredict/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RateTable maps referral levels to commission rates. Injected into the
// commission service so tests (and deployments) can run alternate rates.
type RateTable map[domain.ReferralLevel]decimal.Decimal

// DefaultRates returns the standard 20% direct / 5% indirect table.
func DefaultRates() RateTable {
	return RateTable{
		domain.LevelDirect:   decimal.RequireFromString("0.20"),
		domain.LevelIndirect: decimal.RequireFromString("0.05"),
	}
}

// EarningNotifier receives commission events after they commit. The live
// dashboard hub implements it; a nil notifier is valid.
type EarningNotifier interface {
	NotifyEarning(receiverID int64, earning domain.ReferralEarning)
}

// CommissionService fans a paid invoice out to the payer's referrers.
type CommissionService struct {
	db           *pgxpool.Pool
	rates        RateTable
	notifier     EarningNotifier
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
	earningRepo  *repository.EarningRepository
	subRepo      *repository.SubscriptionRepository
	invoiceRepo  *repository.InvoiceRepository
	txRepo       *repository.TransactionRepository
}

func NewCommissionService(db *pgxpool.Pool, rates RateTable, notifier EarningNotifier) *CommissionService {
	return &CommissionService{
		db:           db,
		rates:        rates,
		notifier:     notifier,
		userRepo:     repository.NewUserRepository(db),
		referralRepo: repository.NewReferralRepository(db),
		earningRepo:  repository.NewEarningRepository(db),
		subRepo:      repository.NewSubscriptionRepository(db),
		invoiceRepo:  repository.NewInvoiceRepository(db),
		txRepo:       repository.NewTransactionRepository(db),
	}
}

// commissionAmount computes the payout for one edge, rounded to cents.
func commissionAmount(total, rate decimal.Decimal) decimal.Decimal {
	return total.Mul(rate).Round(2)
}

// AwardForInvoice credits referral commissions for one paid invoice.
//
// The whole fan-out runs in a single transaction: the invoice row is claimed
// first (duplicate provider invoice IDs make the call a no-op, so webhook
// retries are safe), then every edge naming the payer as referred gets its
// level rate applied. Receivers without an active subscription earn nothing
// for this invoice. Balance credits are atomic SQL increments; a failure
// anywhere rolls back every credit and earning row for the invoice.
func (s *CommissionService) AwardForInvoice(ctx context.Context, inv domain.Invoice) ([]domain.ReferralEarning, error) {
	edges, err := s.referralRepo.ListByReferred(ctx, inv.UserID)
	if err != nil {
		return nil, err
	}

	eligibility := make(map[int64]bool, len(edges))
	for _, e := range edges {
		active, err := s.subRepo.HasActive(ctx, e.ReferrerID)
		if err != nil {
			return nil, err
		}
		eligibility[e.ReferrerID] = active
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	claimed, err := s.invoiceRepo.ClaimWithTx(ctx, tx, &inv)
	if err != nil {
		return nil, err
	}
	if !claimed {
		duplicateInvoicesTotal.Inc()
		logger.Info("invoice already processed, skipping commission fan-out",
			"provider_invoice_id", inv.ProviderInvoiceID, "payer_id", inv.UserID)
		return nil, nil
	}

	var awarded []domain.ReferralEarning
	for _, edge := range edges {
		if !eligibility[edge.ReferrerID] {
			commissionsSkippedTotal.WithLabelValues("no_active_subscription").Inc()
			logger.Info("skipping commission, receiver has no active subscription",
				"receiver_id", edge.ReferrerID, "payer_id", inv.UserID, "level", edge.Level.String())
			continue
		}

		rate, ok := s.rates[edge.Level]
		if !ok {
			commissionsSkippedTotal.WithLabelValues("unknown_level").Inc()
			logger.Warn("skipping commission, no rate for level",
				"level", int(edge.Level), "edge_id", edge.ID)
			continue
		}

		amount := commissionAmount(inv.Total, rate)

		// Sub-cent commissions round to zero. Earning rows require a positive
		// amount, so skip instead of aborting the whole fan-out.
		if amount.LessThanOrEqual(decimal.Zero) {
			commissionsSkippedTotal.WithLabelValues("zero_amount").Inc()
			logger.Info("skipping commission, amount rounds to zero",
				"receiver_id", edge.ReferrerID, "invoice_total", inv.Total.String(), "level", edge.Level.String())
			continue
		}

		if _, err := s.userRepo.CreditBalanceTx(ctx, tx, edge.ReferrerID, amount); err != nil {
			return nil, err
		}

		earning := domain.ReferralEarning{
			EdgeID:     edge.ID,
			ReceiverID: edge.ReferrerID,
			InvoiceID:  inv.ID,
			Amount:     amount,
		}
		if err := s.earningRepo.CreateWithTx(ctx, tx, &earning); err != nil {
			return nil, err
		}

		ledger := domain.Transaction{
			UserID: edge.ReferrerID,
			Type:   domain.TxTypeCommission,
			Amount: amount,
			Meta: map[string]interface{}{
				"invoice_id": inv.ProviderInvoiceID,
				"payer_id":   inv.UserID,
				"level":      edge.Level.String(),
			},
		}
		if err := s.txRepo.CreateWithTx(ctx, tx, &ledger); err != nil {
			return nil, err
		}

		awarded = append(awarded, earning)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	for _, e := range awarded {
		commissionsAwardedTotal.WithLabelValues(levelName(edges, e.EdgeID)).Inc()
		if s.notifier != nil {
			s.notifier.NotifyEarning(e.ReceiverID, e)
		}
	}

	return awarded, nil
}

func levelName(edges []domain.ReferralEdge, edgeID int64) string {
	for _, e := range edges {
		if e.ID == edgeID {
			return e.Level.String()
		}
	}
	return "unknown"
}

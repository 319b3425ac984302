package service

import (
	"context"
	"errors"

	"sportpredict/internal/domain"
	"sportpredict/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrBelowMinWithdrawal = errors.New("amount below minimum withdrawal")
	ErrNotPending         = errors.New("withdrawal is not pending")
)

// BalanceService handles balance reads and the withdrawal lifecycle.
type BalanceService struct {
	db             *pgxpool.Pool
	minWithdrawal  decimal.Decimal
	userRepo       *repository.UserRepository
	txRepo         *repository.TransactionRepository
	withdrawalRepo *repository.WithdrawalRepository
}

func NewBalanceService(db *pgxpool.Pool, minWithdrawal decimal.Decimal) *BalanceService {
	return &BalanceService{
		db:             db,
		minWithdrawal:  minWithdrawal,
		userRepo:       repository.NewUserRepository(db),
		txRepo:         repository.NewTransactionRepository(db),
		withdrawalRepo: repository.NewWithdrawalRepository(db),
	}
}

// GetBalance returns the user's current balance.
func (s *BalanceService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.userRepo.GetBalance(ctx, userID)
}

// RequestWithdrawal debits the balance and opens a pending withdrawal in one
// transaction. The debit is guarded in SQL, so concurrent requests can never
// overdraw.
func (s *BalanceService) RequestWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal, method, destination string) (*domain.Withdrawal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(s.minWithdrawal) {
		return nil, ErrBelowMinWithdrawal
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := s.userRepo.DebitBalanceTx(ctx, tx, userID, amount); err != nil {
		return nil, err
	}

	w := &domain.Withdrawal{
		Reference:   uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Method:      method,
		Destination: destination,
		Status:      domain.WithdrawalPending,
	}
	if err := s.withdrawalRepo.CreateWithTx(ctx, tx, w); err != nil {
		return nil, err
	}

	ledger := domain.Transaction{
		UserID: userID,
		Type:   domain.TxTypeWithdrawal,
		Amount: amount.Neg(),
		Meta:   map[string]interface{}{"reference": w.Reference, "method": method},
	}
	if err := s.txRepo.CreateWithTx(ctx, tx, &ledger); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// ResolveWithdrawal moves a pending withdrawal to approved, paid or rejected.
// Rejection refunds the held amount back to the balance.
func (s *BalanceService) ResolveWithdrawal(ctx context.Context, id int64, status domain.WithdrawalStatus, notes string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID int64
	var amount decimal.Decimal
	var reference string
	err = tx.QueryRow(ctx,
		`SELECT user_id, amount, reference FROM withdrawals WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&userID, &amount, &reference)
	if err != nil {
		return err
	}

	ok, err := s.withdrawalRepo.UpdateStatusWithTx(ctx, tx, id, status, notes)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotPending
	}

	if status == domain.WithdrawalRejected {
		if _, err := s.userRepo.CreditBalanceTx(ctx, tx, userID, amount); err != nil {
			return err
		}
		ledger := domain.Transaction{
			UserID: userID,
			Type:   domain.TxTypeWithdrawalRefund,
			Amount: amount,
			Meta:   map[string]interface{}{"reference": reference, "reason": notes},
		}
		if err := s.txRepo.CreateWithTx(ctx, tx, &ledger); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetWithdrawals returns a user's withdrawal requests.
func (s *BalanceService) GetWithdrawals(ctx context.Context, userID int64, limit int) ([]domain.Withdrawal, error) {
	return s.withdrawalRepo.GetByUserID(ctx, userID, limit)
}

// GetWithdrawalByReference looks up a single withdrawal by its public
// reference. Callers must check ownership before returning it.
func (s *BalanceService) GetWithdrawalByReference(ctx context.Context, reference string) (*domain.Withdrawal, error) {
	return s.withdrawalRepo.GetByReference(ctx, reference)
}

// GetTransactionHistory returns the user's ledger, newest first.
func (s *BalanceService) GetTransactionHistory(ctx context.Context, userID int64, limit int) ([]*domain.Transaction, error) {
	return s.txRepo.GetByUserID(ctx, userID, limit)
}

// GetTransactionHistoryByType returns only ledger entries of one type, e.g.
// commission rows for the referral earnings view.
func (s *BalanceService) GetTransactionHistoryByType(ctx context.Context, userID int64, txType string, limit int) ([]*domain.Transaction, error) {
	return s.txRepo.GetByUserIDAndType(ctx, userID, txType, limit)
}

package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"sportpredict/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// GenerateReferralCode returns a random 12-hex-char referral code.
func GenerateReferralCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

const userColumns = `id, email, COALESCE(username, ''), password_hash, referral_code, balance, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.ReferralCode, &u.Balance, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with a zero balance and a fresh referral code.
// Retries code generation a few times on the unlikely unique collision.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	for attempt := 0; attempt < 5; attempt++ {
		u.ReferralCode = GenerateReferralCode()
		err := r.db.QueryRow(ctx,
			`INSERT INTO users (email, username, password_hash, referral_code, balance)
			 VALUES ($1, $2, $3, $4, 0)
			 RETURNING id, balance, created_at`,
			u.Email, u.Username, u.PasswordHash, u.ReferralCode,
		).Scan(&u.ID, &u.Balance, &u.CreatedAt)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err, "users_email_key") {
			return ErrEmailTaken
		}
		if isUniqueViolation(err, "users_referral_code_key") {
			continue
		}
		return err
	}
	return errors.New("could not allocate a unique referral code")
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

// GetByReferralCode resolves the owner of a referral code (exact match).
func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code))
}

// GetBalance returns the user's current balance.
func (r *UserRepository) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return balance, nil
}

// CreditBalanceTx atomically adds amount to the user's balance within an
// existing transaction. The increment happens in SQL, never read-modify-write.
func (r *UserRepository) CreditBalanceTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := tx.QueryRow(ctx,
		`UPDATE users SET balance = balance + $1 WHERE id = $2 RETURNING balance`,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return newBalance, nil
}

// DebitBalanceTx atomically subtracts amount, guarded so the balance can
// never go negative.
func (r *UserRepository) DebitBalanceTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := tx.QueryRow(ctx,
		`UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1 RETURNING balance`,
		amount, userID,
	).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			_ = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
			if !exists {
				return decimal.Zero, ErrUserNotFound
			}
			return decimal.Zero, ErrInsufficientFunds
		}
		return decimal.Zero, err
	}
	return newBalance, nil
}

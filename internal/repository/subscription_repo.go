package repository

import (
	"context"
	"errors"

	"sportpredict/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPlanNotFound = errors.New("plan not found")

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// HasActive reports whether the user currently holds an active, unexpired
// subscription. Commission eligibility is evaluated with this at award time.
func (r *SubscriptionRepository) HasActive(ctx context.Context, userID int64) (bool, error) {
	var active bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND status = $2 AND current_period_end > now()
		)`,
		userID, domain.SubscriptionActive,
	).Scan(&active)
	return active, err
}

// HasActiveBatch evaluates HasActive for many users in one query.
func (r *SubscriptionRepository) HasActiveBatch(ctx context.Context, userIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT user_id FROM subscriptions
		 WHERE user_id = ANY($1) AND status = $2 AND current_period_end > now()`,
		userIDs, domain.SubscriptionActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = true
	}
	return result, rows.Err()
}

// Upsert creates or refreshes the subscription row keyed by the provider's
// subscription ID. Billing webhook events drive this.
func (r *SubscriptionRepository) Upsert(ctx context.Context, s *domain.Subscription) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO subscriptions (user_id, plan_id, status, provider_sub_id, current_period_start, current_period_end)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (provider_sub_id) DO UPDATE SET
			status = EXCLUDED.status,
			plan_id = EXCLUDED.plan_id,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = now()
		 RETURNING id, created_at, updated_at`,
		s.UserID, s.PlanID, s.Status, s.ProviderSubID, s.CurrentPeriodStart, s.CurrentPeriodEnd,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByUserID returns the user's most recent subscription, or nil.
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, plan_id, status, provider_sub_id, current_period_start, current_period_end, created_at, updated_at
		 FROM subscriptions
		 WHERE user_id = $1
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&s.ID, &s.UserID, &s.PlanID, &s.Status, &s.ProviderSubID,
		&s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetPlanByCode looks a plan up by its stable code ("starter", "pro", ...).
func (r *SubscriptionRepository) GetPlanByCode(ctx context.Context, code string) (*domain.Plan, error) {
	var p domain.Plan
	err := r.db.QueryRow(ctx,
		`SELECT id, code, name, price, interval, created_at FROM plans WHERE code = $1`,
		code,
	).Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.Interval, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPlans returns all plans, cheapest first.
func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, code, name, price, interval, created_at FROM plans ORDER BY price ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Price, &p.Interval, &p.CreatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

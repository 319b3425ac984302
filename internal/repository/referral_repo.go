package repository

import (
	"context"
	"errors"

	"sportpredict/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrSelfReferral is returned when an edge would point a user at themselves.
// The referrals table carries the same CHECK so the invariant holds even for
// writers that bypass this repository.
var ErrSelfReferral = errors.New("self-referral is not allowed")

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

const edgeColumns = `id, referrer_id, referred_id, level, created_at`

func scanEdges(rows pgx.Rows) ([]domain.ReferralEdge, error) {
	defer rows.Close()

	var edges []domain.ReferralEdge
	for rows.Next() {
		var e domain.ReferralEdge
		if err := rows.Scan(&e.ID, &e.ReferrerID, &e.ReferredID, &e.Level, &e.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// InsertIfAbsent creates the edge unless an identical one already exists.
// Returns created=false (and no error) when the edge was already present;
// attachment retries must be idempotent. The insert-if-absent semantics are
// part of this repository's contract, not an accident of the SQL.
func (r *ReferralRepository) InsertIfAbsent(ctx context.Context, referrerID, referredID int64, level domain.ReferralLevel) (created bool, err error) {
	if referrerID == referredID {
		return false, ErrSelfReferral
	}

	tag, err := r.db.Exec(ctx,
		`INSERT INTO referrals (referrer_id, referred_id, level)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (referrer_id, referred_id, level) DO NOTHING`,
		referrerID, referredID, level,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetDirectIntroducer returns the edge naming who directly introduced the
// given user, or nil when the user joined without a code. At most one such
// edge can exist (partial unique index on level-1 referred_id).
func (r *ReferralRepository) GetDirectIntroducer(ctx context.Context, referredID int64) (*domain.ReferralEdge, error) {
	var e domain.ReferralEdge
	err := r.db.QueryRow(ctx,
		`SELECT `+edgeColumns+` FROM referrals
		 WHERE referred_id = $1 AND level = $2`,
		referredID, domain.LevelDirect,
	).Scan(&e.ID, &e.ReferrerID, &e.ReferredID, &e.Level, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// ListByReferred returns every edge where the given user is the referred
// party. Used by the commission awarder; at most two rows per invariants.
func (r *ReferralRepository) ListByReferred(ctx context.Context, referredID int64) ([]domain.ReferralEdge, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+edgeColumns+` FROM referrals
		 WHERE referred_id = $1
		 ORDER BY level ASC`,
		referredID,
	)
	if err != nil {
		return nil, err
	}
	return scanEdges(rows)
}

// ListByReferrer returns the edges a user holds at one level, oldest first.
func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID int64, level domain.ReferralLevel) ([]domain.ReferralEdge, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+edgeColumns+` FROM referrals
		 WHERE referrer_id = $1 AND level = $2
		 ORDER BY created_at ASC`,
		referrerID, level,
	)
	if err != nil {
		return nil, err
	}
	return scanEdges(rows)
}

// ListDirectByReferrers returns all level-1 edges whose referrer is any of
// the given users. The network builder uses this to resolve middle men.
func (r *ReferralRepository) ListDirectByReferrers(ctx context.Context, referrerIDs []int64) ([]domain.ReferralEdge, error) {
	if len(referrerIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+edgeColumns+` FROM referrals
		 WHERE referrer_id = ANY($1) AND level = $2
		 ORDER BY created_at ASC`,
		referrerIDs, domain.LevelDirect,
	)
	if err != nil {
		return nil, err
	}
	return scanEdges(rows)
}

// ListMembers fetches username and signup time for a set of users.
func (r *ReferralRepository) ListMembers(ctx context.Context, userIDs []int64) (map[int64]domain.NetworkMember, error) {
	members := make(map[int64]domain.NetworkMember, len(userIDs))
	if len(userIDs) == 0 {
		return members, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(username, ''), created_at FROM users WHERE id = ANY($1)`,
		userIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.NetworkMember
		if err := rows.Scan(&m.UserID, &m.Username, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Earnings = decimal.Zero
		members[m.UserID] = m
	}
	return members, rows.Err()
}

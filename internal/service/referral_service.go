package service

import (
	"context"
	"errors"

	"sportpredict/internal/domain"
	"sportpredict/internal/logger"
	"sportpredict/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCodeNotFound = errors.New("invalid referral code")
	ErrSelfReferral = errors.New("you cannot use your own referral code")
)

// ReferralService owns the referral graph: attaching new users to their
// introducers and rebuilding the two-level network for the dashboard.
type ReferralService struct {
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
	earningRepo  *repository.EarningRepository
	subRepo      *repository.SubscriptionRepository
}

func NewReferralService(db *pgxpool.Pool) *ReferralService {
	return &ReferralService{
		userRepo:     repository.NewUserRepository(db),
		referralRepo: repository.NewReferralRepository(db),
		earningRepo:  repository.NewEarningRepository(db),
		subRepo:      repository.NewSubscriptionRepository(db),
	}
}

// Attach links a freshly registered user into the referral graph.
//
// A direct edge is created from the code's owner; when the owner was
// themselves directly introduced by someone, that grandparent gets an
// indirect edge to the new user. The chain never extends past two levels.
// Both inserts are idempotent, so a retried registration is harmless.
//
// Failures here never invalidate the account: callers report the error on
// the registration form and keep the user.
func (s *ReferralService) Attach(ctx context.Context, code string, userID int64) error {
	referrer, err := s.userRepo.GetByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrCodeNotFound
		}
		return err
	}

	if referrer.ID == userID {
		return ErrSelfReferral
	}

	created, err := s.referralRepo.InsertIfAbsent(ctx, referrer.ID, userID, domain.LevelDirect)
	if err != nil {
		logger.Error("failed to create direct referral edge",
			"referrer_id", referrer.ID, "referred_id", userID, "level", domain.LevelDirect, "error", err)
		return err
	}
	if created {
		attachmentsTotal.WithLabelValues(domain.LevelDirect.String()).Inc()
	}

	grandparentEdge, err := s.referralRepo.GetDirectIntroducer(ctx, referrer.ID)
	if err != nil {
		logger.Error("failed to resolve grandparent", "referrer_id", referrer.ID, "error", err)
		return err
	}
	if grandparentEdge == nil {
		return nil
	}

	// A grandparent equal to the new user would mean a 2-cycle in the graph.
	if grandparentEdge.ReferrerID == userID {
		logger.Warn("skipping indirect edge, would form a cycle",
			"grandparent_id", grandparentEdge.ReferrerID, "referred_id", userID)
		return nil
	}

	created, err = s.referralRepo.InsertIfAbsent(ctx, grandparentEdge.ReferrerID, userID, domain.LevelIndirect)
	if err != nil {
		logger.Error("failed to create indirect referral edge",
			"referrer_id", grandparentEdge.ReferrerID, "referred_id", userID, "level", domain.LevelIndirect, "error", err)
		return err
	}
	if created {
		attachmentsTotal.WithLabelValues(domain.LevelIndirect.String()).Inc()
	}

	return nil
}

// GetCode returns a user's referral code.
func (s *ReferralService) GetCode(ctx context.Context, userID int64) (string, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.ReferralCode, nil
}

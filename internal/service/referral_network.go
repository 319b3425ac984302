package service

import (
	"context"

	"sportpredict/internal/domain"
	"sportpredict/internal/logger"

	"github.com/shopspring/decimal"
)

// BuildNetwork reconstructs the two-level referral tree for a user's
// dashboard: direct referrals annotated with earnings, each carrying the
// indirect referrals it introduced, plus aggregate counts.
func (s *ReferralService) BuildNetwork(ctx context.Context, userID int64) (*domain.ReferralNetwork, error) {
	direct, err := s.referralRepo.ListByReferrer(ctx, userID, domain.LevelDirect)
	if err != nil {
		return nil, err
	}
	indirect, err := s.referralRepo.ListByReferrer(ctx, userID, domain.LevelIndirect)
	if err != nil {
		return nil, err
	}

	directChildIDs := make([]int64, 0, len(direct))
	for _, e := range direct {
		directChildIDs = append(directChildIDs, e.ReferredID)
	}

	// Level-1 edges held by the direct children resolve which middle man
	// introduced each indirect referral.
	middleEdges, err := s.referralRepo.ListDirectByReferrers(ctx, directChildIDs)
	if err != nil {
		return nil, err
	}

	edgeIDs := make([]int64, 0, len(direct)+len(indirect))
	memberIDs := make([]int64, 0, len(direct)+len(indirect))
	for _, e := range direct {
		edgeIDs = append(edgeIDs, e.ID)
		memberIDs = append(memberIDs, e.ReferredID)
	}
	for _, e := range indirect {
		edgeIDs = append(edgeIDs, e.ID)
		memberIDs = append(memberIDs, e.ReferredID)
	}

	earnings, err := s.earningRepo.SumByEdges(ctx, edgeIDs)
	if err != nil {
		return nil, err
	}
	members, err := s.referralRepo.ListMembers(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	activeSubs, err := s.subRepo.HasActiveBatch(ctx, directChildIDs)
	if err != nil {
		return nil, err
	}
	total, err := s.earningRepo.SumByReceiver(ctx, userID)
	if err != nil {
		return nil, err
	}

	return assembleNetwork(direct, indirect, middleEdges, earnings, members, activeSubs, total), nil
}

// childToMiddles groups level-1 edges held by middle-man candidates by the
// user they introduced. Pure; operates on already-fetched edges.
func childToMiddles(middleEdges []domain.ReferralEdge) map[int64][]int64 {
	byChild := make(map[int64][]int64, len(middleEdges))
	for _, e := range middleEdges {
		byChild[e.ReferredID] = append(byChild[e.ReferredID], e.ReferrerID)
	}
	return byChild
}

// assembleNetwork builds the dashboard tree from fetched rows. An indirect
// referral nests under its middle man only when exactly one candidate
// introduced it; ambiguous or orphaned entries are omitted rather than
// guessed at.
func assembleNetwork(
	direct, indirect, middleEdges []domain.ReferralEdge,
	earnings map[int64]decimal.Decimal,
	members map[int64]domain.NetworkMember,
	activeSubs map[int64]bool,
	totalEarnings decimal.Decimal,
) *domain.ReferralNetwork {
	network := &domain.ReferralNetwork{
		FirstLevel:             make([]domain.NetworkMember, 0, len(direct)),
		DirectReferralsCount:   len(direct),
		IndirectReferralsCount: len(indirect),
		TotalEarnings:          totalEarnings,
	}

	entryIndex := make(map[int64]int, len(direct))
	for _, e := range direct {
		member := memberFor(members, e.ReferredID)
		member.Earnings = earningFor(earnings, e.ID)

		entryIndex[e.ReferredID] = len(network.FirstLevel)
		network.FirstLevel = append(network.FirstLevel, member)

		if activeSubs[e.ReferredID] {
			network.ReferralCounts.ActiveSubscribers++
		} else {
			network.ReferralCounts.InactiveSubscribers++
		}
	}

	middles := childToMiddles(middleEdges)
	for _, e := range indirect {
		candidates := middles[e.ReferredID]
		if len(candidates) != 1 {
			logger.Debug("omitting indirect referral without a unique middle man",
				"referred_id", e.ReferredID, "candidates", len(candidates))
			continue
		}
		idx, ok := entryIndex[candidates[0]]
		if !ok {
			continue
		}

		member := memberFor(members, e.ReferredID)
		member.Earnings = earningFor(earnings, e.ID)
		network.FirstLevel[idx].SecondLevel = append(network.FirstLevel[idx].SecondLevel, member)
	}

	return network
}

func memberFor(members map[int64]domain.NetworkMember, userID int64) domain.NetworkMember {
	if m, ok := members[userID]; ok {
		return m
	}
	return domain.NetworkMember{UserID: userID, Earnings: decimal.Zero}
}

func earningFor(earnings map[int64]decimal.Decimal, edgeID int64) decimal.Decimal {
	if sum, ok := earnings[edgeID]; ok {
		return sum
	}
	return decimal.Zero
}

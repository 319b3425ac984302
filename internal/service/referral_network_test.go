package service

import (
	"testing"

	"sportpredict/internal/domain"

	"github.com/shopspring/decimal"
)

func edge(id, referrer, referred int64, level domain.ReferralLevel) domain.ReferralEdge {
	return domain.ReferralEdge{ID: id, ReferrerID: referrer, ReferredID: referred, Level: level}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestChildToMiddles(t *testing.T) {
	edges := []domain.ReferralEdge{
		edge(1, 2, 4, domain.LevelDirect),
		edge(2, 3, 5, domain.LevelDirect),
		edge(3, 2, 6, domain.LevelDirect),
		edge(4, 3, 6, domain.LevelDirect), // anomaly: 6 has two introducers
	}

	got := childToMiddles(edges)

	if len(got[4]) != 1 || got[4][0] != 2 {
		t.Fatalf("child 4: got %v, want [2]", got[4])
	}
	if len(got[5]) != 1 || got[5][0] != 3 {
		t.Fatalf("child 5: got %v, want [3]", got[5])
	}
	if len(got[6]) != 2 {
		t.Fatalf("child 6: got %v, want two candidates", got[6])
	}
}

// A introduces B and C directly; B introduces D. The tree for A must nest D
// under B and leave C's second level empty.
func TestAssembleNetworkShape(t *testing.T) {
	const (
		userA int64 = 1
		userB int64 = 2
		userC int64 = 3
		userD int64 = 4
	)

	direct := []domain.ReferralEdge{
		edge(10, userA, userB, domain.LevelDirect),
		edge(11, userA, userC, domain.LevelDirect),
	}
	indirect := []domain.ReferralEdge{
		edge(12, userA, userD, domain.LevelIndirect),
	}
	middleEdges := []domain.ReferralEdge{
		edge(13, userB, userD, domain.LevelDirect),
	}
	earnings := map[int64]decimal.Decimal{
		10: dec("20.00"),
		12: dec("5.00"),
	}
	members := map[int64]domain.NetworkMember{
		userB: {UserID: userB, Username: "bob"},
		userC: {UserID: userC, Username: "carol"},
		userD: {UserID: userD, Username: "dave"},
	}
	activeSubs := map[int64]bool{userB: true}

	network := assembleNetwork(direct, indirect, middleEdges, earnings, members, activeSubs, dec("25.00"))

	if len(network.FirstLevel) != 2 {
		t.Fatalf("first level size = %d, want 2", len(network.FirstLevel))
	}

	b := network.FirstLevel[0]
	if b.UserID != userB || b.Username != "bob" {
		t.Fatalf("first entry = %+v, want bob", b)
	}
	if !b.Earnings.Equal(dec("20.00")) {
		t.Fatalf("bob earnings = %s, want 20.00", b.Earnings)
	}
	if len(b.SecondLevel) != 1 || b.SecondLevel[0].UserID != userD {
		t.Fatalf("bob second level = %+v, want [dave]", b.SecondLevel)
	}
	if !b.SecondLevel[0].Earnings.Equal(dec("5.00")) {
		t.Fatalf("dave earnings = %s, want 5.00", b.SecondLevel[0].Earnings)
	}

	c := network.FirstLevel[1]
	if c.UserID != userC || len(c.SecondLevel) != 0 {
		t.Fatalf("second entry = %+v, want carol with empty second level", c)
	}

	if network.DirectReferralsCount != 2 || network.IndirectReferralsCount != 1 {
		t.Fatalf("counts = %d/%d, want 2/1",
			network.DirectReferralsCount, network.IndirectReferralsCount)
	}
	if !network.TotalEarnings.Equal(dec("25.00")) {
		t.Fatalf("total earnings = %s, want 25.00", network.TotalEarnings)
	}
	if network.ReferralCounts.ActiveSubscribers != 1 || network.ReferralCounts.InactiveSubscribers != 1 {
		t.Fatalf("referral counts = %+v, want 1 active / 1 inactive", network.ReferralCounts)
	}
}

// An indirect referral with two candidate middle men is a data anomaly: it
// must be omitted from both candidates rather than duplicated.
func TestAssembleNetworkAmbiguousMiddleManOmitted(t *testing.T) {
	direct := []domain.ReferralEdge{
		edge(10, 1, 2, domain.LevelDirect),
		edge(11, 1, 3, domain.LevelDirect),
	}
	indirect := []domain.ReferralEdge{
		edge(12, 1, 4, domain.LevelIndirect),
	}
	middleEdges := []domain.ReferralEdge{
		edge(13, 2, 4, domain.LevelDirect),
		edge(14, 3, 4, domain.LevelDirect),
	}

	network := assembleNetwork(direct, indirect, middleEdges, nil, nil, nil, decimal.Zero)

	for _, entry := range network.FirstLevel {
		if len(entry.SecondLevel) != 0 {
			t.Fatalf("entry %d has second level %+v, want none", entry.UserID, entry.SecondLevel)
		}
	}
	// The indirect edge still counts even though it cannot be placed.
	if network.IndirectReferralsCount != 1 {
		t.Fatalf("indirect count = %d, want 1", network.IndirectReferralsCount)
	}
}

// An indirect referral with no candidate middle man is likewise omitted.
func TestAssembleNetworkOrphanIndirectOmitted(t *testing.T) {
	direct := []domain.ReferralEdge{
		edge(10, 1, 2, domain.LevelDirect),
	}
	indirect := []domain.ReferralEdge{
		edge(12, 1, 4, domain.LevelIndirect),
	}

	network := assembleNetwork(direct, indirect, nil, nil, nil, nil, decimal.Zero)

	if len(network.FirstLevel[0].SecondLevel) != 0 {
		t.Fatalf("orphan indirect was placed: %+v", network.FirstLevel[0].SecondLevel)
	}
}

// Edges without earning rows render with zero earnings, not missing entries.
func TestAssembleNetworkZeroEarnings(t *testing.T) {
	direct := []domain.ReferralEdge{
		edge(10, 1, 2, domain.LevelDirect),
	}

	network := assembleNetwork(direct, nil, nil, map[int64]decimal.Decimal{}, nil, nil, decimal.Zero)

	if !network.FirstLevel[0].Earnings.Equal(decimal.Zero) {
		t.Fatalf("earnings = %s, want 0", network.FirstLevel[0].Earnings)
	}
}

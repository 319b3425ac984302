package service

import (
	"testing"

	"sportpredict/internal/domain"

	"github.com/shopspring/decimal"
)

func TestCommissionAmount(t *testing.T) {
	rates := DefaultRates()

	cases := []struct {
		total string
		level domain.ReferralLevel
		want  string
	}{
		{"100.00", domain.LevelDirect, "20.00"},
		{"100.00", domain.LevelIndirect, "5.00"},
		{"49.99", domain.LevelDirect, "10.00"},    // 9.998 rounds up
		{"49.99", domain.LevelIndirect, "2.50"},   // 2.4995 rounds up
		{"19.99", domain.LevelDirect, "4.00"},     // 3.998 rounds up
		{"0.09", domain.LevelDirect, "0.02"},      // 0.018 rounds up
		{"0.09", domain.LevelIndirect, "0.00"},    // sub-cent commission rounds away
		{"0.01", domain.LevelIndirect, "0.00"},    // sub-cent commission rounds away
	}

	for _, tc := range cases {
		rate, ok := rates[tc.level]
		if !ok {
			t.Fatalf("no rate for level %d", tc.level)
		}
		got := commissionAmount(decimal.RequireFromString(tc.total), rate)
		want := decimal.RequireFromString(tc.want).Round(2)
		if !got.Equal(want) {
			t.Fatalf("commissionAmount(%s, level %d) = %s, want %s", tc.total, tc.level, got, want)
		}
	}
}

func TestDefaultRates(t *testing.T) {
	rates := DefaultRates()

	if !rates[domain.LevelDirect].Equal(decimal.RequireFromString("0.20")) {
		t.Fatalf("direct rate = %s, want 0.20", rates[domain.LevelDirect])
	}
	if !rates[domain.LevelIndirect].Equal(decimal.RequireFromString("0.05")) {
		t.Fatalf("indirect rate = %s, want 0.05", rates[domain.LevelIndirect])
	}
	if _, ok := rates[domain.ReferralLevel(3)]; ok {
		t.Fatal("rate table must not define levels beyond 2")
	}
}

func TestLevelName(t *testing.T) {
	edges := []domain.ReferralEdge{
		{ID: 1, Level: domain.LevelDirect},
		{ID: 2, Level: domain.LevelIndirect},
	}

	if got := levelName(edges, 1); got != "direct" {
		t.Fatalf("levelName(1) = %s", got)
	}
	if got := levelName(edges, 2); got != "indirect" {
		t.Fatalf("levelName(2) = %s", got)
	}
	if got := levelName(edges, 99); got != "unknown" {
		t.Fatalf("levelName(99) = %s", got)
	}
}

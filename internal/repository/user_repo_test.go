package repository

import (
	"encoding/hex"
	"testing"
)

func TestGenerateReferralCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code := GenerateReferralCode()
		if len(code) != 12 {
			t.Fatalf("code %q has length %d, want 12", code, len(code))
		}
		if _, err := hex.DecodeString(code); err != nil {
			t.Fatalf("code %q is not hex: %v", code, err)
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 100 {
		t.Fatalf("generated %d unique codes out of 100", len(seen))
	}
}

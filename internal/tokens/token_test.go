package tokens

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"standard prefix", "olm_"},
		{"empty prefix", ""},
		{"custom prefix", "lunch-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := Generate(tt.prefix)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if !strings.HasPrefix(tok, tt.prefix) {
				t.Errorf("token %q missing prefix %q", tok, tt.prefix)
			}
			// 32 bytes base64url without padding is 43 chars.
			if got := len(tok) - len(tt.prefix); got != 43 {
				t.Errorf("secret length = %d, want 43", got)
			}
		})
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := Generate("olm_")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true
	}
}

func TestHash(t *testing.T) {
	h1 := Hash("olm_abc")
	h2 := Hash("olm_abc")
	if h1 != h2 {
		t.Errorf("hash not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
	if h1 == Hash("olm_abd") {
		t.Error("distinct tokens produced the same hash")
	}
	if strings.Contains(h1, "olm_abc") {
		t.Error("hash leaks plaintext")
	}
}

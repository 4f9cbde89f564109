package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "pw123" || hash == "" {
		t.Fatalf("hash must not be empty or equal to plaintext: %q", hash)
	}

	if !h.Verify("pw123", hash) {
		t.Fatalf("Verify must succeed for the original password")
	}
	if h.Verify("pw124", hash) {
		t.Fatalf("Verify must fail for a different password")
	}
}

func TestHasher_UniqueSalt(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	h1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ (random salt)")
	}
}

func TestHasher_MalformedHashFailsClosed(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	for _, malformed := range []string{"", "not-a-bcrypt-hash", "$2a$10$tooshort"} {
		if h.Verify("pw123", malformed) {
			t.Fatalf("Verify must return false for malformed hash %q", malformed)
		}
	}
}

func TestNewHasher_CostOutOfRange(t *testing.T) {
	t.Parallel()

	h := NewHasher(99)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("out-of-range cost must fall back to default, got %d", h.cost)
	}
}

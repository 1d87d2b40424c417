package crypto

import (
	"strings"
	"testing"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := &BcryptHasher{}

	hash, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if hash == "secret1" {
		t.Error("hash must not equal the plaintext password")
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}

	if err := hasher.Compare(hash, "secret1"); err != nil {
		t.Errorf("expected matching password to verify, got %v", err)
	}

	if err := hasher.Compare(hash, "secret2"); err == nil {
		t.Error("expected mismatched password to fail verification")
	}
}

func TestBcryptHasher_SaltedOutput(t *testing.T) {
	hasher := &BcryptHasher{}

	first, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first == second {
		t.Error("expected two hashes of the same password to differ")
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	hasher := &BcryptHasher{}

	// A malformed stored hash is a verification failure, not a panic.
	if err := hasher.Compare("not-a-bcrypt-hash", "secret1"); err == nil {
		t.Error("expected malformed hash to fail verification")
	}
}

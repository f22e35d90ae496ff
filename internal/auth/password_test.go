package auth

import (
	"errors"
	"os"
	"regexp"
	"strings"
	"testing"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "s3cret-horse-battery"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("mismatch: got %v, want ErrUnauthenticated", err)
	}
}

func TestVerifyPasswordFailsClosed(t *testing.T) {
	for name, args := range map[string][2]string{
		"empty hash":      {"", "whatever"},
		"empty candidate": {"$2a$10$abcdefghijklmnopqrstuv", ""},
		"corrupt hash":    {"not-a-bcrypt-hash", "whatever"},
	} {
		if err := VerifyPassword(args[0], args[1]); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("%s: got %v, want ErrUnauthenticated", name, err)
		}
	}
}

func TestHashPasswordRejectsOversizedInput(t *testing.T) {
	if _, err := HashPassword(strings.Repeat("x", maxPasswordBytes+1)); err == nil {
		t.Fatal("expected rejection of oversized password")
	}
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected rejection of empty password")
	}
}

// The bootstrap seed documents its password; the stored hash must actually
// verify against it or a fresh install has no working admin login.
func TestBootstrapSeedCredentialVerifies(t *testing.T) {
	raw, err := os.ReadFile("../../ops/migrations/seeds/0001_admin.sql")
	if err != nil {
		t.Fatalf("read seed: %v", err)
	}
	m := regexp.MustCompile(`\$2[aby]\$\d\d\$[./A-Za-z0-9]{53}`).Find(raw)
	if m == nil {
		t.Fatal("no bcrypt hash found in bootstrap seed")
	}
	if err := VerifyPassword(string(m), "change-me"); err != nil {
		t.Fatalf("seed hash does not verify against documented password: %v", err)
	}
}

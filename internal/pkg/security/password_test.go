package security

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Pass@123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if strings.Contains(hash, "Pass@123") {
		t.Fatalf("hash leaks plaintext: %s", hash)
	}
	if !VerifyPassword("Pass@123", hash) {
		t.Fatalf("correct password did not verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatalf("wrong password verified")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h1, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash 1: %v", err)
	}
	h2, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash 2: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password share a salt")
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, stored := range []string{"", "nodollar", "zz$zz", "abcd$nothex"} {
		if VerifyPassword("x", stored) {
			t.Fatalf("malformed stored value %q verified", stored)
		}
	}
}

func TestGenerateToken(t *testing.T) {
	t1, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	t2, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(t1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(t1))
	}
	if t1 == t2 {
		t.Fatalf("two tokens collided")
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	pw, err := GenerateRandomPassword(12)
	if err != nil {
		t.Fatalf("GenerateRandomPassword: %v", err)
	}
	if len(pw) != 12 {
		t.Fatalf("expected 12 chars, got %d", len(pw))
	}
	for i := 0; i < len(pw); i++ {
		if !strings.ContainsRune(passwordAlphabet, rune(pw[i])) {
			t.Fatalf("character %q outside alphabet", pw[i])
		}
	}
}

package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceForTest(4) // bcrypt minimum — fast for tests

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
	if err := ps.Verify(hash, "wrong password"); err == nil {
		t.Error("Verify() accepted the wrong password")
	}
}

func TestHash_UniquePerCall(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	h1, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt salts internally, so the same input never hashes the same way
	// twice.
	if h1 == h2 {
		t.Error("Hash() produced identical hashes for two calls")
	}
}

func TestHash_TooLong(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Fatal("Hash() accepted a password longer than 72 bytes")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	if err := ps.Verify("not-a-bcrypt-hash", "anything"); err == nil {
		t.Fatal("Verify() accepted a malformed hash")
	}
}

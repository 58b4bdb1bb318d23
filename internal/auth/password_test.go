package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	svc := NewPasswordServiceWithCost(4)

	hash, err := svc.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "secret123" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := svc.Verify(hash, "secret123"); err != nil {
		t.Errorf("Verify(correct) error = %v", err)
	}
	if err := svc.Verify(hash, "wrong"); err == nil {
		t.Error("Verify(wrong) did not fail")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	svc := NewPasswordServiceWithCost(4)

	// bcrypt silently truncates past 72 bytes; we refuse instead.
	if _, err := svc.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() accepted a password longer than 72 bytes")
	}
}

func TestHash_Salted(t *testing.T) {
	svc := NewPasswordServiceWithCost(4)

	first, err := svc.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := svc.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical")
	}
}

func TestPasswordPlaceholder_NeverVerifies(t *testing.T) {
	svc := NewPasswordServiceWithCost(4)

	// The placeholder stored for social accounts is not a bcrypt hash, so
	// no password input can ever match it.
	for _, password := range []string{PasswordPlaceholder, "", "secret123"} {
		if err := svc.Verify(PasswordPlaceholder, password); err == nil {
			t.Errorf("Verify(placeholder, %q) did not fail", password)
		}
	}
}

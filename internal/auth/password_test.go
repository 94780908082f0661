package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/vellt/eduinfo-api/internal/apperror"
)

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	hash, err := ps.Hash("titkos-jelszó")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "titkos-jelszó" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "titkos-jelszó"); err != nil {
		t.Errorf("Verify() with correct password error = %v", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	hash, err := ps.Hash("helyes")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	err = ps.Verify(hash, "helytelen")
	if !errors.Is(err, apperror.ErrInvalidCredential) {
		t.Errorf("Verify() error = %v, want ErrInvalidCredential", err)
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	_, err := ps.Hash(strings.Repeat("a", 73))
	if err == nil {
		t.Fatal("Hash() accepted a 73-byte password, bcrypt would truncate it")
	}
}

func TestHash_SaltsEveryCall(t *testing.T) {
	ps := NewPasswordServiceForTest(bcrypt.MinCost)

	h1, err := ps.Hash("ugyanaz")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("ugyanaz")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical, salt missing")
	}
}

package crypto

import (
	"strconv"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if hash == "hunter22" {
		t.Fatal("expected password to be hashed")
	}

	if !VerifyPassword(hash, "hunter22") {
		t.Fatal("expected matching password to verify")
	}

	if VerifyPassword(hash, "hunter23") {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestVerificationCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := VerificationCode()
		if err != nil {
			t.Fatalf("VerificationCode returned error: %v", err)
		}

		if len(code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", code)
		}

		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("expected numeric code, got %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d outside [100000, 999999]", n)
		}
	}
}

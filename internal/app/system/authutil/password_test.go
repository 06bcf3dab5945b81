package authutil

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Gr4nde-Muraille!", nil},
		{"exactly min", strings.Repeat("x", MinPasswordLength), nil},
		{"too short", "court", ErrPasswordTooShort},
		{"too long", strings.Repeat("x", MaxPasswordLength+1), ErrPasswordTooLong},
		{"common", "motdepasse", ErrPasswordCommon},
		{"common mixed case", "AzertyUIOP", ErrPasswordCommon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePassword(tt.password); err != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestCommonPasswordsAreLongEnough(t *testing.T) {
	// Entries shorter than the minimum would be rejected as too short first.
	for p := range commonPasswords {
		if len(p) < MinPasswordLength {
			t.Errorf("common password %q is shorter than MinPasswordLength", p)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Gr4nde-Muraille!")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "Gr4nde-Muraille!" {
		t.Fatal("HashPassword() returned the plain text")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash %q is not bcrypt", hash)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct", "Gr4nde-Muraille!", hash, true},
		{"wrong", "gr4nde-muraille!", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", "Gr4nde-Muraille!", "", false},
		{"garbage hash", "Gr4nde-Muraille!", "not-a-hash", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, _ := HashPassword("Gr4nde-Muraille!")
	b, _ := HashPassword("Gr4nde-Muraille!")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

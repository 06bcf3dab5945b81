// Package authutil hashes and checks admin passwords.
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password validation constants
const (
	MinPasswordLength = 10
	MaxPasswordLength = 72 // bcrypt ignores bytes past 72
	BcryptCost        = 12
)

// Password validation errors
var (
	ErrPasswordTooShort = errors.New("Le mot de passe doit contenir au moins 10 caractères.")
	ErrPasswordTooLong  = errors.New("Le mot de passe doit contenir au plus 72 caractères.")
	ErrPasswordCommon   = errors.New("Ce mot de passe est trop courant. Veuillez en choisir un autre.")
)

// commonPasswords is a list of very common passwords that are blocked.
var commonPasswords = map[string]bool{
	"1234567890":     true,
	"123456789a":     true,
	"motdepasse":     true,
	"motdepasse1":    true,
	"password12":     true,
	"password123":    true,
	"azertyuiop":     true,
	"qwertyuiop":     true,
	"administrateur": true,
	"adminadmin":     true,
	"chinavoyage":    true,
	"bienvenue1":     true,
	"iloveyou12":     true,
	"soleil1234":     true,
}

// ValidatePassword checks if a password meets the requirements.
// Returns nil if valid, or an error describing the issue.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword hashes a password using bcrypt.
// The password should be validated with ValidatePassword first.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plain-text password with a bcrypt hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

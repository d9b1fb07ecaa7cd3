package models

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks if the account meets all validation requirements
func (a *Account) Validate() error {
	if err := validate.Struct(a); err != nil {
		return err
	}
	if strings.IndexFunc(a.Name, unicode.IsSpace) >= 0 {
		return errors.New("name cannot contain whitespace")
	}
	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (a *Account) BeforeCreate() {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
}

// SetPassword stores a bcrypt hash of password.
func (a *Account) SetPassword(password string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (a *Account) CheckPassword(password string) bool {
	if a.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account allowed to maintain quality records.
type User struct {
	Record
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
}

// NewUser normalizes the email and name and hashes the password.
func NewUser(email, name, password string) (*User, error) {
	user := &User{
		Email: NormalizeEmail(email),
		Name:  strings.TrimSpace(name),
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword stores the bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

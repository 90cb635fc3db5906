package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Staff roles. These are closed values; anything else is rejected at create time.
const (
	RoleManager     = "Manager"
	RoleDietitian   = "Dietitian"
	RoleCook        = "Cook"
	RoleDietaryAide = "Dietary Aide"
)

// IsValidRole reports whether role is one of the four staff roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleManager, RoleDietitian, RoleCook, RoleDietaryAide:
		return true
	}
	return false
}

// User is the model for the 'users' table (kitchen staff accounts).
type User struct {
	ID                 int64     `json:"id" db:"id"`
	FirstName          string    `json:"firstName" db:"first_name"`
	LastName           string    `json:"lastName" db:"last_name"`
	Username           string    `json:"username" db:"username"`
	EmployeeID         *string   `json:"employeeId,omitempty" db:"employee_id"`
	Email              *string   `json:"email,omitempty" db:"email"`
	Role               string    `json:"role" db:"role"`
	PasswordHash       string    `json:"-" db:"password_hash"`
	MustChangePassword bool      `json:"mustChangePassword" db:"must_change_password"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt" db:"updated_at"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

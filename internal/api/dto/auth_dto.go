package dto

import (
	"fmt"
	"net/mail"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the identity shape returned by auth endpoints.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

const (
	minAccountNameLen = 2
	maxAccountNameLen = 50
	minPasswordLen    = 6
	maxPasswordLen    = 100
)

// Validate checks the registration payload.
func (r RegisterRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if len(r.Name) < minAccountNameLen {
		errs.add("name", fmt.Sprintf("Name must be at least %d characters", minAccountNameLen))
	} else if len(r.Name) > maxAccountNameLen {
		errs.add("name", fmt.Sprintf("Name must be at most %d characters", maxAccountNameLen))
	}
	if !validEmail(r.Email) {
		errs.add("email", "Invalid email address")
	}
	if len(r.Password) < minPasswordLen {
		errs.add("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	} else if len(r.Password) > maxPasswordLen {
		errs.add("password", fmt.Sprintf("Password must be at most %d characters", maxPasswordLen))
	}
	return errs
}

// Validate checks the login payload.
func (r LoginRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if !validEmail(r.Email) {
		errs.add("email", "Invalid email address")
	}
	if r.Password == "" {
		errs.add("password", "Password is required")
	}
	return errs
}

func validEmail(value string) bool {
	if value == "" {
		return false
	}
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}

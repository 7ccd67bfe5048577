package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	UserName      string    `json:"user_name"`
	PasswordHash  string    `json:"-"`
	SecurityStamp string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser builds a user whose user name is its email address.
func NewUser(id, firstName, lastName, email string) *User {
	now := time.Now()
	return &User{
		ID:            id,
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		UserName:      email,
		SecurityStamp: NewSecurityStamp(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NormalizedEmail is the lookup key used by the identity stores.
func (u *User) NormalizedEmail() string {
	return NormalizeEmail(u.Email)
}

func NormalizeEmail(email string) string {
	return strings.ToUpper(strings.TrimSpace(email))
}

func NewSecurityStamp() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

package auth

import (
	"time"

	"github.com/google/uuid"
)

// User owns books and, through them, sales. PasswordHash never leaves
// the package.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    *string   `json:"firstName,omitempty"`
	LastName     *string   `json:"lastName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RegisterRequest is the JSON payload for account creation.
type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Username  string  `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password  string  `json:"password" validate:"required,min=6"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=50"`
}

// LoginRequest is the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

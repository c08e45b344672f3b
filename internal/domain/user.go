/**
 * @description
 * This file defines the user-facing domain models for the credits-service.
 * These structs represent registered identities and the request/response
 * shapes of the authentication endpoints.
 *
 * @notes
 * - The password hash never crosses the API boundary; response DTOs expose
 *   only the display name.
 * - Credit balances are stored as `int64` so balance arithmetic stays exact.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered identity. This struct maps directly to the
// `users` table in the database.
type User struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	CreditBalance int64     `json:"credit_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// RegisterRequest is the DTO for incoming registration API requests.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the DTO for incoming login API requests.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

// PublicUser is the caller-safe projection of a User.
type PublicUser struct {
	Name string `json:"name"`
}

// CreditsResponse is returned by the balance endpoint.
type CreditsResponse struct {
	Success bool       `json:"success"`
	Credits int64      `json:"credits"`
	User    PublicUser `json:"user"`
}

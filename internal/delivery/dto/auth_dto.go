package dto

import (
	"time"

	"github.com/google/uuid"
)

// Response DTOs

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	IssuedAt    time.Time `json:"issued_at"`
}

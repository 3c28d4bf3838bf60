package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a prospective resident who has an account but no flat yet.
type Client struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

package dtos

import (
	"time"

	"github.com/poofware/housing-service/internal/models"
)

type RegisterClientRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"required,phone"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type ClientResponse struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewClientResponse(c *models.Client) ClientResponse {
	return ClientResponse{Name: c.Name, Phone: c.Phone, Email: c.Email, CreatedAt: c.CreatedAt}
}

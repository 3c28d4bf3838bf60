package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/poofware/housing-service/internal/dtos"
	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/repositories"
	"github.com/poofware/housing-service/internal/utils"
)

// ClientService handles prospective residents before they take a flat.
type ClientService struct {
	clients repositories.ClientRepository
	now     Clock
}

func NewClientService(clients repositories.ClientRepository, now Clock) *ClientService {
	return &ClientService{clients: clients, now: now}
}

// Register stores a new client; utils.ErrEmailExists on a duplicate email.
func (s *ClientService) Register(ctx context.Context, req dtos.RegisterClientRequest) (*models.Client, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	c := &models.Client{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        utils.NormalizeEmail(req.Email),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	utils.Logger.WithField("email", c.Email).Info("Client registered")
	return c, nil
}

package services

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/poofware/housing-service/internal/config"
	"github.com/poofware/housing-service/internal/constants"
	"github.com/poofware/housing-service/internal/middleware"
	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/repositories"
	"github.com/poofware/housing-service/internal/utils"
)

// Session is an issued access token.
type Session struct {
	Token     string
	Role      string
	Subject   string
	ExpiresAt time.Time
}

// AuthService checks credentials and issues session tokens. Every failure is
// reported as utils.ErrInvalidCredentials.
type AuthService struct {
	cfg       *config.Config
	occupants repositories.OccupantRepository
	clients   repositories.ClientRepository
}

func NewAuthService(cfg *config.Config, occupants repositories.OccupantRepository, clients repositories.ClientRepository) *AuthService {
	return &AuthService{cfg: cfg, occupants: occupants, clients: clients}
}

func (s *AuthService) AdminLogin(_ context.Context, username, password string) (*Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
	passOK := utils.CheckPasswordHash(password, s.cfg.AdminPasswordHash)
	if !userOK || !passOK {
		utils.Logger.WithField("username", username).Warn("Admin login rejected")
		return nil, utils.ErrInvalidCredentials
	}
	return s.issue(s.cfg.AdminUsername, constants.RoleAdmin)
}

func (s *AuthService) OccupantLogin(ctx context.Context, email, password string) (*Session, *models.Occupant, error) {
	o, err := s.occupants.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if o == nil || !utils.CheckPasswordHash(password, o.PasswordHash) {
		return nil, nil, utils.ErrInvalidCredentials
	}
	sess, err := s.issue(o.Email, constants.RoleOccupant)
	if err != nil {
		return nil, nil, err
	}
	return sess, o, nil
}

func (s *AuthService) ClientLogin(ctx context.Context, email, password string) (*Session, *models.Client, error) {
	c, err := s.clients.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if c == nil || !utils.CheckPasswordHash(password, c.PasswordHash) {
		return nil, nil, utils.ErrInvalidCredentials
	}
	sess, err := s.issue(c.Email, constants.RoleClient)
	if err != nil {
		return nil, nil, err
	}
	return sess, c, nil
}

func (s *AuthService) issue(subject, role string) (*Session, error) {
	exp := time.Now().Add(s.cfg.TokenExpiry)
	tok, err := middleware.GenerateToken(s.cfg.JWTSecret, subject, role, exp)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, Role: role, Subject: subject, ExpiresAt: exp}, nil
}

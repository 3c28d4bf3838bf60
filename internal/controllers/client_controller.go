package controllers

import (
	"net/http"

	"github.com/poofware/housing-service/internal/dtos"
	"github.com/poofware/housing-service/internal/services"
	"github.com/poofware/housing-service/internal/utils"
)

type ClientController struct {
	auth      *services.AuthService
	clients   *services.ClientService
	community *services.CommunityService
}

func NewClientController(
	auth *services.AuthService,
	clients *services.ClientService,
	community *services.CommunityService,
) *ClientController {
	return &ClientController{auth: auth, clients: clients, community: community}
}

// POST /api/v1/clients/register
func (c *ClientController) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterClientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	cl, err := c.clients.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "Could not register client")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewClientResponse(cl))
}

// POST /api/v1/clients/login
func (c *ClientController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sess, cl, err := c.auth.ClientLogin(r.Context(), utils.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		respondServiceError(w, err, "Could not log in")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LoginResponse{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
		Role:        sess.Role,
		ExpiresAt:   sess.ExpiresAt,
		Name:        cl.Name,
	})
}

// GET /api/v1/client/flats
// Flats a client may apply for.
func (c *ClientController) FlatsHandler(w http.ResponseWriter, r *http.Request) {
	flats, err := c.community.ListUnoccupiedFlatsInfo(r.Context())
	if err != nil {
		respondServiceError(w, err, "Could not list flats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.UnoccupiedFlatsInfoResponse{Flats: flats})
}

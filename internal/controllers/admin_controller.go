package controllers

import (
	"net/http"

	"github.com/poofware/housing-service/internal/dtos"
	"github.com/poofware/housing-service/internal/models"
	"github.com/poofware/housing-service/internal/services"
	"github.com/poofware/housing-service/internal/utils"
)

// AdminController serves the community management endpoints.
type AdminController struct {
	auth      *services.AuthService
	community *services.CommunityService
	occupants *services.OccupantService
	billing   *services.BillingService
}

func NewAdminController(
	auth *services.AuthService,
	community *services.CommunityService,
	occupants *services.OccupantService,
	billing *services.BillingService,
) *AdminController {
	return &AdminController{auth: auth, community: community, occupants: occupants, billing: billing}
}

// POST /api/v1/admin/login
func (c *AdminController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.AdminLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sess, err := c.auth.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err, "Could not log in")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LoginResponse{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
		Role:        sess.Role,
		ExpiresAt:   sess.ExpiresAt,
	})
}

// POST /api/v1/admin/blocks
func (c *AdminController) AddBlockHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.AddBlockRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	block, err := c.community.AddBlock(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, err, "Could not add block")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.AddBlockResponse{Block: block})
}

// GET /api/v1/admin/blocks
func (c *AdminController) ListBlocksHandler(w http.ResponseWriter, r *http.Request) {
	blocks, err := c.community.ListBlocks(r.Context())
	if err != nil {
		respondServiceError(w, err, "Could not list blocks")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.BlocksResponse{Blocks: blocks})
}

// POST /api/v1/admin/flats
func (c *AdminController) AddFlatHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.AddFlatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	flat, err := c.community.AddFlat(r.Context(), req.BlockNo, req.FlatNo, models.FlatCategory(req.Category))
	if err != nil {
		respondServiceError(w, err, "Could not add flat")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewFlatResponse(flat))
}

// GET /api/v1/admin/flats/unoccupied
func (c *AdminController) ListUnoccupiedFlatsHandler(w http.ResponseWriter, r *http.Request) {
	flats, err := c.community.ListUnoccupiedFlatsInfo(r.Context())
	if err != nil {
		respondServiceError(w, err, "Could not list unoccupied flats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.UnoccupiedFlatsInfoResponse{Flats: flats})
}

// GET /api/v1/admin/flats/occupied
func (c *AdminController) ListOccupiedFlatsHandler(w http.ResponseWriter, r *http.Request) {
	flats, err := c.community.ListOccupiedFlats(r.Context())
	if err != nil {
		respondServiceError(w, err, "Could not list occupied flats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.OccupiedFlatsResponse{Flats: flats})
}

// GET /api/v1/admin/payments
func (c *AdminController) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	records, err := c.occupants.GetPayments(r.Context())
	if err != nil {
		respondServiceError(w, err, "Could not list payments")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewPaymentsResponse(records))
}

// GET /api/v1/admin/occupants
func (c *AdminController) ListOccupantsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.occupants.List(r.Context())
	if err != nil {
		respondServiceError(w, err, "Could not list occupants")
		return
	}
	resp := dtos.OccupantsResponse{Occupants: make([]dtos.OccupantResponse, 0, len(list))}
	for _, o := range list {
		resp.Occupants = append(resp.Occupants, dtos.NewOccupantResponse(o))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/admin/billing/period-start
// Runs the period boundary now. Outside the first day of a month nothing is
// rebilled.
func (c *AdminController) RunBillingPeriodHandler(w http.ResponseWriter, r *http.Request) {
	n, err := c.billing.RunPeriodBoundary(r.Context())
	if err != nil {
		utils.Logger.WithError(err).WithField("rebilled", n).Error("Manual billing run finished with errors")
		respondServiceError(w, err, "Billing run failed")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.BillingRunResponse{Rebilled: n})
}

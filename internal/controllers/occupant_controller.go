package controllers

import (
	"net/http"

	"github.com/poofware/housing-service/internal/dtos"
	"github.com/poofware/housing-service/internal/middleware"
	"github.com/poofware/housing-service/internal/services"
	"github.com/poofware/housing-service/internal/utils"
)

type OccupantController struct {
	auth      *services.AuthService
	community *services.CommunityService
	occupants *services.OccupantService
}

func NewOccupantController(
	auth *services.AuthService,
	community *services.CommunityService,
	occupants *services.OccupantService,
) *OccupantController {
	return &OccupantController{auth: auth, community: community, occupants: occupants}
}

// GET /api/v1/flats/available
// Unoccupied flats for the registration form.
func (c *OccupantController) AvailableFlatsHandler(w http.ResponseWriter, r *http.Request) {
	flats, err := c.community.ListUnoccupiedFlatsInfo(r.Context())
	if err != nil {
		respondServiceError(w, err, "Could not list available flats")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.UnoccupiedFlatsInfoResponse{Flats: flats})
}

// POST /api/v1/occupants/register
func (c *OccupantController) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterOccupantRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	o, err := c.occupants.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, "Could not register occupant")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewOccupantResponse(o))
}

// POST /api/v1/occupants/login
func (c *OccupantController) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sess, o, err := c.auth.OccupantLogin(r.Context(), utils.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		respondServiceError(w, err, "Could not log in")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.LoginResponse{
		AccessToken: sess.Token,
		TokenType:   "Bearer",
		Role:        sess.Role,
		ExpiresAt:   sess.ExpiresAt,
		Name:        o.Name,
	})
}

// GET /api/v1/occupant/amount
func (c *OccupantController) AmountHandler(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No occupant in context", nil)
		return
	}
	o, err := c.occupants.Get(r.Context(), email)
	if err != nil {
		respondServiceError(w, err, "Could not load balance")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.AmountResponse{
		AmountToPay:   o.Amount(),
		BillingStatus: string(o.BillingStatus),
		DueDate:       o.DueDate,
	})
}

// POST /api/v1/occupant/pay
func (c *OccupantController) PayHandler(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No occupant in context", nil)
		return
	}
	res, err := c.occupants.PayBill(r.Context(), email)
	if err != nil {
		respondServiceError(w, err, "Could not settle bill")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.PaymentReceiptResponse{
		AmountPaid:    res.Amount,
		PendingDues:   res.Occupant.PendingDues,
		BillingStatus: string(res.Occupant.BillingStatus),
		PaidAt:        res.PaidAt,
	})
}

// GET /api/v1/occupant/payments
func (c *OccupantController) PaymentsHandler(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No occupant in context", nil)
		return
	}
	records, err := c.occupants.GetPaymentHistory(r.Context(), email)
	if err != nil {
		respondServiceError(w, err, "Could not list payments")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewPaymentsResponse(records))
}

// POST /api/v1/occupant/vacate
func (c *OccupantController) VacateHandler(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No occupant in context", nil)
		return
	}
	if err := c.occupants.Vacate(r.Context(), email); err != nil {
		respondServiceError(w, err, "Could not vacate flat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

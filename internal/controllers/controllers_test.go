package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/poofware/housing-service/internal/app"
	"github.com/poofware/housing-service/internal/config"
	"github.com/poofware/housing-service/internal/constants"
	"github.com/poofware/housing-service/internal/dtos"
	"github.com/poofware/housing-service/internal/middleware"
	"github.com/poofware/housing-service/internal/repositories"
	"github.com/poofware/housing-service/internal/routes"
	"github.com/poofware/housing-service/internal/services"
	"github.com/poofware/housing-service/internal/utils"
)

func TestMain(m *testing.M) {
	utils.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

var testSecret = []byte("controller-secret")

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	adminHash, err := utils.HashPassword("123")
	require.NoError(t, err)
	cfg := &config.Config{
		AppName:           "housing-service",
		StoreDriver:       config.StoreDriverMemory,
		JWTSecret:         testSecret,
		TokenExpiry:       time.Hour,
		AdminUsername:     "Admin",
		AdminPasswordHash: adminHash,
	}
	application := &app.App{Config: cfg, Repos: repositories.NewMemorySet(repositories.NewMemoryStore())}
	repos := application.Repos

	loc := time.FixedZone("IST", 5*3600+1800)
	clock := func() time.Time { return time.Date(2024, time.March, 14, 11, 0, 0, 0, loc) }

	notifier := services.NewNotificationService(8)
	t.Cleanup(notifier.Stop)
	community := services.NewCommunityService(repos.Communities, clock)
	billing := services.NewBillingService(repos.Occupants, clock, 10)
	occupants := services.NewOccupantService(community, repos.Occupants, repos.Payments, billing, notifier, clock)
	clients := services.NewClientService(repos.Clients, clock)
	auth := services.NewAuthService(cfg, repos.Occupants, repos.Clients)
	_, err = community.EnsureEstablished(context.Background())
	require.NoError(t, err)

	health := NewHealthController(application)
	admin := NewAdminController(auth, community, occupants, billing)
	occupant := NewOccupantController(auth, community, occupants)
	client := NewClientController(auth, clients, community)

	r := mux.NewRouter()
	r.HandleFunc(routes.Health, health.HealthCheckHandler).Methods(http.MethodGet)
	r.HandleFunc(routes.AdminLogin, admin.LoginHandler).Methods(http.MethodPost)
	r.HandleFunc(routes.FlatsAvailable, occupant.AvailableFlatsHandler).Methods(http.MethodGet)
	r.HandleFunc(routes.OccupantRegister, occupant.RegisterHandler).Methods(http.MethodPost)
	r.HandleFunc(routes.OccupantLogin, occupant.LoginHandler).Methods(http.MethodPost)
	r.HandleFunc(routes.ClientRegister, client.RegisterHandler).Methods(http.MethodPost)
	r.HandleFunc(routes.ClientLogin, client.LoginHandler).Methods(http.MethodPost)

	a := r.NewRoute().Subrouter()
	a.Use(middleware.AuthMiddleware(testSecret, constants.RoleAdmin))
	a.HandleFunc(routes.AdminBlocks, admin.AddBlockHandler).Methods(http.MethodPost)
	a.HandleFunc(routes.AdminBlocks, admin.ListBlocksHandler).Methods(http.MethodGet)
	a.HandleFunc(routes.AdminFlats, admin.AddFlatHandler).Methods(http.MethodPost)
	a.HandleFunc(routes.AdminUnoccupiedFlats, admin.ListUnoccupiedFlatsHandler).Methods(http.MethodGet)
	a.HandleFunc(routes.AdminOccupiedFlats, admin.ListOccupiedFlatsHandler).Methods(http.MethodGet)
	a.HandleFunc(routes.AdminPayments, admin.ListPaymentsHandler).Methods(http.MethodGet)
	a.HandleFunc(routes.AdminOccupantsListing, admin.ListOccupantsHandler).Methods(http.MethodGet)
	a.HandleFunc(routes.AdminBillingPeriodRun, admin.RunBillingPeriodHandler).Methods(http.MethodPost)

	o := r.NewRoute().Subrouter()
	o.Use(middleware.AuthMiddleware(testSecret, constants.RoleOccupant))
	o.HandleFunc(routes.OccupantAmount, occupant.AmountHandler).Methods(http.MethodGet)
	o.HandleFunc(routes.OccupantPay, occupant.PayHandler).Methods(http.MethodPost)
	o.HandleFunc(routes.OccupantPayments, occupant.PaymentsHandler).Methods(http.MethodGet)
	o.HandleFunc(routes.OccupantVacate, occupant.VacateHandler).Methods(http.MethodPost)

	c := r.NewRoute().Subrouter()
	c.Use(middleware.AuthMiddleware(testSecret, constants.RoleClient))
	c.HandleFunc(routes.ClientFlats, client.FlatsHandler).Methods(http.MethodGet)
	return r
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func adminToken(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, routes.AdminLogin, "", dtos.AdminLoginRequest{Username: "Admin", Password: "123"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[dtos.LoginResponse](t, rr).AccessToken
}

func registerBody(email string) dtos.RegisterOccupantRequest {
	return dtos.RegisterOccupantRequest{
		Name:       "Ravi Kumar",
		Phone:      "9876543210",
		NationalID: "123412341234",
		Email:      email,
		Password:   "secret1",
		BlockNo:    "A",
		FlatNo:     "101",
	}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rr := do(t, h, http.MethodGet, routes.Health, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"OK","store":"memory"}`, rr.Body.String())
}

func TestOccupantFlowOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	admin := adminToken(t, h)

	rr := do(t, h, http.MethodPost, routes.AdminBlocks, admin, dtos.AddBlockRequest{Name: "a"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Equal(t, "A", decode[dtos.AddBlockResponse](t, rr).Block)

	rr = do(t, h, http.MethodPost, routes.AdminFlats, admin, dtos.AddFlatRequest{BlockNo: "A", FlatNo: "101", Category: 2})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, routes.FlatsAvailable, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"flats":[{"block_no":"A","flat_no":"101","category":2}]}`, rr.Body.String())

	rr = do(t, h, http.MethodPost, routes.OccupantRegister, "", registerBody("ravi@example.com"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	reg := decode[dtos.OccupantResponse](t, rr)
	require.EqualValues(t, 700, reg.PendingDues)
	require.Equal(t, "UNPAID", reg.BillingStatus)

	rr = do(t, h, http.MethodPost, routes.OccupantLogin, "", dtos.LoginRequest{Email: "ravi@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	login := decode[dtos.LoginResponse](t, rr)
	require.Equal(t, "Ravi Kumar", login.Name)
	occ := login.AccessToken

	rr = do(t, h, http.MethodGet, routes.OccupantAmount, occ, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.EqualValues(t, 700, decode[dtos.AmountResponse](t, rr).AmountToPay)

	rr = do(t, h, http.MethodPost, routes.OccupantVacate, occ, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, utils.ErrCodePendingDues, decode[utils.ErrorResponse](t, rr).Code)

	rr = do(t, h, http.MethodPost, routes.OccupantPay, occ, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	receipt := decode[dtos.PaymentReceiptResponse](t, rr)
	require.EqualValues(t, 700, receipt.AmountPaid)
	require.EqualValues(t, 0, receipt.PendingDues)
	require.Equal(t, "PAID", receipt.BillingStatus)

	rr = do(t, h, http.MethodPost, routes.OccupantPay, occ, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, utils.ErrCodeNoPendingDues, decode[utils.ErrorResponse](t, rr).Code)

	rr = do(t, h, http.MethodGet, routes.OccupantPayments, occ, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[dtos.PaymentsResponse](t, rr).Payments, 1)

	rr = do(t, h, http.MethodGet, routes.AdminPayments, admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	payments := decode[dtos.PaymentsResponse](t, rr).Payments
	require.Len(t, payments, 1)
	require.EqualValues(t, 700, payments[0].Amount)

	rr = do(t, h, http.MethodGet, routes.AdminOccupiedFlats, admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"flats":[{"block_no":"A","flat_no":"101","name":"Ravi Kumar","phone":"9876543210"}]}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, routes.AdminOccupantsListing, admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[dtos.OccupantsResponse](t, rr).Occupants, 1)

	rr = do(t, h, http.MethodPost, routes.AdminBillingPeriodRun, admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 0, decode[dtos.BillingRunResponse](t, rr).Rebilled)

	rr = do(t, h, http.MethodPost, routes.OccupantVacate, occ, nil)
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, routes.AdminUnoccupiedFlats, admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, decode[dtos.UnoccupiedFlatsInfoResponse](t, rr).Flats, 1)
}

func TestAdminErrorMapping(t *testing.T) {
	h := newTestRouter(t)
	admin := adminToken(t, h)

	rr := do(t, h, http.MethodPost, routes.AdminBlocks, admin, dtos.AddBlockRequest{Name: "A"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = do(t, h, http.MethodPost, routes.AdminBlocks, admin, dtos.AddBlockRequest{Name: "A"})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, utils.ErrCodeDuplicateBlock, decode[utils.ErrorResponse](t, rr).Code)

	rr = do(t, h, http.MethodPost, routes.AdminFlats, admin, dtos.AddFlatRequest{BlockNo: "Q", FlatNo: "1", Category: 1})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, utils.ErrCodeUnknownBlock, decode[utils.ErrorResponse](t, rr).Code)

	rr = do(t, h, http.MethodPost, routes.AdminFlats, admin, dtos.AddFlatRequest{BlockNo: "A", FlatNo: "101", Category: 7})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = do(t, h, http.MethodPost, routes.AdminFlats, admin, dtos.AddFlatRequest{BlockNo: "A", FlatNo: "101", Category: 1})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, utils.ErrCodeDuplicateFlat, decode[utils.ErrorResponse](t, rr).Code)

	rr = do(t, h, http.MethodPost, routes.OccupantRegister, "", registerBody("ravi@example.com"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, utils.ErrCodeNoPaymentStrategy, decode[utils.ErrorResponse](t, rr).Code)

	rr = do(t, h, http.MethodPost, routes.AdminLogin, "", dtos.AdminLoginRequest{Username: "Admin", Password: "nope"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, utils.ErrCodeInvalidCredentials, decode[utils.ErrorResponse](t, rr).Code)
}

func TestValidationAndRoles(t *testing.T) {
	h := newTestRouter(t)

	bad := registerBody("not-an-email")
	bad.Phone = "12345"
	rr := do(t, h, http.MethodPost, routes.OccupantRegister, "", bad)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decode[struct {
		Code    string                       `json:"code"`
		Details []dtos.ValidationErrorDetail `json:"details"`
	}](t, rr)
	require.Equal(t, utils.ErrCodeValidation, resp.Code)
	fields := map[string]string{}
	for _, d := range resp.Details {
		fields[d.Field] = d.Code
	}
	require.Equal(t, "email", fields["Email"])
	require.Equal(t, "phone", fields["Phone"])

	req := httptest.NewRequest(http.MethodPost, routes.AdminLogin, bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rr = do(t, h, http.MethodPost, routes.ClientRegister, "", dtos.RegisterClientRequest{
		Name: "Meera Shah", Phone: "+919876543210", Email: "meera@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = do(t, h, http.MethodPost, routes.ClientRegister, "", dtos.RegisterClientRequest{
		Name: "Meera Shah", Phone: "+919876543210", Email: "meera@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, routes.ClientLogin, "", dtos.LoginRequest{Email: "meera@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rr.Code)
	clientTok := decode[dtos.LoginResponse](t, rr).AccessToken

	rr = do(t, h, http.MethodGet, routes.ClientFlats, clientTok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"flats":[]}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, routes.AdminBlocks, clientTok, nil)
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, h, http.MethodGet, routes.OccupantAmount, "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

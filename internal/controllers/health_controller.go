package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/poofware/housing-service/internal/app"
	"github.com/poofware/housing-service/internal/utils"
)

// HealthController checks store connectivity.
type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{app}
}

type healthCheckResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// HealthCheckHandler => GET /health
func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := c.app.Ping(ctx); err != nil {
		utils.Logger.WithError(err).Error("housing-service store unreachable")
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable, "Database unreachable", nil, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, healthCheckResponse{Status: "OK", Store: c.app.Config.StoreDriver})
}

package controllers

import (
	"time"

	"stockanalyzer/config"

	"github.com/gin-gonic/gin"
)

type HealthControllerI interface {
	IsRunning(ctx *gin.Context)
}

type healthController struct {
	providers config.Providers
}

func NewHealthController(providers config.Providers) HealthControllerI {
	return &healthController{providers: providers}
}

// IsRunning reports liveness plus which paid data providers have keys, so
// the frontend knows which quote sources are live.
func (h *healthController) IsRunning(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":             "ok",
		"timestamp":          time.Now().UTC(),
		"tradier_configured": h.providers.TradierAPIKey != "",
		"fmp_configured":     h.providers.FMPAPIKey != "",
	})
}

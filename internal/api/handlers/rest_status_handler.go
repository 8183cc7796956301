package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"oxyspa/b2b/internal/config"
	"oxyspa/b2b/internal/services"
)

// RestStatusHandler serves the liveness and diagnostics endpoints.
type RestStatusHandler struct {
	cfg               *config.Config
	diagnosticService services.IDiagnosticService
}

func NewRestStatusHandler(cfg *config.Config, diagnosticService services.IDiagnosticService) *RestStatusHandler {
	return &RestStatusHandler{cfg: cfg, diagnosticService: diagnosticService}
}

// Root handles GET /
func (h *RestStatusHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": h.cfg.AppName + " running",
		"version": h.cfg.AppVersion,
	})
}

// Hello handles GET /api/hello
func (h *RestStatusHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from the backend API!"})
}

// Diagnostics handles GET /test. It always answers 200.
func (h *RestStatusHandler) Diagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, h.diagnosticService.Probe(c.Request.Context()))
}

package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"oxyspa/b2b/internal/api/handlers"
	"oxyspa/b2b/internal/api/middleware"
	"oxyspa/b2b/internal/config"
	"oxyspa/b2b/internal/services"
)

// SetupRouter configures and returns the public Gin engine.
func SetupRouter(cfg *config.Config, leadService services.ILeadService, diagnosticService services.IDiagnosticService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.CorsAllowedOrigins))

	statusHandler := handlers.NewRestStatusHandler(cfg, diagnosticService)
	leadHandler := handlers.NewRestLeadHandler(leadService)

	r.GET("/", statusHandler.Root)
	r.GET("/test", statusHandler.Diagnostics)
	r.GET("/schema", leadHandler.GetSchema)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/hello", statusHandler.Hello)
		apiGroup.POST("/leads", leadHandler.CreateLead)
	}

	return r
}

// SetupServiceRouter configures the internal service engine. Bind it to a
// loopback address only.
func SetupServiceRouter(shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method string `json:"method"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "ping":
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "pong"})
		case "shutdown":
			log.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				log.Println("Shutdown signal sent successfully.")
			default:
				log.Println("Shutdown channel already signaled or blocked.")
			}
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}

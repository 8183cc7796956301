package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"oxyspa/b2b/internal/schema"
	"oxyspa/b2b/internal/services"
)

const maxCauseLen = 120

// RestLeadHandler handles the lead capture endpoints.
type RestLeadHandler struct {
	leadService services.ILeadService
}

// NewRestLeadHandler creates a new RestLeadHandler.
func NewRestLeadHandler(leadService services.ILeadService) *RestLeadHandler {
	return &RestLeadHandler{leadService: leadService}
}

// CreateLead handles POST /api/leads
func (h *RestLeadHandler) CreateLead(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON object"})
		return
	}

	id, err := h.leadService.CreateLead(c.Request.Context(), payload)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "details": verr.Errors})
			return
		}
		_ = c.Error(err)
		log.Printf("Failed to save lead: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save lead: " + truncate(err.Error(), maxCauseLen)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "id": id})
}

// GetSchema handles GET /schema
func (h *RestLeadHandler) GetSchema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lead": schema.LeadJSONSchema()})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aa-ray-man/safehaven/internal/models"
	"github.com/aa-ray-man/safehaven/internal/service"
	"github.com/aa-ray-man/safehaven/pkg/response"
)

// SOSHandler handles emergency SMS dispatch requests.
type SOSHandler struct {
	sos *service.SOSService
}

// NewSOSHandler creates a new SOS handler.
func NewSOSHandler(sos *service.SOSService) *SOSHandler {
	return &SOSHandler{sos: sos}
}

// SendSOS handles POST /api/v1/sos.
func (h *SOSHandler) SendSOS(c *gin.Context) {
	var req models.SendSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Missing required fields: contacts, message, or location", err)
		return
	}

	userID := c.GetString("userID")
	result := h.sos.Send(req, userID)

	if len(result.Sent) == 0 {
		response.Error(c, http.StatusBadGateway, "Failed to reach any contact", nil)
		return
	}
	response.Success(c, result)
}

package httpHandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"farm-hub/services"
)

type HistoryHandler struct {
	svc *services.HistoryQueryService
}

func NewHistoryHandler(svc *services.HistoryQueryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// GetHistory handles GET /api/v1/history?sensor=<signal>&espId=<id>.
// Success is a msgpack-encoded {values: [{timestamp, value}, ...]} body;
// errors come back as small JSON objects.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	sensor := c.Query("sensor")
	espID := c.Query("espId")
	if espID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing espId"})
		return
	}

	points, err := h.svc.Query(espID, sensor)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignal) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sensor type requested"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read history"})
		return
	}

	body, err := services.Encode(points)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode history"})
		return
	}
	c.Data(http.StatusOK, "application/x-msgpack", body)
}

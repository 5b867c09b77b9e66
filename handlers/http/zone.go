package httpHandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farm-hub/usecases"
)

type ZoneHandler struct {
	useCase *usecases.ProvisionUseCase
}

func NewZoneHandler(useCase *usecases.ProvisionUseCase) *ZoneHandler {
	return &ZoneHandler{useCase: useCase}
}

type createZoneRequest struct {
	UID   string `json:"uid" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

type createSubzoneRequest struct {
	UID   string `json:"uid" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
	EspID string `json:"esp_id" binding:"required"`
}

// CreateZone handles POST /api/v1/zones
func (h *ZoneHandler) CreateZone(c *gin.Context) {
	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	zone, err := h.useCase.CreateZone(req.UID, req.Name, req.Color)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Zone created successfully", "data": zone})
}

// GetZones handles GET /api/v1/owners/:uid/zones
func (h *ZoneHandler) GetZones(c *gin.Context) {
	zones, err := h.useCase.GetZones(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": zones, "count": len(zones)})
}

// DeleteZone handles DELETE /api/v1/zones/:id?uid=<uid>
func (h *ZoneHandler) DeleteZone(c *gin.Context) {
	if err := h.useCase.DeleteZone(c.Query("uid"), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Zone deleted successfully"})
}

// CreateSubzone handles POST /api/v1/zones/:id/subzones
func (h *ZoneHandler) CreateSubzone(c *gin.Context) {
	var req createSubzoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	subzone, err := h.useCase.CreateSubzone(req.UID, c.Param("id"), req.Name, req.Color, req.EspID)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Subzone created successfully", "data": subzone})
}

// DeleteSubzone handles DELETE /api/v1/subzones/:id?uid=<uid>
func (h *ZoneHandler) DeleteSubzone(c *gin.Context) {
	if err := h.useCase.DeleteSubzone(c.Query("uid"), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subzone deleted successfully"})
}

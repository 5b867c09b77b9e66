package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farm-hub/cache"
	"farm-hub/services"
)

// BufferHandler exposes the in-memory history buffer for operations: stats
// and a manual flush trigger.
type BufferHandler struct {
	store   *cache.HistoryStore
	flusher *services.Flusher
}

func NewBufferHandler(store *cache.HistoryStore, flusher *services.Flusher) *BufferHandler {
	return &BufferHandler{store: store, flusher: flusher}
}

// Flush POST /api/v1/buffer/flush
func (h *BufferHandler) Flush(c *gin.Context) {
	h.flusher.Flush()
	c.JSON(http.StatusOK, gin.H{"status": "flushed"})
}

// Stats GET /api/v1/buffer/stats
func (h *BufferHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"stats":  h.store.Stats(),
	})
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type pushConfigResponse struct {
	PublicKey  string `json:"public_key"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// GetVAPIDPublicKey returns what a browser needs to subscribe to booth
// availability pushes. Push is off when no key pair is configured.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" || h.webpush.VAPIDPrivateKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are disabled"})
		return
	}

	c.JSON(http.StatusOK, pushConfigResponse{
		PublicKey:  h.webpush.VAPIDPublicKey,
		TTLSeconds: h.webpush.TTL,
	})
}

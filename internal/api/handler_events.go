package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const eventBuffer = 16

// StreamEvents handles GET /api/events, pushing booth changes as
// Server-Sent Events until the client goes away.
func (h *Handler) StreamEvents(c *gin.Context) {
	if h.feed == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "event stream is not available"})
		return
	}

	events, cancel := h.feed.Subscribe(eventBuffer)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Kind), ev)
			return true
		}
	})
}

package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"boothnow-backend/internal/booking"
	"boothnow-backend/internal/notification"
	"boothnow-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	booking *booking.Service
	store   store.Store
	webpush *webpush.Options
	feed    *notification.Feed
	now     func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(b *booking.Service, s store.Store, webpushOptions *webpush.Options, feed *notification.Feed) *Handler {
	return &Handler{
		booking: b,
		store:   s,
		webpush: webpushOptions,
		feed:    feed,
		now:     time.Now,
	}
}

// statusFor maps booking errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrNotAvailable), errors.Is(err, booking.ErrConflict), errors.Is(err, booking.ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, booking.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, booking.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrCancellationWindow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, booking.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		msg = "Temporary failure, please retry"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"boothnow-backend/internal/booking"
	"boothnow-backend/internal/model"
	"boothnow-backend/internal/mw"
	"boothnow-backend/internal/parse"
)

type preBookRequest struct {
	durationRequest
	StartTime string `json:"start_time"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Timezone  string `json:"timezone"`
}

// PreBook handles POST /api/booths/:id/reservations.
func (h *Handler) PreBook(c *gin.Context) {
	var req preBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	minutes, err := req.minutes()
	if err != nil {
		writeError(c, err)
		return
	}
	start, err := parse.StartTime(parse.StartInput{
		StartTime: req.StartTime,
		Date:      req.Date,
		Time:      req.Time,
		Timezone:  req.Timezone,
	})
	if err != nil {
		writeError(c, fmt.Errorf("%w: %v", booking.ErrInvalidInput, err))
		return
	}

	reservation, err := h.booking.PreBook(c.Request.Context(), c.Param("id"), mw.UserID(c), start, minutes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

// CancelReservation handles POST /api/reservations/:id/cancel.
func (h *Handler) CancelReservation(c *gin.Context) {
	reservation, err := h.booking.CancelReservation(c.Request.Context(), c.Param("id"), mw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// ListMyReservations handles GET /api/me/reservations.
func (h *Handler) ListMyReservations(c *gin.Context) {
	reservations, err := h.booking.ListReservations(c.Request.Context(), mw.UserID(c), model.ReservationStatus(c.Query("status")))
	if err != nil {
		writeError(c, err)
		return
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}
	c.JSON(http.StatusOK, reservations)
}

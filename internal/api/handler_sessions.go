package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"boothnow-backend/internal/billing"
	"boothnow-backend/internal/booking"
	"boothnow-backend/internal/model"
	"boothnow-backend/internal/mw"
	"boothnow-backend/internal/parse"
)

// durationRequest accepts either a number of minutes or a duration string like "1h30m".
type durationRequest struct {
	DurationMinutes int    `json:"duration_minutes"`
	Duration        string `json:"duration"`
}

func (r durationRequest) minutes() (int, error) {
	if r.DurationMinutes != 0 {
		if r.DurationMinutes < 0 {
			return 0, fmt.Errorf("%w: duration_minutes must be positive", booking.ErrInvalidInput)
		}
		return r.DurationMinutes, nil
	}
	m, err := parse.DurationMinutes(r.Duration)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", booking.ErrInvalidInput, err)
	}
	return m, nil
}

// BookNow handles POST /api/booths/:id/sessions.
func (h *Handler) BookNow(c *gin.Context) {
	var req durationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	minutes, err := req.minutes()
	if err != nil {
		writeError(c, err)
		return
	}

	session, err := h.booking.BookNow(c.Request.Context(), c.Param("id"), mw.UserID(c), minutes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// EndSession handles POST /api/sessions/:id/end.
func (h *Handler) EndSession(c *gin.Context) {
	session, err := h.booking.EndSession(c.Request.Context(), c.Param("id"), mw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":      session,
		"display_cost": billing.Round2(session.TotalCost),
	})
}

type liveCostResponse struct {
	SessionID            string              `json:"session_id"`
	Status               model.SessionStatus `json:"status"`
	ElapsedSeconds       int64               `json:"elapsed_seconds"`
	CurrentCost          float64             `json:"current_cost"`
	DisplayCost          float64             `json:"display_cost"`
	TimeRemainingSeconds int64               `json:"time_remaining_seconds"`
	Deadline             time.Time           `json:"deadline"`
}

// GetLiveCost handles GET /api/sessions/:id/live.
func (h *Handler) GetLiveCost(c *gin.Context) {
	session, live, err := h.booking.LiveCost(c.Request.Context(), c.Param("id"), mw.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, liveCostResponse{
		SessionID:            session.ID,
		Status:               session.Status,
		ElapsedSeconds:       live.ElapsedSeconds,
		CurrentCost:          live.CurrentCost,
		DisplayCost:          billing.Round2(live.CurrentCost),
		TimeRemainingSeconds: live.TimeRemainingSeconds,
		Deadline:             session.Deadline(),
	})
}

// ListMySessions handles GET /api/me/sessions.
func (h *Handler) ListMySessions(c *gin.Context) {
	sessions, err := h.booking.ListSessions(c.Request.Context(), mw.UserID(c), model.SessionStatus(c.Query("status")))
	if err != nil {
		writeError(c, err)
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

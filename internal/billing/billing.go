// Package billing computes elapsed time and accrued cost for booth sessions.
package billing

import (
	"math"
	"time"

	"boothnow-backend/internal/model"
)

// LiveCost is the running state of a session at an instant.
type LiveCost struct {
	ElapsedSeconds       int64   `json:"elapsed_seconds"`
	CurrentCost          float64 `json:"current_cost"`
	TimeRemainingSeconds int64   `json:"time_remaining_seconds"`
}

// ComputeLiveCost evaluates the session's elapsed time, accrued cost and
// remaining time at now. It never touches persisted state.
func ComputeLiveCost(session model.Session, now time.Time) LiveCost {
	elapsed := int64(now.Sub(session.StartTime) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := int64(session.MaxDurationMinutes)*60 - elapsed
	if remaining < 0 {
		remaining = 0
	}

	return LiveCost{
		ElapsedSeconds:       elapsed,
		CurrentCost:          float64(elapsed) / 60 * session.CostPerMinute,
		TimeRemainingSeconds: remaining,
	}
}

// Settlement is what gets persisted when a session ends.
type Settlement struct {
	TotalMinutes int
	TotalCost    float64
}

// Settle computes the final totals for a session ending at end.
// TotalCost is the live cost evaluated at the same instant, kept at full precision.
func Settle(session model.Session, end time.Time) Settlement {
	live := ComputeLiveCost(session, end)
	return Settlement{
		TotalMinutes: int(live.ElapsedSeconds / 60),
		TotalCost:    live.CurrentCost,
	}
}

// Round2 rounds an amount to cents for display or charging.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

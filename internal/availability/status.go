// Package availability turns a booth's raw occupancy fields into the status
// shown to users. Everything here is pure: same booth and clock, same answer.
package availability

import (
	"fmt"
	"math"
	"time"

	"boothnow-backend/internal/model"
)

// Kind is the user-facing availability class of a booth.
type Kind string

const (
	KindAvailableNow     Kind = "available-now"
	KindBusy             Kind = "busy-with-eta"
	KindReservedSoon     Kind = "reserved-soon-but-available"
	KindReserved         Kind = "reserved"
	KindUnderMaintenance Kind = "under-maintenance"
	KindUnknown          Kind = "unknown"
)

const (
	// WarningWindow is how long before a reservation starts the booth is flagged as reserved soon.
	WarningWindow = 60 * time.Minute
	// LockWindow is how long before a reservation starts the booth stops being usable.
	LockWindow = 30 * time.Minute
)

// DisplayStatus is the derived, never persisted, status of a booth at an instant.
type DisplayStatus struct {
	Kind     Kind   `json:"kind"`
	Label    string `json:"label"`
	Subtitle string `json:"subtitle,omitempty"`
	// Bookable is true when the booth can be used right now.
	Bookable bool `json:"bookable"`
	// FreeForMinutes is set for available-now booths.
	FreeForMinutes int `json:"free_for_minutes,omitempty"`
	// MinutesUntilFree is set for busy booths.
	MinutesUntilFree int `json:"minutes_until_free,omitempty"`
	// MinutesUntilLock is set for reserved-soon booths.
	MinutesUntilLock int `json:"minutes_until_lock,omitempty"`
	// ReservedAt is the start of the upcoming reservation for prebooked booths.
	ReservedAt *time.Time `json:"reserved_at,omitempty"`
}

// DeriveStatus computes the display status of booth at now.
func DeriveStatus(booth model.Booth, now time.Time) DisplayStatus {
	switch booth.OccupancyStatus {
	case model.OccupancyMaintenance:
		return DisplayStatus{
			Kind:  KindUnderMaintenance,
			Label: "Under maintenance",
		}
	case model.OccupancyAvailable:
		return availableNow(booth)
	case model.OccupancyBusy:
		if booth.OccupiedUntil == nil {
			return availableNow(booth)
		}
		mins := ceilMinutes(booth.OccupiedUntil.Sub(now))
		return DisplayStatus{
			Kind:             KindBusy,
			Label:            "Busy",
			Subtitle:         fmt.Sprintf("Free in %d min", mins),
			MinutesUntilFree: mins,
		}
	case model.OccupancyPrebooked:
		if booth.OccupiedUntil == nil {
			return availableNow(booth)
		}
		return prebooked(booth, *booth.OccupiedUntil, now)
	default:
		return DisplayStatus{Kind: KindUnknown, Label: "Status unknown"}
	}
}

func prebooked(booth model.Booth, reservationStart, now time.Time) DisplayStatus {
	warningStart := reservationStart.Add(-WarningWindow)
	lockStart := reservationStart.Add(-LockWindow)
	start := reservationStart

	switch {
	case !now.Before(lockStart):
		return DisplayStatus{
			Kind:       KindReserved,
			Label:      "Reserved",
			Subtitle:   "Reserved at " + start.UTC().Format("15:04 MST"),
			ReservedAt: &start,
		}
	case !now.Before(warningStart):
		mins := ceilMinutes(lockStart.Sub(now))
		return DisplayStatus{
			Kind:             KindReservedSoon,
			Label:            "Available now",
			Subtitle:         fmt.Sprintf("Reserved soon, locks in %d min", mins),
			Bookable:         true,
			MinutesUntilLock: mins,
			ReservedAt:       &start,
		}
	default:
		return availableNow(booth)
	}
}

func availableNow(booth model.Booth) DisplayStatus {
	return DisplayStatus{
		Kind:           KindAvailableNow,
		Label:          "Available now",
		Subtitle:       fmt.Sprintf("Free for %d min", booth.SlotLengthMinutes),
		Bookable:       true,
		FreeForMinutes: booth.SlotLengthMinutes,
	}
}

// ceilMinutes rounds d up to whole minutes, floored at zero.
func ceilMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}

package api

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"boothnow-backend/internal/availability"
	"boothnow-backend/internal/geo"
	"boothnow-backend/internal/model"
	"boothnow-backend/internal/store"
)

// boothResponse is a booth together with what it means to a user right now.
type boothResponse struct {
	model.Booth
	Status     availability.DisplayStatus `json:"status"`
	DistanceKm *float64                   `json:"distance_km,omitempty"`
}

// ListBooths handles GET /api/booths.
func (h *Handler) ListBooths(c *gin.Context) {
	filter := store.BoothFilter{Query: c.Query("q")}
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, model.OccupancyStatus(strings.TrimSpace(s)))
		}
	}

	center, near, radius, ok := parseNear(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid lat, lng or radius_km"})
		return
	}

	booths, err := h.booking.ListBooths(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	now := h.now()
	response := make([]boothResponse, 0, len(booths))
	for _, b := range booths {
		item := boothResponse{Booth: b, Status: availability.DeriveStatus(b, now)}
		if near {
			d := geo.DistanceKm(center, geo.Point{Lat: b.Lat, Lng: b.Lng})
			if radius > 0 && d > radius {
				continue
			}
			item.DistanceKm = &d
		}
		response = append(response, item)
	}

	if near {
		slices.SortStableFunc(response, func(a, b boothResponse) int {
			switch {
			case *a.DistanceKm < *b.DistanceKm:
				return -1
			case *a.DistanceKm > *b.DistanceKm:
				return 1
			}
			return 0
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetBooth handles GET /api/booths/:id.
func (h *Handler) GetBooth(c *gin.Context) {
	b, err := h.booking.GetBooth(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, boothResponse{Booth: *b, Status: availability.DeriveStatus(*b, h.now())})
}

// parseNear reads the optional lat/lng/radius_km query. near is false when no
// position was given; ok is false when the position is malformed.
func parseNear(c *gin.Context) (center geo.Point, near bool, radius float64, ok bool) {
	latRaw, lngRaw := c.Query("lat"), c.Query("lng")
	if latRaw == "" && lngRaw == "" {
		return geo.Point{}, false, 0, true
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return geo.Point{}, false, 0, false
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil || lng < -180 || lng > 180 {
		return geo.Point{}, false, 0, false
	}
	if raw := c.Query("radius_km"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius < 0 {
			return geo.Point{}, false, 0, false
		}
	}
	return geo.Point{Lat: lat, Lng: lng}, true, radius, true
}

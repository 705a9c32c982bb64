package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	berlin := Point{Lat: 52.5200, Lng: 13.4050}
	munich := Point{Lat: 48.1351, Lng: 11.5820}

	assert.InDelta(t, 504, DistanceKm(berlin, munich), 5)
	assert.InDelta(t, DistanceKm(berlin, munich), DistanceKm(munich, berlin), 1e-9)
	assert.Zero(t, DistanceKm(berlin, berlin))
}

func TestWithin(t *testing.T) {
	center := Point{Lat: 40.7128, Lng: -74.0060}
	near := Point{Lat: 40.7306, Lng: -73.9352} // ~6 km
	far := Point{Lat: 40.6413, Lng: -73.7781}  // ~21 km

	assert.True(t, Within(center, near, 10))
	assert.False(t, Within(center, far, 10))
	assert.True(t, Within(center, far, 0))
}

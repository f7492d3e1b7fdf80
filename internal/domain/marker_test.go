package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMarkerColorFor(t *testing.T) {
	assert.Equal(t, MarkerGreen, MarkerColorFor(0))
	assert.Equal(t, MarkerGreen, MarkerColorFor(50))
	assert.Equal(t, MarkerAmber, MarkerColorFor(50.1))
	assert.Equal(t, MarkerAmber, MarkerColorFor(80))
	assert.Equal(t, MarkerRed, MarkerColorFor(80.1))
	assert.Equal(t, MarkerRed, MarkerColorFor(100))
}

func TestMapSearchURL(t *testing.T) {
	url := MapSearchURL("https://www.google.com/maps", "Bãi xe Trung Tâm", 21.028511, 105.804817, 17)
	assert.Equal(t, "https://www.google.com/maps/search/B%C3%A3i%20xe%20Trung%20T%C3%A2m/@21.028511,105.804817,17z", url)
}

func TestBuildMarkerView(t *testing.T) {
	area := ParkingArea{
		ID:         uuid.New(),
		Name:       "Lot A",
		Latitude:   10.5,
		Longitude:  106.25,
		TotalSlots: 10,
	}
	snap := OccupancySnapshot{
		ParkingAreaID:       area.ID,
		TotalSlots:          10,
		Free:                1,
		Occupied:            7,
		Reserved:            2,
		OccupancyPercentage: 90,
	}

	view := BuildMarkerView(area, snap, "https://www.google.com/maps", 17)

	assert.Equal(t, area.ID, view.ParkingAreaID)
	assert.Equal(t, MarkerRed, view.Color)
	assert.Equal(t, "1 free", view.FreeLabel)
	assert.Equal(t, "https://www.google.com/maps/search/Lot%20A/@10.5,106.25,17z", view.MapSearchURL)
	assert.Equal(t, snap, view.Occupancy)
}

package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makeSlots(statuses ...SlotStatus) []Slot {
	slots := make([]Slot, 0, len(statuses))
	for i, st := range statuses {
		slots = append(slots, Slot{
			ID:         uuid.New(),
			SlotNumber: i + 1,
			Status:     st,
		})
	}
	return slots
}

func TestAggregateOccupancy(t *testing.T) {
	areaID := uuid.New()

	slots := makeSlots(
		SlotFree, SlotFree, SlotFree, SlotFree, SlotFree, SlotFree,
		SlotOccupied, SlotOccupied, SlotOccupied,
		SlotReserved,
	)

	snap := AggregateOccupancy(areaID, slots, 10)

	assert.Equal(t, areaID, snap.ParkingAreaID)
	assert.Equal(t, 10, snap.TotalSlots)
	assert.Equal(t, 6, snap.Free)
	assert.Equal(t, 3, snap.Occupied)
	assert.Equal(t, 1, snap.Reserved)
	assert.Equal(t, 0, snap.Unknown)
	assert.InDelta(t, 40.0, snap.OccupancyPercentage, 1e-9)
}

func TestAggregateOccupancyZeroTotal(t *testing.T) {
	snap := AggregateOccupancy(uuid.New(), nil, 0)
	assert.Equal(t, 0, snap.Free)
	assert.Equal(t, 0.0, snap.OccupancyPercentage)
}

func TestAggregateOccupancyUnknownStatus(t *testing.T) {
	slots := makeSlots(SlotFree, SlotStatus("maintenance"), SlotStatus(""))

	snap := AggregateOccupancy(uuid.New(), slots, 3)

	assert.Equal(t, 1, snap.Free)
	assert.Equal(t, 2, snap.Unknown)
	// Trạng thái lạ không được tính vào tỷ lệ lấp đầy.
	assert.Equal(t, 0.0, snap.OccupancyPercentage)
}

func TestAggregateOccupancyAllOccupied(t *testing.T) {
	slots := makeSlots(SlotOccupied, SlotOccupied, SlotReserved)

	snap := AggregateOccupancy(uuid.New(), slots, 3)

	assert.InDelta(t, 100.0, snap.OccupancyPercentage, 1e-9)
}

func TestAggregateOccupancyClampsOverCapacity(t *testing.T) {
	// Admin hạ total_slots xuống dưới số slot đang tồn tại: tỷ lệ vẫn
	// phải nằm trong [0, 100].
	slots := makeSlots(SlotOccupied, SlotOccupied, SlotOccupied)

	snap := AggregateOccupancy(uuid.New(), slots, 2)

	assert.Equal(t, 3, snap.Occupied)
	assert.Equal(t, 2, snap.TotalSlots)
	assert.InDelta(t, 100.0, snap.OccupancyPercentage, 1e-9)
}

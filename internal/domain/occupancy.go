package domain

import "github.com/google/uuid"

// OccupancySnapshot là số liệu tổng hợp trạng thái slot của một khu vực
// tại một thời điểm. Chỉ là dữ liệu dẫn xuất, tính lại mỗi lần slot thay
// đổi, không bao giờ lưu xuống DB.
type OccupancySnapshot struct {
	ParkingAreaID       uuid.UUID `json:"parking_area_id"`
	TotalSlots          int       `json:"total_slots"`
	Free                int       `json:"free"`
	Occupied            int       `json:"occupied"`
	Reserved            int       `json:"reserved"`
	Unknown             int       `json:"unknown"` // Trạng thái ngoài free/occupied/reserved
	OccupancyPercentage float64   `json:"occupancy_percentage"`
}

// AggregateOccupancy gom trạng thái các slot của một khu vực thành snapshot.
// occupancy_percentage = 100 * (occupied + reserved) / totalSlots khi
// totalSlots > 0, ngược lại là 0, và luôn nằm trong [0, 100]: admin có
// thể hạ total_slots xuống dưới số slot đang tồn tại, khi đó tỷ lệ bị
// chặn ở 100 thay vì vượt trần. Hàm thuần, không side effect.
func AggregateOccupancy(areaID uuid.UUID, slots []Slot, totalSlots int) OccupancySnapshot {
	snap := OccupancySnapshot{ParkingAreaID: areaID, TotalSlots: totalSlots}
	for _, slot := range slots {
		switch slot.Status {
		case SlotFree:
			snap.Free++
		case SlotOccupied:
			snap.Occupied++
		case SlotReserved:
			snap.Reserved++
		default:
			snap.Unknown++
		}
	}
	if totalSlots > 0 {
		snap.OccupancyPercentage = 100 * float64(snap.Occupied+snap.Reserved) / float64(totalSlots)
		if snap.OccupancyPercentage > 100 {
			snap.OccupancyPercentage = 100
		}
	}
	return snap
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotFree     SlotStatus = "free"
	SlotOccupied SlotStatus = "occupied"
	SlotReserved SlotStatus = "reserved"
)

// IsKnown cho biết status có thuộc ba trạng thái chuẩn hay không.
// Các giá trị khác (dữ liệu cũ, monitor gửi sai) được gom vào bucket "unknown".
func (s SlotStatus) IsKnown() bool {
	return s == SlotFree || s == SlotOccupied || s == SlotReserved
}

type Slot struct {
	ID                     uuid.UUID  `json:"id"`
	ParkingAreaID          uuid.UUID  `json:"parking_area_id"`
	SlotNumber             int        `json:"slot_number"` // Đánh số từ 1 trong mỗi khu vực
	Status                 SlotStatus `json:"status"`
	LastStatusUpdateSource string     `json:"last_status_update_source,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

type SlotDTO struct {
	ParkingAreaID uuid.UUID `json:"parking_area_id" binding:"required"`
	SlotNumber    int       `json:"slot_number" binding:"required,min=1"`
	Status        string    `json:"status,omitempty"`
}

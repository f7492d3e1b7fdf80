package domain

import (
	"time"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	ID          uuid.UUID         `json:"id"`
	UserID      int               `json:"user_id"`
	SlotID      uuid.UUID         `json:"slot_id"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	Status      ReservationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	CancelledAt null.Time         `json:"cancelled_at,omitempty"`
}

// CreateReservationDTO nhận thời gian dạng chuỗi RFC3339 từ client
// và được service parse + validate trước khi ghi.
type CreateReservationDTO struct {
	SlotID    uuid.UUID `json:"slot_id" binding:"required"`
	StartTime string    `json:"start_time" binding:"required"`
	EndTime   string    `json:"end_time" binding:"required"`
}

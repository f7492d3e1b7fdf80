package domain

import (
	"time"

	"github.com/google/uuid"
)

// Prediction do tiến trình dự báo bên ngoài sinh ra, ở đây chỉ đọc.
type Prediction struct {
	ID           uuid.UUID `json:"id"`
	SlotID       uuid.UUID `json:"slot_id"`
	PredictedFor time.Time `json:"predicted_for"`
	Probability  float64   `json:"probability"` // Xác suất slot bị chiếm, trong [0,1]
	CreatedAt    time.Time `json:"created_at"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParkingArea struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	TotalSlots int       `json:"total_slots"`
	Password   string    `json:"-"` // Mật khẩu khu vực cho monitor, không bao giờ trả về trong JSON
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ParkingAreaDTO struct {
	Name       string  `json:"name" binding:"required"`
	Latitude   float64 `json:"latitude" binding:"required"`
	Longitude  float64 `json:"longitude" binding:"required"`
	TotalSlots int     `json:"total_slots"`
	Password   string  `json:"password,omitempty"`
}

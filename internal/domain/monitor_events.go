package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenericMonitorEvent dùng để parse bước đầu, lấy message_type và các
// trường chung mà mọi event từ vision monitor đều có.
type GenericMonitorEvent struct {
	SystemID    string          `json:"system_id"`
	MessageType string          `json:"message_type"` // "slot_status", "heartbeat", "going_offline"
	Timestamp   string          `json:"timestamp"`    // ISO 8601 UTC string từ monitor
	RawPayload  json.RawMessage `json:"-"`            // Payload gốc, lưu lại để audit
}

// MonitorSlotStatusEvent: monitor phát hiện một slot đổi trạng thái
// (xe vào / xe ra) qua camera.
type MonitorSlotStatusEvent struct {
	GenericMonitorEvent
	ParkingAreaID uuid.UUID `json:"parking_area_id"`
	SlotNumber    int       `json:"slot_number"`
	IsOccupied    bool      `json:"is_occupied"`
	ChangedAt     string    `json:"changed_at,omitempty"`
}

// MonitorHeartbeatEvent: monitor báo còn sống, kèm vị trí đặt camera.
type MonitorHeartbeatEvent struct {
	GenericMonitorEvent
	Location string `json:"location,omitempty"`
}

// MonitorGoingOfflineEvent: monitor chủ động báo tắt (shutdown sạch).
// Last heartbeat được giữ nguyên, chỉ đổi status sang offline.
type MonitorGoingOfflineEvent struct {
	GenericMonitorEvent
	Reason string `json:"reason,omitempty"`
}

// MonitorEventLog lưu payload gốc của mọi event nhận được vào DB để audit.
type MonitorEventLog struct {
	ID              int64           `json:"id"`
	ReceivedAt      time.Time       `json:"received_at"`
	SystemID        string          `json:"system_id"`
	MessageType     string          `json:"message_type"`
	Payload         json.RawMessage `json:"payload"`
	ProcessedStatus string          `json:"processed_status"` // "pending", "processed", "error"
	ProcessingNotes string          `json:"processing_notes,omitempty"`
}

// MonitorClaimDTO: monitor xác thực vào một khu vực bằng mật khẩu khu vực
// để nhận token ingest (luồng chọn-khu-vực của monitor).
type MonitorClaimDTO struct {
	ParkingAreaID uuid.UUID `json:"parking_area_id" binding:"required"`
	Password      string    `json:"password" binding:"required"`
	SystemID      string    `json:"system_id" binding:"required"`
}

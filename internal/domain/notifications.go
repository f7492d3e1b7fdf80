package domain

import "github.com/google/uuid"

type ChangeAction string

const (
	ChangeInsert ChangeAction = "insert"
	ChangeUpdate ChangeAction = "update"
	ChangeDelete ChangeAction = "delete"
)

// ChangeNotification là sự kiện thay đổi dữ liệu đẩy xuống frontend qua
// WebSocket. Cố ý chỉ mang định danh, không mang bản ghi: client nhận
// xong tự fetch lại (đổi băng thông lấy sự đơn giản).
type ChangeNotification struct {
	Table         string       `json:"table"`
	Action        ChangeAction `json:"action"`
	ID            string       `json:"id,omitempty"`
	ParkingAreaID *uuid.UUID   `json:"parking_area_id,omitempty"`
}

// RealtimeMessage là envelope chung cho mọi message WebSocket.
type RealtimeMessage struct {
	Type    string      `json:"type"` // "change", "marker_activation", "system_health"
	Payload interface{} `json:"payload"`
}

const (
	RealtimeTypeChange           = "change"
	RealtimeTypeMarkerActivation = "marker_activation"
	RealtimeTypeSystemHealth     = "system_health"
)

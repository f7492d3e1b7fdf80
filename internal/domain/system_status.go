package domain

import (
	"fmt"
	"time"

	"gopkg.in/guregu/null.v4"
)

const (
	SystemOnline  = "online"
	SystemOffline = "offline"
)

// SystemStatus là bản ghi heartbeat của một monitor vật lý (một bản ghi
// cho mỗi system_id). Monitor ghi, phía này chỉ đọc và phân loại.
type SystemStatus struct {
	SystemID      string      `json:"system_id"`
	Status        string      `json:"status"`
	Location      null.String `json:"location,omitempty"`
	LastHeartbeat null.Time   `json:"last_heartbeat,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type HealthLevel string

const (
	HealthHealthy  HealthLevel = "healthy"
	HealthWarning  HealthLevel = "warning"
	HealthCritical HealthLevel = "critical"
)

// ClassifyHealth phân loại sức khỏe của một hệ thống monitor.
// Quy tắc: online -> healthy; offline hoặc status lạ hoặc không có bản
// ghi -> critical. Khi staleAfter > 0, hệ thống online nhưng heartbeat
// cũ hơn ngưỡng sẽ bị hạ xuống warning; staleAfter = 0 tắt quy tắc này.
func ClassifyHealth(st *SystemStatus, now time.Time, staleAfter time.Duration) HealthLevel {
	if st == nil {
		return HealthCritical
	}
	switch st.Status {
	case SystemOnline:
		if staleAfter > 0 && st.LastHeartbeat.Valid && now.Sub(st.LastHeartbeat.Time) > staleAfter {
			return HealthWarning
		}
		return HealthHealthy
	case SystemOffline:
		return HealthCritical
	default:
		return HealthCritical
	}
}

// LastSeenText trả về chuỗi "time since heartbeat" hiển thị cho client.
func LastSeenText(st *SystemStatus, now time.Time) string {
	if st == nil || !st.LastHeartbeat.Valid {
		return "Never"
	}
	age := now.Sub(st.LastHeartbeat.Time)
	if age < 0 {
		age = 0
	}
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	}
}

// SystemHealthView là kết quả phân loại trả về qua API và WebSocket.
type SystemHealthView struct {
	SystemID      string      `json:"system_id"`
	Health        HealthLevel `json:"health"`
	Status        string      `json:"status,omitempty"`
	Location      string      `json:"location,omitempty"`
	LastHeartbeat null.Time   `json:"last_heartbeat,omitempty"`
	LastSeen      string      `json:"last_seen"`
	Loading       bool        `json:"loading,omitempty"` // true khi vừa đổi system_id, chưa fetch xong
}

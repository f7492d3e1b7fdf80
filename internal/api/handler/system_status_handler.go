package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rutvikswami/smartpark-complete/internal/service"
)

type SystemStatusHandler struct {
	statusService *service.StatusService
	statusMonitor *service.StatusMonitor
}

func NewSystemStatusHandler(ss *service.StatusService, sm *service.StatusMonitor) *SystemStatusHandler {
	return &SystemStatusHandler{statusService: ss, statusMonitor: sm}
}

// GET /system-status
func (h *SystemStatusHandler) ListSystems(c *gin.Context) {
	views, err := h.statusService.ListSystems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách hệ thống"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// GET /system-status/:system_id
// Không có bản ghi vẫn trả 200: hệ thống chưa từng heartbeat được phân
// loại critical với last_seen = "Never".
func (h *SystemStatusHandler) GetSystemHealth(c *gin.Context) {
	systemID := c.Param("system_id")
	if systemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu system_id"})
		return
	}

	view, err := h.statusService.GetSystemHealth(c.Request.Context(), systemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi phân loại trạng thái hệ thống"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /system-status/:system_id/watch
// Chọn hệ thống cho StatusMonitor theo dõi; các cập nhật tiếp theo được
// đẩy qua WebSocket.
func (h *SystemStatusHandler) WatchSystem(c *gin.Context) {
	systemID := c.Param("system_id")
	if systemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu system_id"})
		return
	}

	h.statusMonitor.SetSystem(systemID)
	c.JSON(http.StatusAccepted, gin.H{"status": "watching", "system_id": systemID})
}

package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/api/middleware"
	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
	"github.com/rutvikswami/smartpark-complete/internal/service"
)

// MonitorHandler là đường ingest HTTP cho các vision monitor không đi
// qua SQS: monitor claim khu vực bằng mật khẩu, nhận token, rồi POST
// event với token đó.
type MonitorHandler struct {
	authService    *service.AuthService
	monitorService *service.MonitorService
}

func NewMonitorHandler(as *service.AuthService, ms *service.MonitorService) *MonitorHandler {
	return &MonitorHandler{authService: as, monitorService: ms}
}

// POST /monitor/claim
func (h *MonitorHandler) Claim(c *gin.Context) {
	var dto domain.MonitorClaimDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.ClaimMonitorToken(c.Request.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khu vực đỗ xe"})
		case errors.Is(err, service.ErrWrongAreaPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi cấp token monitor", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// POST /monitor/events
// Yêu cầu token monitor (role "monitor" với claim area_id).
func (h *MonitorHandler) IngestEvent(c *gin.Context) {
	areaVal, exists := c.Get(middleware.MonitorAreaIDKey)
	if !exists {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token không mang quyền monitor trên khu vực nào"})
		return
	}
	areaID, ok := areaVal.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Thông tin khu vực trong token không hợp lệ"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Body rỗng hoặc không đọc được"})
		return
	}

	if err := h.monitorService.HandleMonitorEvent(c.Request.Context(), string(body), &areaID); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Không xử lý được event", "details": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
	"github.com/rutvikswami/smartpark-complete/internal/service"
)

type SlotHandler struct {
	parkingService *service.ParkingService
}

func NewSlotHandler(ps *service.ParkingService) *SlotHandler {
	return &SlotHandler{parkingService: ps}
}

func parseSlotID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID slot không hợp lệ"})
		return uuid.Nil, false
	}
	return id, true
}

// POST /slots
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	var dto domain.SlotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.parkingService.CreateSlot(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo slot", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// GET /slots/:id
func (h *SlotHandler) GetSlotByID(c *gin.Context) {
	id, ok := parseSlotID(c)
	if !ok {
		return
	}

	slot, err := h.parkingService.GetSlotByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy slot"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin slot"})
		return
	}
	c.JSON(http.StatusOK, slot)
}

// PUT /slots/:id
func (h *SlotHandler) UpdateSlotStatus(c *gin.Context) {
	id, ok := parseSlotID(c)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.parkingService.UpdateSlotStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy slot để cập nhật"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, slot)
}

// DELETE /slots/:id
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	id, ok := parseSlotID(c)
	if !ok {
		return
	}

	if err := h.parkingService.DeleteSlot(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy slot để xóa"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa slot", "details": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// GET /slots/:id/predictions?limit=24
func (h *SlotHandler) GetPredictions(c *gin.Context) {
	id, ok := parseSlotID(c)
	if !ok {
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Tham số limit không hợp lệ"})
			return
		}
		limit = parsed
	}

	predictions, err := h.parkingService.GetPredictionsBySlot(c.Request.Context(), id, limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy slot"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy dự đoán"})
		return
	}
	c.JSON(http.StatusOK, predictions)
}

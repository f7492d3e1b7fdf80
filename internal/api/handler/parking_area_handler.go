package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
	"github.com/rutvikswami/smartpark-complete/internal/service"
)

type ParkingAreaHandler struct {
	parkingService     *service.ParkingService
	reservationService *service.ReservationService
	arbiter            *service.ActivationArbiter
}

func NewParkingAreaHandler(ps *service.ParkingService, rs *service.ReservationService, arbiter *service.ActivationArbiter) *ParkingAreaHandler {
	return &ParkingAreaHandler{parkingService: ps, reservationService: rs, arbiter: arbiter}
}

func parseAreaID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID khu vực đỗ xe không hợp lệ"})
		return uuid.Nil, false
	}
	return id, true
}

// POST /parking-areas
func (h *ParkingAreaHandler) CreateParkingArea(c *gin.Context) {
	var dto domain.ParkingAreaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	area, err := h.parkingService.CreateParkingArea(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo khu vực đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, area)
}

// GET /parking-areas/:id
func (h *ParkingAreaHandler) GetParkingAreaByID(c *gin.Context) {
	id, ok := parseAreaID(c)
	if !ok {
		return
	}

	area, err := h.parkingService.GetParkingAreaByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khu vực đỗ xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin khu vực đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, area)
}

// GET /parking-areas
func (h *ParkingAreaHandler) GetAllParkingAreas(c *gin.Context) {
	areas, err := h.parkingService.GetAllParkingAreas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách khu vực đỗ xe"})
		return
	}
	c.JSON(http.StatusOK, areas)
}

// PUT /parking-areas/:id
func (h *ParkingAreaHandler) UpdateParkingArea(c *gin.Context) {
	id, ok := parseAreaID(c)
	if !ok {
		return
	}

	var dto domain.ParkingAreaDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	area, err := h.parkingService.UpdateParkingArea(c.Request.Context(), id, dto)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khu vực đỗ xe để cập nhật"})
			return
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật khu vực đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, area)
}

// DELETE /parking-areas/:id
func (h *ParkingAreaHandler) DeleteParkingArea(c *gin.Context) {
	id, ok := parseAreaID(c)
	if !ok {
		return
	}

	err := h.parkingService.DeleteParkingArea(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khu vực đỗ xe để xóa"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa khu vực đỗ xe", "details": err.Error()})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// GET /parking-areas/:id/slots
func (h *ParkingAreaHandler) GetSlotsByArea(c *gin.Context) {
	id, ok := parseAreaID(c)
	if !ok {
		return
	}

	slots, err := h.parkingService.GetSlotsByAreaID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách slot"})
		return
	}
	c.JSON(http.StatusOK, slots)
}

// GET /parking-areas/:id/occupancy
func (h *ParkingAreaHandler) GetOccupancy(c *gin.Context) {
	id, ok := parseAreaID(c)
	if !ok {
		return
	}

	snap, err := h.parkingService.GetOccupancySnapshot(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khu vực đỗ xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi tính tỷ lệ lấp đầy", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GET /parking-areas/markers
func (h *ParkingAreaHandler) GetMarkers(c *gin.Context) {
	markers, err := h.parkingService.GetMarkerViews(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi dựng danh sách marker"})
		return
	}
	c.JSON(http.StatusOK, markers)
}

// POST /parking-areas/:id/activations
// Ghi nhận một lần chạm marker; kết quả phân xử (popup/navigate) được
// đẩy qua WebSocket sau khi hết cửa sổ chờ.
func (h *ParkingAreaHandler) ActivateMarker(c *gin.Context) {
	id, ok := parseAreaID(c)
	if !ok {
		return
	}
	h.arbiter.Activate(id)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// GET /parking-areas/:id/active-reservations
func (h *ParkingAreaHandler) GetActiveReservations(c *gin.Context) {
	id, ok := parseAreaID(c)
	if !ok {
		return
	}

	reservations, err := h.reservationService.ActiveByArea(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách đặt chỗ đang hoạt động"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// GET /parking-areas/:id/predictions
func (h *ParkingAreaHandler) GetLatestPredictions(c *gin.Context) {
	id, ok := parseAreaID(c)
	if !ok {
		return
	}

	predictions, err := h.parkingService.GetLatestPredictionsByArea(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khu vực đỗ xe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy dự đoán"})
		return
	}
	c.JSON(http.StatusOK, predictions)
}

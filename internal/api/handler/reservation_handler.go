package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/api/middleware"
	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
	"github.com/rutvikswami/smartpark-complete/internal/service"
)

type ReservationHandler struct {
	reservationService *service.ReservationService
}

func NewReservationHandler(rs *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: rs}
}

// POST /reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	var dto domain.CreateReservationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.reservationService.Reserve(c.Request.Context(), userID, dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidReservationWindow):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrSlotNotFree):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy slot"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đặt chỗ", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /reservations?active=true
func (h *ReservationHandler) ListMyReservations(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	activeOnly := c.Query("active") == "true"
	reservations, err := h.reservationService.MyReservations(c.Request.Context(), userID, activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy lịch sử đặt chỗ"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}

// GET /reservations/:id
func (h *ReservationHandler) GetReservationByID(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID đặt chỗ không hợp lệ"})
		return
	}

	res, err := h.reservationService.GetByID(c.Request.Context(), id, userID, middleware.CurrentUserRole(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đặt chỗ"})
		case errors.Is(err, service.ErrReservationForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy thông tin đặt chỗ"})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /reservations/:id/cancel
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID đặt chỗ không hợp lệ"})
		return
	}

	err = h.reservationService.Cancel(c.Request.Context(), id, userID, middleware.CurrentUserRole(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy đặt chỗ"})
		case errors.Is(err, service.ErrReservationForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrReservationNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể hủy đặt chỗ", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

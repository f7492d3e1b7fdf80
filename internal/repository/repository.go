package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
)

var ErrNotFound = errors.New("không tìm thấy bản ghi")
var ErrDuplicateEntry = errors.New("bản ghi đã tồn tại")

// ErrSlotNotFree: slot không còn ở trạng thái free tại thời điểm đặt chỗ
// (guard trong transaction bị trượt).
var ErrSlotNotFree = errors.New("chỗ đỗ không còn trống")

// ErrReservationNotActive: đặt chỗ không còn active nên không thể hủy.
var ErrReservationNotActive = errors.New("đặt chỗ không còn hoạt động")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

type ParkingAreaRepository interface {
	Create(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ParkingArea, error)
	FindAll(ctx context.Context) ([]domain.ParkingArea, error)
	Update(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error)
	FindByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Slot, error)
	FindByAreaAndNumber(ctx context.Context, areaID uuid.UUID, slotNumber int) (*domain.Slot, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SlotStatus, source string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReservationRepository interface {
	// Reserve ghi đặt chỗ mới và chuyển slot free -> reserved trong MỘT
	// transaction; trả về ErrSlotNotFree nếu slot không còn trống.
	Reserve(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	// Cancel chuyển đặt chỗ active -> cancelled và trả slot về free trong
	// MỘT transaction; trả về ErrReservationNotActive nếu đã kết thúc.
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	FindByUserID(ctx context.Context, userID int, activeOnly bool) ([]domain.Reservation, error)
	FindActiveByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Reservation, error)
	// CompleteExpired đóng các đặt chỗ active đã quá end_time và trả slot
	// về free. Trả về số đặt chỗ đã đóng.
	CompleteExpired(ctx context.Context, now time.Time) (int, error)
}

type PredictionRepository interface {
	FindBySlotID(ctx context.Context, slotID uuid.UUID, limit int) ([]domain.Prediction, error)
	// FindLatestByAreaID trả về prediction mới nhất của từng slot trong khu vực.
	FindLatestByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Prediction, error)
}

type SystemStatusRepository interface {
	FindBySystemID(ctx context.Context, systemID string) (*domain.SystemStatus, error)
	FindAll(ctx context.Context) ([]domain.SystemStatus, error)
	// UpsertHeartbeat đặt status=online và cập nhật last_heartbeat.
	UpsertHeartbeat(ctx context.Context, systemID, location string, at time.Time) error
	// MarkOffline chỉ đổi status, giữ nguyên last_heartbeat (để còn biết
	// lần sống cuối cùng là khi nào).
	MarkOffline(ctx context.Context, systemID string) error
}

type MonitorEventsLogRepository interface {
	Create(ctx context.Context, event *domain.MonitorEventLog) error
}

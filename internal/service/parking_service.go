package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

type ParkingService struct {
	areaRepo       repository.ParkingAreaRepository
	slotRepo       repository.SlotRepository
	predictionRepo repository.PredictionRepository

	mapProvider string
	mapZoom     int
}

func NewParkingService(
	areaRepo repository.ParkingAreaRepository,
	slotRepo repository.SlotRepository,
	predictionRepo repository.PredictionRepository,
	mapProvider string,
	mapZoom int,
) *ParkingService {
	return &ParkingService{
		areaRepo:       areaRepo,
		slotRepo:       slotRepo,
		predictionRepo: predictionRepo,
		mapProvider:    mapProvider,
		mapZoom:        mapZoom,
	}
}

// --- ParkingArea ---

func (s *ParkingService) CreateParkingArea(ctx context.Context, dto domain.ParkingAreaDTO) (*domain.ParkingArea, error) {
	hashedPassword, err := HashAreaPassword(dto.Password)
	if err != nil {
		return nil, err
	}
	area := &domain.ParkingArea{
		Name:       dto.Name,
		Latitude:   dto.Latitude,
		Longitude:  dto.Longitude,
		TotalSlots: dto.TotalSlots,
		Password:   hashedPassword,
	}
	return s.areaRepo.Create(ctx, area)
}

func (s *ParkingService) GetParkingAreaByID(ctx context.Context, id uuid.UUID) (*domain.ParkingArea, error) {
	return s.areaRepo.FindByID(ctx, id)
}

func (s *ParkingService) GetAllParkingAreas(ctx context.Context) ([]domain.ParkingArea, error) {
	return s.areaRepo.FindAll(ctx)
}

func (s *ParkingService) UpdateParkingArea(ctx context.Context, id uuid.UUID, dto domain.ParkingAreaDTO) (*domain.ParkingArea, error) {
	area, err := s.areaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	area.Name = dto.Name
	area.Latitude = dto.Latitude
	area.Longitude = dto.Longitude
	area.TotalSlots = dto.TotalSlots
	if dto.Password != "" {
		hashedPassword, err := HashAreaPassword(dto.Password)
		if err != nil {
			return nil, err
		}
		area.Password = hashedPassword
	}
	return s.areaRepo.Update(ctx, area)
}

func (s *ParkingService) DeleteParkingArea(ctx context.Context, id uuid.UUID) error {
	slots, err := s.slotRepo.FindByAreaID(ctx, id)
	if err != nil {
		return fmt.Errorf("lỗi khi kiểm tra các slot của khu vực %s: %w", id, err)
	}
	if len(slots) > 0 {
		return fmt.Errorf("không thể xóa khu vực %s vì vẫn còn %d slot liên kết", id, len(slots))
	}
	return s.areaRepo.Delete(ctx, id)
}

// --- Slot ---

func (s *ParkingService) CreateSlot(ctx context.Context, dto domain.SlotDTO) (*domain.Slot, error) {
	area, err := s.areaRepo.FindByID(ctx, dto.ParkingAreaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("khu vực đỗ xe %s không tồn tại", dto.ParkingAreaID)
		}
		return nil, fmt.Errorf("lỗi khi kiểm tra khu vực đỗ xe: %w", err)
	}

	if area.TotalSlots > 0 {
		currentSlots, err := s.slotRepo.FindByAreaID(ctx, dto.ParkingAreaID)
		if err != nil {
			return nil, fmt.Errorf("lỗi khi lấy số lượng slot hiện tại: %w", err)
		}
		if len(currentSlots) >= area.TotalSlots {
			return nil, fmt.Errorf("số lượng slot đã đạt tối đa (%d) cho khu vực này", area.TotalSlots)
		}
	}

	slot := &domain.Slot{
		ParkingAreaID:          dto.ParkingAreaID,
		SlotNumber:             dto.SlotNumber,
		Status:                 domain.SlotFree,
		LastStatusUpdateSource: "admin_creation",
	}
	if dto.Status != "" {
		if !domain.SlotStatus(dto.Status).IsKnown() {
			return nil, fmt.Errorf("trạng thái slot không hợp lệ: %s", dto.Status)
		}
		slot.Status = domain.SlotStatus(dto.Status)
	}
	return s.slotRepo.Create(ctx, slot)
}

func (s *ParkingService) GetSlotByID(ctx context.Context, slotID uuid.UUID) (*domain.Slot, error) {
	return s.slotRepo.FindByID(ctx, slotID)
}

func (s *ParkingService) GetSlotsByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Slot, error) {
	return s.slotRepo.FindByAreaID(ctx, areaID)
}

func (s *ParkingService) UpdateSlotStatus(ctx context.Context, slotID uuid.UUID, status string) (*domain.Slot, error) {
	if !domain.SlotStatus(status).IsKnown() {
		return nil, fmt.Errorf("trạng thái slot không hợp lệ: %s", status)
	}
	if err := s.slotRepo.UpdateStatus(ctx, slotID, domain.SlotStatus(status), "admin_update"); err != nil {
		return nil, err
	}
	return s.slotRepo.FindByID(ctx, slotID)
}

func (s *ParkingService) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	return s.slotRepo.Delete(ctx, slotID)
}

// UpdateSlotStatusFromMonitor cập nhật trạng thái vật lý của slot từ sự
// kiện camera. Monitor là nguồn sự thật cho occupied/free; sự kiện trùng
// hoặc cũ hơn bản ghi hiện tại bị bỏ qua.
func (s *ParkingService) UpdateSlotStatusFromMonitor(ctx context.Context, event domain.MonitorSlotStatusEvent) error {
	status := domain.SlotOccupied
	if !event.IsOccupied {
		status = domain.SlotFree
	}
	log.Printf("Service: Monitor '%s' báo slot %d của khu vực %s -> '%s'",
		event.SystemID, event.SlotNumber, event.ParkingAreaID, status)

	slot, err := s.slotRepo.FindByAreaAndNumber(ctx, event.ParkingAreaID, event.SlotNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: slot số %d chưa được đăng ký trong khu vực %s",
				repository.ErrNotFound, event.SlotNumber, event.ParkingAreaID)
		}
		return fmt.Errorf("lỗi tìm slot: %w", err)
	}

	if slot.Status == status {
		log.Printf("Trạng thái slot %s không thay đổi (%s). Bỏ qua cập nhật.", slot.ID, status)
		return nil
	}

	if changedAt, err := time.Parse(time.RFC3339Nano, event.ChangedAt); err == nil {
		if changedAt.Before(slot.UpdatedAt) {
			log.Printf("Sự kiện cho slot %s cũ hơn bản ghi (event: %v, DB: %v). Bỏ qua.",
				slot.ID, changedAt, slot.UpdatedAt)
			return nil
		}
	}

	if err := s.slotRepo.UpdateStatus(ctx, slot.ID, status, "monitor"); err != nil {
		return fmt.Errorf("lỗi cập nhật trạng thái slot: %w", err)
	}
	log.Printf("Đã cập nhật slot %s (số %d, khu vực %s) thành %s",
		slot.ID, slot.SlotNumber, slot.ParkingAreaID, status)
	return nil
}

// --- Occupancy & Markers ---

func (s *ParkingService) GetOccupancySnapshot(ctx context.Context, areaID uuid.UUID) (*domain.OccupancySnapshot, error) {
	area, err := s.areaRepo.FindByID(ctx, areaID)
	if err != nil {
		return nil, err
	}
	slots, err := s.slotRepo.FindByAreaID(ctx, areaID)
	if err != nil {
		return nil, fmt.Errorf("lỗi khi lấy slot của khu vực %s: %w", areaID, err)
	}
	snap := domain.AggregateOccupancy(areaID, slots, area.TotalSlots)
	return &snap, nil
}

// GetMarkerViews dựng danh sách marker cho màn hình bản đồ: mỗi khu vực
// một marker với màu theo phần trăm lấp đầy và link tìm kiếm map ngoài.
func (s *ParkingService) GetMarkerViews(ctx context.Context) ([]domain.MarkerView, error) {
	areas, err := s.areaRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	markers := make([]domain.MarkerView, 0, len(areas))
	for _, area := range areas {
		slots, err := s.slotRepo.FindByAreaID(ctx, area.ID)
		if err != nil {
			// Một khu vực lỗi không nên làm hỏng cả bản đồ.
			log.Printf("GetMarkerViews: lỗi lấy slot của khu vực %s: %v", area.ID, err)
			continue
		}
		snap := domain.AggregateOccupancy(area.ID, slots, area.TotalSlots)
		markers = append(markers, domain.BuildMarkerView(area, snap, s.mapProvider, s.mapZoom))
	}
	return markers, nil
}

// --- Predictions ---

func (s *ParkingService) GetPredictionsBySlot(ctx context.Context, slotID uuid.UUID, limit int) ([]domain.Prediction, error) {
	if _, err := s.slotRepo.FindByID(ctx, slotID); err != nil {
		return nil, err
	}
	return s.predictionRepo.FindBySlotID(ctx, slotID, limit)
}

func (s *ParkingService) GetLatestPredictionsByArea(ctx context.Context, areaID uuid.UUID) ([]domain.Prediction, error) {
	if _, err := s.areaRepo.FindByID(ctx, areaID); err != nil {
		return nil, err
	}
	return s.predictionRepo.FindLatestByAreaID(ctx, areaID)
}

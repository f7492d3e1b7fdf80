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

var ErrInvalidReservationWindow = errors.New("khoảng thời gian đặt chỗ không hợp lệ")
var ErrReservationForbidden = errors.New("không có quyền thao tác trên đặt chỗ này")

// startGracePeriod: cho phép start_time lùi lại một chút so với đồng hồ
// server để bù lệch giờ giữa client và server.
const startGracePeriod = time.Minute

type ReservationService struct {
	reservationRepo repository.ReservationRepository
	slotRepo        repository.SlotRepository
}

func NewReservationService(reservationRepo repository.ReservationRepository, slotRepo repository.SlotRepository) *ReservationService {
	return &ReservationService{reservationRepo: reservationRepo, slotRepo: slotRepo}
}

func parseReservationTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: thời gian '%s' không đúng định dạng RFC3339", ErrInvalidReservationWindow, raw)
	}
	return t.UTC(), nil
}

// Reserve kiểm tra cửa sổ thời gian và trạng thái slot, rồi ghi đặt chỗ
// qua transaction của repository. Guard free->reserved trong transaction
// là chốt chặn cuối; kiểm tra ở đây chỉ để trả lỗi sớm và rõ ràng hơn.
func (s *ReservationService) Reserve(ctx context.Context, userID int, dto domain.CreateReservationDTO) (*domain.Reservation, error) {
	startTime, err := parseReservationTime(dto.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := parseReservationTime(dto.EndTime)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if !endTime.After(startTime) {
		return nil, fmt.Errorf("%w: end_time phải sau start_time", ErrInvalidReservationWindow)
	}
	if startTime.Before(now.Add(-startGracePeriod)) {
		return nil, fmt.Errorf("%w: start_time nằm trong quá khứ", ErrInvalidReservationWindow)
	}

	slot, err := s.slotRepo.FindByID(ctx, dto.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.Status != domain.SlotFree {
		return nil, fmt.Errorf("%w: slot đang ở trạng thái '%s'", repository.ErrSlotNotFree, slot.Status)
	}

	res := &domain.Reservation{
		UserID:    userID,
		SlotID:    dto.SlotID,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    domain.ReservationActive,
	}
	created, err := s.reservationRepo.Reserve(ctx, res)
	if err != nil {
		return nil, err
	}
	log.Printf("Service: User %d đã đặt slot %s (%v -> %v), reservation %s",
		userID, dto.SlotID, startTime, endTime, created.ID)
	return created, nil
}

// Cancel hủy đặt chỗ. Chỉ chủ đặt chỗ hoặc admin mới được hủy.
func (s *ReservationService) Cancel(ctx context.Context, reservationID uuid.UUID, userID int, role string) error {
	res, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.UserID != userID && role != "admin" {
		return ErrReservationForbidden
	}
	if err := s.reservationRepo.Cancel(ctx, reservationID, time.Now().UTC()); err != nil {
		return err
	}
	log.Printf("Service: Đã hủy reservation %s (user %d)", reservationID, userID)
	return nil
}

func (s *ReservationService) GetByID(ctx context.Context, reservationID uuid.UUID, userID int, role string) (*domain.Reservation, error) {
	res, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID && role != "admin" {
		return nil, ErrReservationForbidden
	}
	return res, nil
}

func (s *ReservationService) MyReservations(ctx context.Context, userID int, activeOnly bool) ([]domain.Reservation, error) {
	return s.reservationRepo.FindByUserID(ctx, userID, activeOnly)
}

func (s *ReservationService) ActiveByArea(ctx context.Context, areaID uuid.UUID) ([]domain.Reservation, error) {
	return s.reservationRepo.FindActiveByAreaID(ctx, areaID)
}

// RunExpirySweep chạy nền, định kỳ đóng các đặt chỗ đã quá end_time và
// trả slot về free.
func (s *ReservationService) RunExpirySweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("Bắt đầu job quét đặt chỗ hết hạn (mỗi %v)...", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("Dừng job quét đặt chỗ hết hạn.")
			return
		case <-ticker.C:
			n, err := s.reservationRepo.CompleteExpired(ctx, time.Now().UTC())
			if err != nil {
				log.Printf("Lỗi khi quét đặt chỗ hết hạn: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Đã đóng %d đặt chỗ hết hạn.", n)
			}
		}
	}
}

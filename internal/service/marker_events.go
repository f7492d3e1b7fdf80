package service

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
)

// ActivationArbiter gom các lần chạm marker thành một hành động duy
// nhất: một lần chạm -> popup (sau khi hết cửa sổ chờ), hai lần chạm
// trong cửa sổ -> navigate và KHÔNG có popup. Mỗi khu vực có timer
// riêng nên chạm hai marker khác nhau không ảnh hưởng lẫn nhau.
type ActivationArbiter struct {
	window time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]*time.Timer
	closed  bool

	events chan domain.MarkerActivationEvent
}

func NewActivationArbiter(window time.Duration) *ActivationArbiter {
	return &ActivationArbiter{
		window:  window,
		pending: make(map[uuid.UUID]*time.Timer),
		events:  make(chan domain.MarkerActivationEvent, 64),
	}
}

// Activate ghi nhận một lần chạm marker của khu vực areaID.
func (a *ActivationArbiter) Activate(areaID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	if timer, ok := a.pending[areaID]; ok {
		// Lần chạm thứ hai trong cửa sổ: hủy popup đang chờ, điều hướng.
		timer.Stop()
		delete(a.pending, areaID)
		a.emit(domain.MarkerActivationEvent{ParkingAreaID: areaID, Kind: domain.MarkerActivationNavigate})
		return
	}

	a.pending[areaID] = time.AfterFunc(a.window, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.closed {
			return
		}
		delete(a.pending, areaID)
		a.emit(domain.MarkerActivationEvent{ParkingAreaID: areaID, Kind: domain.MarkerActivationPopup})
	})
}

// emit gửi không chặn; gọi khi đã giữ mu.
func (a *ActivationArbiter) emit(event domain.MarkerActivationEvent) {
	select {
	case a.events <- event:
	default:
		log.Println("ActivationArbiter: kênh sự kiện đầy, bỏ qua event")
	}
}

// Events trả về kênh các hành động đã phân xử.
func (a *ActivationArbiter) Events() <-chan domain.MarkerActivationEvent {
	return a.events
}

// Close hủy mọi timer đang chờ và đóng kênh sự kiện.
func (a *ActivationArbiter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	for areaID, timer := range a.pending {
		timer.Stop()
		delete(a.pending, areaID)
	}
	close(a.events)
}

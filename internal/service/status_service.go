package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

// RealtimeBroadcaster đẩy message xuống mọi client WebSocket đang kết nối.
type RealtimeBroadcaster interface {
	Broadcast(msg domain.RealtimeMessage)
}

type StatusService struct {
	statusRepo repository.SystemStatusRepository
	staleAfter time.Duration
}

func NewStatusService(statusRepo repository.SystemStatusRepository, staleAfter time.Duration) *StatusService {
	return &StatusService{statusRepo: statusRepo, staleAfter: staleAfter}
}

func (s *StatusService) buildView(st *domain.SystemStatus, systemID string, now time.Time) domain.SystemHealthView {
	view := domain.SystemHealthView{
		SystemID: systemID,
		Health:   domain.ClassifyHealth(st, now, s.staleAfter),
		LastSeen: domain.LastSeenText(st, now),
	}
	if st != nil {
		view.Status = st.Status
		view.Location = st.Location.ValueOrZero()
		view.LastHeartbeat = st.LastHeartbeat
	}
	return view
}

// GetSystemHealth phân loại sức khỏe của một monitor. Không có bản ghi
// không phải là lỗi: hệ thống chưa từng heartbeat được trả về critical.
func (s *StatusService) GetSystemHealth(ctx context.Context, systemID string) (domain.SystemHealthView, error) {
	now := time.Now().UTC()
	st, err := s.statusRepo.FindBySystemID(ctx, systemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.buildView(nil, systemID, now), nil
		}
		return domain.SystemHealthView{}, err
	}
	return s.buildView(st, systemID, now), nil
}

func (s *StatusService) ListSystems(ctx context.Context) ([]domain.SystemHealthView, error) {
	statuses, err := s.statusRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	views := make([]domain.SystemHealthView, 0, len(statuses))
	for i := range statuses {
		views = append(views, s.buildView(&statuses[i], statuses[i].SystemID, now))
	}
	return views, nil
}

// HandleHeartbeat ghi nhận heartbeat từ monitor: status về online,
// last_heartbeat cập nhật.
func (s *StatusService) HandleHeartbeat(ctx context.Context, systemID string, event domain.MonitorHeartbeatEvent, at time.Time) error {
	if systemID == "" {
		return fmt.Errorf("heartbeat thiếu system_id")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return s.statusRepo.UpsertHeartbeat(ctx, systemID, event.Location, at)
}

// HandleGoingOffline đánh dấu monitor offline. Last_heartbeat được giữ
// nguyên để client còn thấy lần sống cuối cùng.
func (s *StatusService) HandleGoingOffline(ctx context.Context, systemID string, event domain.MonitorGoingOfflineEvent) error {
	if event.Reason != "" {
		log.Printf("Monitor '%s' báo sắp offline: %s", systemID, event.Reason)
	}
	err := s.statusRepo.MarkOffline(ctx, systemID)
	if errors.Is(err, repository.ErrNotFound) {
		// Monitor chưa từng heartbeat mà đã báo offline: không có gì để đổi.
		log.Printf("Monitor '%s' báo offline nhưng chưa có bản ghi status.", systemID)
		return nil
	}
	return err
}

// StatusMonitor theo dõi một system_id được chọn và định kỳ phân loại
// lại sức khỏe của nó (heartbeat cũ dần thì mức cảnh báo phải đổi dù
// không có ghi mới nào). Mỗi lần đổi system_id tăng generation; kết quả
// fetch mang generation cũ bị vứt bỏ để tránh đè view của hệ thống mới.
type StatusMonitor struct {
	statusService *StatusService
	statusRepo    repository.SystemStatusRepository
	broadcaster   RealtimeBroadcaster
	interval      time.Duration

	mu         sync.Mutex
	systemID   string
	generation uint64
	current    *domain.SystemStatus
}

func NewStatusMonitor(statusService *StatusService, statusRepo repository.SystemStatusRepository, broadcaster RealtimeBroadcaster, interval time.Duration) *StatusMonitor {
	return &StatusMonitor{
		statusService: statusService,
		statusRepo:    statusRepo,
		broadcaster:   broadcaster,
		interval:      interval,
	}
}

// SetSystem đổi hệ thống đang theo dõi. View loading/critical được phát
// ngay lập tức, bản ghi thật được fetch nền.
func (m *StatusMonitor) SetSystem(systemID string) {
	m.mu.Lock()
	m.systemID = systemID
	m.generation++
	gen := m.generation
	m.current = nil
	m.mu.Unlock()

	if systemID == "" {
		return
	}

	m.broadcast(domain.SystemHealthView{
		SystemID: systemID,
		Health:   domain.HealthCritical,
		LastSeen: "Never",
		Loading:  true,
	})

	go m.fetch(systemID, gen)
}

// Refresh nạp lại bản ghi của hệ thống đang theo dõi (gọi khi nhận được
// thông báo thay đổi bảng system_status). Khác SetSystem: không phát
// view loading, chỉ thay dữ liệu khi fetch xong.
func (m *StatusMonitor) Refresh() {
	m.mu.Lock()
	systemID := m.systemID
	m.generation++
	gen := m.generation
	m.mu.Unlock()
	if systemID == "" {
		return
	}
	go m.fetch(systemID, gen)
}

// fetch chạy nền, độc lập với request context đã kích hoạt nó.
func (m *StatusMonitor) fetch(systemID string, gen uint64) {
	st, err := m.statusRepo.FindBySystemID(context.Background(), systemID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("StatusMonitor: lỗi fetch status của '%s': %v", systemID, err)
		return
	}

	m.mu.Lock()
	if m.generation != gen {
		// system_id đã đổi trong lúc fetch; kết quả này thuộc thế hệ cũ.
		m.mu.Unlock()
		return
	}
	m.current = st
	m.mu.Unlock()

	m.broadcast(m.statusService.buildView(st, systemID, time.Now().UTC()))
}

// Run phát lại view theo chu kỳ từ bản ghi đã cache. Không gọi DB: mục
// đích chỉ là để "5m ago" và mức cảnh báo trôi theo thời gian.
func (m *StatusMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	log.Printf("Bắt đầu job phân loại lại trạng thái hệ thống (mỗi %v)...", m.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("Dừng job phân loại lại trạng thái hệ thống.")
			return
		case <-ticker.C:
			m.mu.Lock()
			systemID := m.systemID
			st := m.current
			m.mu.Unlock()
			if systemID == "" {
				continue
			}
			m.broadcast(m.statusService.buildView(st, systemID, time.Now().UTC()))
		}
	}
}

func (m *StatusMonitor) broadcast(view domain.SystemHealthView) {
	if m.broadcaster == nil {
		return
	}
	m.broadcaster.Broadcast(domain.RealtimeMessage{
		Type:    domain.RealtimeTypeSystemHealth,
		Payload: view,
	})
}

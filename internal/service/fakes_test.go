package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

// Fake in-memory cho các repository, giữ đúng semantics transaction của
// bản postgresql (Reserve/Cancel đổi cả reservation lẫn slot).

type fakeAreaRepo struct {
	mu    sync.Mutex
	areas map[uuid.UUID]*domain.ParkingArea
}

func newFakeAreaRepo() *fakeAreaRepo {
	return &fakeAreaRepo{areas: make(map[uuid.UUID]*domain.ParkingArea)}
}

func (r *fakeAreaRepo) Create(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	area.ID = uuid.New()
	area.CreatedAt = time.Now().UTC()
	area.UpdatedAt = area.CreatedAt
	copied := *area
	r.areas[area.ID] = &copied
	return area, nil
}

func (r *fakeAreaRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ParkingArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	area, ok := r.areas[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *area
	return &copied, nil
}

func (r *fakeAreaRepo) FindAll(ctx context.Context) ([]domain.ParkingArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ParkingArea, 0, len(r.areas))
	for _, area := range r.areas {
		out = append(out, *area)
	}
	return out, nil
}

func (r *fakeAreaRepo) Update(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.areas[area.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	copied := *area
	r.areas[area.ID] = &copied
	return area, nil
}

func (r *fakeAreaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.areas[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.areas, id)
	return nil
}

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*domain.Slot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[uuid.UUID]*domain.Slot)}
}

func (r *fakeSlotRepo) add(areaID uuid.UUID, number int, status domain.SlotStatus) *domain.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := &domain.Slot{
		ID:            uuid.New(),
		ParkingAreaID: areaID,
		SlotNumber:    number,
		Status:        status,
		UpdatedAt:     time.Now().UTC().Add(-time.Hour),
	}
	r.slots[slot.ID] = slot
	copied := *slot
	return &copied
}

func (r *fakeSlotRepo) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.slots {
		if existing.ParkingAreaID == slot.ParkingAreaID && existing.SlotNumber == slot.SlotNumber {
			return nil, repository.ErrDuplicateEntry
		}
	}
	slot.ID = uuid.New()
	slot.CreatedAt = time.Now().UTC()
	slot.UpdatedAt = slot.CreatedAt
	copied := *slot
	r.slots[slot.ID] = &copied
	return slot, nil
}

func (r *fakeSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeSlotRepo) FindByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Slot{}
	for _, slot := range r.slots {
		if slot.ParkingAreaID == areaID {
			out = append(out, *slot)
		}
	}
	return out, nil
}

func (r *fakeSlotRepo) FindByAreaAndNumber(ctx context.Context, areaID uuid.UUID, slotNumber int) (*domain.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, slot := range r.slots {
		if slot.ParkingAreaID == areaID && slot.SlotNumber == slotNumber {
			copied := *slot
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSlotRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SlotStatus, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	slot.Status = status
	slot.LastStatusUpdateSource = source
	slot.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeSlotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.slots, id)
	return nil
}

type fakeReservationRepo struct {
	mu           sync.Mutex
	slots        *fakeSlotRepo
	reservations map[uuid.UUID]*domain.Reservation
}

func newFakeReservationRepo(slots *fakeSlotRepo) *fakeReservationRepo {
	return &fakeReservationRepo{
		slots:        slots,
		reservations: make(map[uuid.UUID]*domain.Reservation),
	}
}

func (r *fakeReservationRepo) Reserve(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, err := r.slots.FindByID(ctx, res.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.Status != domain.SlotFree {
		return nil, repository.ErrSlotNotFree
	}
	if err := r.slots.UpdateStatus(ctx, res.SlotID, domain.SlotReserved, "reservation"); err != nil {
		return nil, err
	}
	res.ID = uuid.New()
	res.Status = domain.ReservationActive
	res.CreatedAt = time.Now().UTC()
	copied := *res
	r.reservations[res.ID] = &copied
	return res, nil
}

func (r *fakeReservationRepo) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	if res.Status != domain.ReservationActive {
		return repository.ErrReservationNotActive
	}
	res.Status = domain.ReservationCancelled
	res.CancelledAt = null.TimeFrom(at)
	return r.slots.UpdateStatus(ctx, res.SlotID, domain.SlotFree, "reservation_cancelled")
}

func (r *fakeReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *res
	return &copied, nil
}

func (r *fakeReservationRepo) FindByUserID(ctx context.Context, userID int, activeOnly bool) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Reservation{}
	for _, res := range r.reservations {
		if res.UserID != userID {
			continue
		}
		if activeOnly && res.Status != domain.ReservationActive {
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

func (r *fakeReservationRepo) FindActiveByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Reservation{}
	for _, res := range r.reservations {
		if res.Status != domain.ReservationActive {
			continue
		}
		slot, err := r.slots.FindByID(ctx, res.SlotID)
		if err != nil {
			continue
		}
		if slot.ParkingAreaID == areaID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) CompleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, res := range r.reservations {
		if res.Status != domain.ReservationActive || !res.EndTime.Before(now) {
			continue
		}
		res.Status = domain.ReservationCompleted
		slot, err := r.slots.FindByID(ctx, res.SlotID)
		if err == nil && slot.Status == domain.SlotReserved {
			r.slots.UpdateStatus(ctx, res.SlotID, domain.SlotFree, "reservation_completed")
		}
		count++
	}
	return count, nil
}

type fakeStatusRepo struct {
	mu       sync.Mutex
	statuses map[string]*domain.SystemStatus
}

func newFakeStatusRepo() *fakeStatusRepo {
	return &fakeStatusRepo{statuses: make(map[string]*domain.SystemStatus)}
}

func (r *fakeStatusRepo) FindBySystemID(ctx context.Context, systemID string) (*domain.SystemStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.statuses[systemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *st
	return &copied, nil
}

func (r *fakeStatusRepo) FindAll(ctx context.Context) ([]domain.SystemStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SystemStatus, 0, len(r.statuses))
	for _, st := range r.statuses {
		out = append(out, *st)
	}
	return out, nil
}

func (r *fakeStatusRepo) UpsertHeartbeat(ctx context.Context, systemID, location string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.statuses[systemID]
	if !ok {
		st = &domain.SystemStatus{SystemID: systemID}
		r.statuses[systemID] = st
	}
	st.Status = domain.SystemOnline
	st.LastHeartbeat = null.TimeFrom(at)
	if location != "" {
		st.Location = null.StringFrom(location)
	}
	st.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeStatusRepo) MarkOffline(ctx context.Context, systemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.statuses[systemID]
	if !ok {
		return repository.ErrNotFound
	}
	st.Status = domain.SystemOffline
	st.UpdatedAt = time.Now().UTC()
	return nil
}

type fakePredictionRepo struct {
	predictions map[uuid.UUID][]domain.Prediction
}

func newFakePredictionRepo() *fakePredictionRepo {
	return &fakePredictionRepo{predictions: make(map[uuid.UUID][]domain.Prediction)}
}

func (r *fakePredictionRepo) FindBySlotID(ctx context.Context, slotID uuid.UUID, limit int) ([]domain.Prediction, error) {
	preds := r.predictions[slotID]
	if limit > 0 && len(preds) > limit {
		preds = preds[:limit]
	}
	return preds, nil
}

func (r *fakePredictionRepo) FindLatestByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Prediction, error) {
	return nil, nil
}

type fakeEventLogRepo struct {
	mu      sync.Mutex
	entries []domain.MonitorEventLog
}

func (r *fakeEventLogRepo) Create(ctx context.Context, event *domain.MonitorEventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *event)
	return nil
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []domain.RealtimeMessage
}

func (b *fakeBroadcaster) Broadcast(msg domain.RealtimeMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *fakeBroadcaster) all() []domain.RealtimeMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.RealtimeMessage, len(b.messages))
	copy(out, b.messages)
	return out
}

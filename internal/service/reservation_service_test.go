package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

func newReservationFixture() (*ReservationService, *fakeSlotRepo, *fakeReservationRepo, *domain.Slot) {
	slotRepo := newFakeSlotRepo()
	reservationRepo := newFakeReservationRepo(slotRepo)
	slot := slotRepo.add(uuid.New(), 1, domain.SlotFree)
	return NewReservationService(reservationRepo, slotRepo), slotRepo, reservationRepo, slot
}

func reservationWindow(startIn, duration time.Duration) (string, string) {
	start := time.Now().UTC().Add(startIn)
	return start.Format(time.RFC3339), start.Add(duration).Format(time.RFC3339)
}

func TestReserveMarksSlotReserved(t *testing.T) {
	svc, slotRepo, _, slot := newReservationFixture()
	start, end := reservationWindow(10*time.Minute, time.Hour)

	res, err := svc.Reserve(context.Background(), 7, domain.CreateReservationDTO{
		SlotID:    slot.ID,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res.UserID)
	assert.Equal(t, domain.ReservationActive, res.Status)

	updated, err := slotRepo.FindByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotReserved, updated.Status)
}

func TestReserveRejectsNonFreeSlot(t *testing.T) {
	svc, slotRepo, _, slot := newReservationFixture()
	require.NoError(t, slotRepo.UpdateStatus(context.Background(), slot.ID, domain.SlotOccupied, "monitor"))
	start, end := reservationWindow(10*time.Minute, time.Hour)

	_, err := svc.Reserve(context.Background(), 7, domain.CreateReservationDTO{
		SlotID:    slot.ID,
		StartTime: start,
		EndTime:   end,
	})
	assert.ErrorIs(t, err, repository.ErrSlotNotFree)
}

func TestReserveValidatesWindow(t *testing.T) {
	svc, _, _, slot := newReservationFixture()

	// end trước start
	start, _ := reservationWindow(10*time.Minute, time.Hour)
	_, err := svc.Reserve(context.Background(), 7, domain.CreateReservationDTO{
		SlotID:    slot.ID,
		StartTime: start,
		EndTime:   start,
	})
	assert.ErrorIs(t, err, ErrInvalidReservationWindow)

	// start trong quá khứ (quá mức bù lệch giờ)
	pastStart, pastEnd := reservationWindow(-10*time.Minute, time.Hour)
	_, err = svc.Reserve(context.Background(), 7, domain.CreateReservationDTO{
		SlotID:    slot.ID,
		StartTime: pastStart,
		EndTime:   pastEnd,
	})
	assert.ErrorIs(t, err, ErrInvalidReservationWindow)

	// chuỗi thời gian hỏng
	_, err = svc.Reserve(context.Background(), 7, domain.CreateReservationDTO{
		SlotID:    slot.ID,
		StartTime: "hôm qua",
		EndTime:   pastEnd,
	})
	assert.ErrorIs(t, err, ErrInvalidReservationWindow)
}

func TestReserveAllowsSmallClockSkew(t *testing.T) {
	svc, _, _, slot := newReservationFixture()
	// start 30 giây trước: trong khoảng bù lệch giờ, vẫn chấp nhận.
	start, end := reservationWindow(-30*time.Second, time.Hour)

	_, err := svc.Reserve(context.Background(), 7, domain.CreateReservationDTO{
		SlotID:    slot.ID,
		StartTime: start,
		EndTime:   end,
	})
	assert.NoError(t, err)
}

func TestCancelReturnsSlotToFree(t *testing.T) {
	svc, slotRepo, _, slot := newReservationFixture()
	start, end := reservationWindow(10*time.Minute, time.Hour)

	res, err := svc.Reserve(context.Background(), 7, domain.CreateReservationDTO{
		SlotID: slot.ID, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), res.ID, 7, "user"))

	updated, err := slotRepo.FindByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotFree, updated.Status)

	// Hủy lần hai: không còn active.
	err = svc.Cancel(context.Background(), res.ID, 7, "user")
	assert.ErrorIs(t, err, repository.ErrReservationNotActive)

	active, err := svc.MyReservations(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.MyReservations(context.Background(), 7, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.ReservationCancelled, all[0].Status)
	assert.True(t, all[0].CancelledAt.Valid)
}

func TestCancelEnforcesOwnership(t *testing.T) {
	svc, _, _, slot := newReservationFixture()
	start, end := reservationWindow(10*time.Minute, time.Hour)

	res, err := svc.Reserve(context.Background(), 7, domain.CreateReservationDTO{
		SlotID: slot.ID, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)

	// Người khác không hủy được.
	err = svc.Cancel(context.Background(), res.ID, 8, "user")
	assert.ErrorIs(t, err, ErrReservationForbidden)

	// Admin thì được.
	assert.NoError(t, svc.Cancel(context.Background(), res.ID, 8, "admin"))
}

func TestCompleteExpiredFreesSlot(t *testing.T) {
	slotRepo := newFakeSlotRepo()
	reservationRepo := newFakeReservationRepo(slotRepo)
	slot := slotRepo.add(uuid.New(), 1, domain.SlotFree)

	now := time.Now().UTC()
	_, err := reservationRepo.Reserve(context.Background(), &domain.Reservation{
		UserID:    7,
		SlotID:    slot.ID,
		StartTime: now.Add(-2 * time.Hour),
		EndTime:   now.Add(-time.Hour),
	})
	require.NoError(t, err)

	count, err := reservationRepo.CompleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	updated, err := slotRepo.FindByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotFree, updated.Status)
}

package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
)

func collectActivation(t *testing.T, arbiter *ActivationArbiter, timeout time.Duration) (domain.MarkerActivationEvent, bool) {
	t.Helper()
	select {
	case event := <-arbiter.Events():
		return event, true
	case <-time.After(timeout):
		return domain.MarkerActivationEvent{}, false
	}
}

func TestSingleActivationEmitsPopup(t *testing.T) {
	arbiter := NewActivationArbiter(30 * time.Millisecond)
	defer arbiter.Close()
	areaID := uuid.New()

	arbiter.Activate(areaID)

	event, ok := collectActivation(t, arbiter, 500*time.Millisecond)
	require.True(t, ok, "không nhận được event trong thời gian chờ")
	assert.Equal(t, domain.MarkerActivationPopup, event.Kind)
	assert.Equal(t, areaID, event.ParkingAreaID)

	// Không còn event nào khác.
	_, ok = collectActivation(t, arbiter, 100*time.Millisecond)
	assert.False(t, ok)
}

func TestDoubleActivationEmitsNavigateOnly(t *testing.T) {
	arbiter := NewActivationArbiter(100 * time.Millisecond)
	defer arbiter.Close()
	areaID := uuid.New()

	arbiter.Activate(areaID)
	arbiter.Activate(areaID)

	event, ok := collectActivation(t, arbiter, 500*time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, domain.MarkerActivationNavigate, event.Kind)
	assert.Equal(t, areaID, event.ParkingAreaID)

	// Popup đang chờ phải bị hủy: không có event thứ hai.
	_, ok = collectActivation(t, arbiter, 200*time.Millisecond)
	assert.False(t, ok)
}

func TestActivationsOnDifferentAreasAreIndependent(t *testing.T) {
	arbiter := NewActivationArbiter(30 * time.Millisecond)
	defer arbiter.Close()
	areaA := uuid.New()
	areaB := uuid.New()

	arbiter.Activate(areaA)
	arbiter.Activate(areaB)

	seen := map[uuid.UUID]domain.MarkerActivationKind{}
	for i := 0; i < 2; i++ {
		event, ok := collectActivation(t, arbiter, 500*time.Millisecond)
		require.True(t, ok)
		seen[event.ParkingAreaID] = event.Kind
	}

	assert.Equal(t, domain.MarkerActivationPopup, seen[areaA])
	assert.Equal(t, domain.MarkerActivationPopup, seen[areaB])
}

func TestSlowSecondActivationMakesTwoPopups(t *testing.T) {
	arbiter := NewActivationArbiter(20 * time.Millisecond)
	defer arbiter.Close()
	areaID := uuid.New()

	arbiter.Activate(areaID)
	time.Sleep(100 * time.Millisecond) // chờ quá cửa sổ
	arbiter.Activate(areaID)

	first, ok := collectActivation(t, arbiter, 500*time.Millisecond)
	require.True(t, ok)
	second, ok := collectActivation(t, arbiter, 500*time.Millisecond)
	require.True(t, ok)

	assert.Equal(t, domain.MarkerActivationPopup, first.Kind)
	assert.Equal(t, domain.MarkerActivationPopup, second.Kind)
}

func TestActivateAfterCloseIsNoop(t *testing.T) {
	arbiter := NewActivationArbiter(10 * time.Millisecond)
	arbiter.Close()

	// Không panic, không emit.
	arbiter.Activate(uuid.New())
}

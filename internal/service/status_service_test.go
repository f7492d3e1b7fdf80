package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
)

func TestGetSystemHealthWithoutRecord(t *testing.T) {
	svc := NewStatusService(newFakeStatusRepo(), 0)

	view, err := svc.GetSystemHealth(context.Background(), "cam-ghost")
	require.NoError(t, err)
	assert.Equal(t, "cam-ghost", view.SystemID)
	assert.Equal(t, domain.HealthCritical, view.Health)
	assert.Equal(t, "Never", view.LastSeen)
}

func TestHeartbeatThenOffline(t *testing.T) {
	repo := newFakeStatusRepo()
	svc := NewStatusService(repo, 0)
	ctx := context.Background()
	at := time.Now().UTC().Add(-5 * time.Minute)

	require.NoError(t, svc.HandleHeartbeat(ctx, "cam-01",
		domain.MonitorHeartbeatEvent{Location: "Cổng A"}, at))

	view, err := svc.GetSystemHealth(ctx, "cam-01")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthHealthy, view.Health)
	assert.Equal(t, "Cổng A", view.Location)
	assert.Equal(t, "5m ago", view.LastSeen)

	require.NoError(t, svc.HandleGoingOffline(ctx, "cam-01", domain.MonitorGoingOfflineEvent{Reason: "shutdown"}))

	view, err = svc.GetSystemHealth(ctx, "cam-01")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthCritical, view.Health)
	// Offline giữ nguyên last_heartbeat.
	assert.Equal(t, "5m ago", view.LastSeen)
}

func TestGoingOfflineWithoutRecordIsNoop(t *testing.T) {
	svc := NewStatusService(newFakeStatusRepo(), 0)
	assert.NoError(t, svc.HandleGoingOffline(context.Background(), "cam-ghost", domain.MonitorGoingOfflineEvent{}))
}

func TestStatusStaleThreshold(t *testing.T) {
	repo := newFakeStatusRepo()
	svc := NewStatusService(repo, 90*time.Second)
	ctx := context.Background()

	require.NoError(t, svc.HandleHeartbeat(ctx, "cam-01",
		domain.MonitorHeartbeatEvent{}, time.Now().UTC().Add(-10*time.Minute)))

	view, err := svc.GetSystemHealth(ctx, "cam-01")
	require.NoError(t, err)
	assert.Equal(t, domain.HealthWarning, view.Health)
}

func waitForMessages(t *testing.T, b *fakeBroadcaster, want int) []domain.RealtimeMessage {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msgs := b.all()
		if len(msgs) >= want {
			return msgs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("không nhận đủ %d message broadcast", want)
	return nil
}

func TestStatusMonitorSetSystem(t *testing.T) {
	repo := newFakeStatusRepo()
	svc := NewStatusService(repo, 0)
	broadcaster := &fakeBroadcaster{}
	monitor := NewStatusMonitor(svc, repo, broadcaster, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.HandleHeartbeat(ctx, "cam-01",
		domain.MonitorHeartbeatEvent{}, time.Now().UTC()))

	monitor.SetSystem("cam-01")

	msgs := waitForMessages(t, broadcaster, 2)

	// Message đầu: view loading/critical phát ngay khi đổi hệ thống.
	first, ok := msgs[0].Payload.(domain.SystemHealthView)
	require.True(t, ok)
	assert.Equal(t, domain.RealtimeTypeSystemHealth, msgs[0].Type)
	assert.True(t, first.Loading)
	assert.Equal(t, domain.HealthCritical, first.Health)

	// Message sau: kết quả fetch thật.
	second, ok := msgs[1].Payload.(domain.SystemHealthView)
	require.True(t, ok)
	assert.False(t, second.Loading)
	assert.Equal(t, domain.HealthHealthy, second.Health)
	assert.Equal(t, "cam-01", second.SystemID)
}

func TestStatusMonitorRederivesOverTime(t *testing.T) {
	repo := newFakeStatusRepo()
	svc := NewStatusService(repo, 0)
	broadcaster := &fakeBroadcaster{}
	monitor := NewStatusMonitor(svc, repo, broadcaster, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, svc.HandleHeartbeat(context.Background(), "cam-01",
		domain.MonitorHeartbeatEvent{}, time.Now().UTC()))

	monitor.SetSystem("cam-01")
	go monitor.Run(ctx)

	// Chờ fetch xong + ít nhất một tick của job re-derive.
	msgs := waitForMessages(t, broadcaster, 3)
	last, ok := msgs[len(msgs)-1].Payload.(domain.SystemHealthView)
	require.True(t, ok)
	assert.Equal(t, domain.HealthHealthy, last.Health)
	assert.False(t, last.Loading)
}

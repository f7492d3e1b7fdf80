package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

type pgMonitorEventsLogRepository struct {
	db *sql.DB
}

func NewPgMonitorEventsLogRepository(db *sql.DB) repository.MonitorEventsLogRepository {
	return &pgMonitorEventsLogRepository{db: db}
}

func (r *pgMonitorEventsLogRepository) Create(ctx context.Context, event *domain.MonitorEventLog) error {
	query := `INSERT INTO monitor_events_log (received_at, system_id, message_type, payload, processed_status, processing_notes)
	           VALUES ($1, $2, $3, $4, $5, $6)
	           RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		event.ReceivedAt,
		sql.NullString{String: event.SystemID, Valid: event.SystemID != ""},
		sql.NullString{String: event.MessageType, Valid: event.MessageType != ""},
		[]byte(event.Payload),
		event.ProcessedStatus,
		sql.NullString{String: event.ProcessingNotes, Valid: event.ProcessingNotes != ""},
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("MonitorEventsLogRepository.Create: %w", err)
	}
	return nil
}

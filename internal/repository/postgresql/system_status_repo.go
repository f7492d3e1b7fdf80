package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

type pgSystemStatusRepository struct {
	db *sql.DB
}

func NewPgSystemStatusRepository(db *sql.DB) repository.SystemStatusRepository {
	return &pgSystemStatusRepository{db: db}
}

func scanSystemStatus(scan func(dest ...interface{}) error) (*domain.SystemStatus, error) {
	st := &domain.SystemStatus{}
	var location sql.NullString
	var lastHeartbeat sql.NullTime
	if err := scan(&st.SystemID, &st.Status, &location, &lastHeartbeat, &st.UpdatedAt); err != nil {
		return nil, err
	}
	if location.Valid {
		st.Location.SetValid(location.String)
	}
	if lastHeartbeat.Valid {
		st.LastHeartbeat.SetValid(lastHeartbeat.Time.In(time.UTC))
	}
	st.UpdatedAt = st.UpdatedAt.In(time.UTC)
	return st, nil
}

func (r *pgSystemStatusRepository) FindBySystemID(ctx context.Context, systemID string) (*domain.SystemStatus, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT system_id, status, location, last_heartbeat, updated_at FROM system_status WHERE system_id = $1`,
		systemID)
	st, err := scanSystemStatus(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SystemStatusRepository.FindBySystemID: %w", err)
	}
	return st, nil
}

func (r *pgSystemStatusRepository) FindAll(ctx context.Context) ([]domain.SystemStatus, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT system_id, status, location, last_heartbeat, updated_at FROM system_status ORDER BY system_id`)
	if err != nil {
		return nil, fmt.Errorf("SystemStatusRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var statuses []domain.SystemStatus
	for rows.Next() {
		st, err := scanSystemStatus(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("SystemStatusRepository.FindAll (scanning row): %w", err)
		}
		statuses = append(statuses, *st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SystemStatusRepository.FindAll (rows error): %w", err)
	}
	return statuses, nil
}

func (r *pgSystemStatusRepository) UpsertHeartbeat(ctx context.Context, systemID, location string, at time.Time) error {
	query := `INSERT INTO system_status (system_id, status, location, last_heartbeat, updated_at)
	           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
	           ON CONFLICT (system_id) DO UPDATE
	           SET status = EXCLUDED.status,
	               location = COALESCE(NULLIF(EXCLUDED.location, ''), system_status.location),
	               last_heartbeat = EXCLUDED.last_heartbeat,
	               updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, query, systemID, domain.SystemOnline, location, at)
	if err != nil {
		return fmt.Errorf("SystemStatusRepository.UpsertHeartbeat: %w", err)
	}
	notifyChange(ctx, r.db, domain.ChangeNotification{
		Table: "system_status", Action: domain.ChangeUpdate, ID: systemID,
	})
	return nil
}

func (r *pgSystemStatusRepository) MarkOffline(ctx context.Context, systemID string) error {
	// Cố ý KHÔNG đụng vào last_heartbeat: offline vẫn phải hiển thị được
	// lần sống cuối cùng.
	result, err := r.db.ExecContext(ctx,
		`UPDATE system_status SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE system_id = $2`,
		domain.SystemOffline, systemID)
	if err != nil {
		return fmt.Errorf("SystemStatusRepository.MarkOffline: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("SystemStatusRepository.MarkOffline (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	notifyChange(ctx, r.db, domain.ChangeNotification{
		Table: "system_status", Action: domain.ChangeUpdate, ID: systemID,
	})
	return nil
}

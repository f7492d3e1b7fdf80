package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

type pgSlotRepository struct {
	db *sql.DB
}

func NewPgSlotRepository(db *sql.DB) repository.SlotRepository {
	return &pgSlotRepository{db: db}
}

func scanSlot(scan func(dest ...interface{}) error) (*domain.Slot, error) {
	slot := &domain.Slot{}
	var source sql.NullString
	if err := scan(
		&slot.ID, &slot.ParkingAreaID, &slot.SlotNumber, &slot.Status,
		&source, &slot.CreatedAt, &slot.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if source.Valid {
		slot.LastStatusUpdateSource = source.String
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

const slotColumns = `id, parking_area_id, slot_number, status, last_status_update_source, created_at, updated_at`

func (r *pgSlotRepository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if slot.Status == "" {
		slot.Status = domain.SlotFree
	}
	query := `INSERT INTO slots (id, parking_area_id, slot_number, status, last_status_update_source, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		slot.ID, slot.ParkingAreaID, slot.SlotNumber, slot.Status,
		sql.NullString{String: slot.LastStatusUpdateSource, Valid: slot.LastStatusUpdateSource != ""},
	).Scan(&slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			// UNIQUE (parking_area_id, slot_number)
			return nil, fmt.Errorf("%w: slot số %d đã tồn tại trong khu vực %s",
				repository.ErrDuplicateEntry, slot.SlotNumber, slot.ParkingAreaID)
		}
		return nil, fmt.Errorf("SlotRepository.Create: %w", err)
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	areaID := slot.ParkingAreaID
	notifyChange(ctx, r.db, domain.ChangeNotification{
		Table: "slots", Action: domain.ChangeInsert, ID: slot.ID.String(), ParkingAreaID: &areaID,
	})
	return slot, nil
}

func (r *pgSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM slots WHERE id = $1`, id)
	slot, err := scanSlot(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SlotRepository.FindByID: %w", err)
	}
	return slot, nil
}

func (r *pgSlotRepository) FindByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE parking_area_id = $1 ORDER BY slot_number`
	rows, err := r.db.QueryContext(ctx, query, areaID)
	if err != nil {
		return nil, fmt.Errorf("SlotRepository.FindByAreaID: %w", err)
	}
	defer rows.Close()

	var slots []domain.Slot
	for rows.Next() {
		slot, err := scanSlot(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("SlotRepository.FindByAreaID (scanning row): %w", err)
		}
		slots = append(slots, *slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SlotRepository.FindByAreaID (rows error): %w", err)
	}
	return slots, nil
}

func (r *pgSlotRepository) FindByAreaAndNumber(ctx context.Context, areaID uuid.UUID, slotNumber int) (*domain.Slot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+slotColumns+` FROM slots WHERE parking_area_id = $1 AND slot_number = $2`,
		areaID, slotNumber)
	slot, err := scanSlot(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SlotRepository.FindByAreaAndNumber: %w", err)
	}
	return slot, nil
}

func (r *pgSlotRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SlotStatus, source string) error {
	query := `UPDATE slots
	           SET status = $1, last_status_update_source = $2, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $3
	           RETURNING parking_area_id`
	var areaID uuid.UUID
	err := r.db.QueryRowContext(ctx, query, status,
		sql.NullString{String: source, Valid: source != ""}, id).Scan(&areaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("SlotRepository.UpdateStatus: %w", err)
	}
	notifyChange(ctx, r.db, domain.ChangeNotification{
		Table: "slots", Action: domain.ChangeUpdate, ID: id.String(), ParkingAreaID: &areaID,
	})
	return nil
}

func (r *pgSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var areaID uuid.UUID
	err := r.db.QueryRowContext(ctx, `DELETE FROM slots WHERE id = $1 RETURNING parking_area_id`, id).Scan(&areaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("SlotRepository.Delete: %w", err)
	}
	notifyChange(ctx, r.db, domain.ChangeNotification{
		Table: "slots", Action: domain.ChangeDelete, ID: id.String(), ParkingAreaID: &areaID,
	})
	return nil
}

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

type pgParkingAreaRepository struct {
	db *sql.DB
}

func NewPgParkingAreaRepository(db *sql.DB) repository.ParkingAreaRepository {
	return &pgParkingAreaRepository{db: db}
}

func (r *pgParkingAreaRepository) Create(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error) {
	query := `INSERT INTO parking_areas (id, name, latitude, longitude, total_slots, password, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING created_at, updated_at`
	if area.ID == uuid.Nil {
		area.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, query,
		area.ID, area.Name, area.Latitude, area.Longitude, area.TotalSlots,
		sql.NullString{String: area.Password, Valid: area.Password != ""},
	).Scan(&area.CreatedAt, &area.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: khu vực '%s' đã tồn tại", repository.ErrDuplicateEntry, area.Name)
		}
		return nil, fmt.Errorf("ParkingAreaRepository.Create: %w", err)
	}
	area.CreatedAt = area.CreatedAt.In(time.UTC)
	area.UpdatedAt = area.UpdatedAt.In(time.UTC)
	areaID := area.ID
	notifyChange(ctx, r.db, domain.ChangeNotification{
		Table: "parking_areas", Action: domain.ChangeInsert, ID: area.ID.String(), ParkingAreaID: &areaID,
	})
	return area, nil
}

func (r *pgParkingAreaRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ParkingArea, error) {
	area := &domain.ParkingArea{}
	var password sql.NullString
	query := `SELECT id, name, latitude, longitude, total_slots, password, created_at, updated_at
	           FROM parking_areas WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&area.ID, &area.Name, &area.Latitude, &area.Longitude, &area.TotalSlots,
		&password, &area.CreatedAt, &area.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingAreaRepository.FindByID: %w", err)
	}
	if password.Valid {
		area.Password = password.String
	}
	area.CreatedAt = area.CreatedAt.In(time.UTC)
	area.UpdatedAt = area.UpdatedAt.In(time.UTC)
	return area, nil
}

func (r *pgParkingAreaRepository) FindAll(ctx context.Context) ([]domain.ParkingArea, error) {
	query := `SELECT id, name, latitude, longitude, total_slots, password, created_at, updated_at
	           FROM parking_areas ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ParkingAreaRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var areas []domain.ParkingArea
	for rows.Next() {
		var area domain.ParkingArea
		var password sql.NullString
		if err := rows.Scan(
			&area.ID, &area.Name, &area.Latitude, &area.Longitude, &area.TotalSlots,
			&password, &area.CreatedAt, &area.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingAreaRepository.FindAll (scanning row): %w", err)
		}
		if password.Valid {
			area.Password = password.String
		}
		area.CreatedAt = area.CreatedAt.In(time.UTC)
		area.UpdatedAt = area.UpdatedAt.In(time.UTC)
		areas = append(areas, area)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingAreaRepository.FindAll (rows error): %w", err)
	}
	return areas, nil
}

func (r *pgParkingAreaRepository) Update(ctx context.Context, area *domain.ParkingArea) (*domain.ParkingArea, error) {
	query := `UPDATE parking_areas
	           SET name = $1, latitude = $2, longitude = $3, total_slots = $4, password = $5, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $6
	           RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		area.Name, area.Latitude, area.Longitude, area.TotalSlots,
		sql.NullString{String: area.Password, Valid: area.Password != ""},
		area.ID,
	).Scan(&area.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: khu vực '%s' đã tồn tại", repository.ErrDuplicateEntry, area.Name)
		}
		return nil, fmt.Errorf("ParkingAreaRepository.Update: %w", err)
	}
	area.UpdatedAt = area.UpdatedAt.In(time.UTC)
	areaID := area.ID
	notifyChange(ctx, r.db, domain.ChangeNotification{
		Table: "parking_areas", Action: domain.ChangeUpdate, ID: area.ID.String(), ParkingAreaID: &areaID,
	})
	return area, nil
}

func (r *pgParkingAreaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_areas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingAreaRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingAreaRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	areaID := id
	notifyChange(ctx, r.db, domain.ChangeNotification{
		Table: "parking_areas", Action: domain.ChangeDelete, ID: id.String(), ParkingAreaID: &areaID,
	})
	return nil
}

package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

type pgPredictionRepository struct {
	db *sql.DB
}

func NewPgPredictionRepository(db *sql.DB) repository.PredictionRepository {
	return &pgPredictionRepository{db: db}
}

func (r *pgPredictionRepository) FindBySlotID(ctx context.Context, slotID uuid.UUID, limit int) ([]domain.Prediction, error) {
	if limit <= 0 {
		limit = 24
	}
	query := `SELECT id, slot_id, predicted_for, probability, created_at
	           FROM predictions
	           WHERE slot_id = $1
	           ORDER BY predicted_for DESC
	           LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, slotID, limit)
	if err != nil {
		return nil, fmt.Errorf("PredictionRepository.FindBySlotID: %w", err)
	}
	defer rows.Close()
	return collectPredictions(rows, "FindBySlotID")
}

func (r *pgPredictionRepository) FindLatestByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Prediction, error) {
	// DISTINCT ON: một prediction mới nhất cho mỗi slot của khu vực.
	query := `SELECT DISTINCT ON (p.slot_id) p.id, p.slot_id, p.predicted_for, p.probability, p.created_at
	           FROM predictions p
	           JOIN slots s ON s.id = p.slot_id
	           WHERE s.parking_area_id = $1
	           ORDER BY p.slot_id, p.predicted_for DESC`
	rows, err := r.db.QueryContext(ctx, query, areaID)
	if err != nil {
		return nil, fmt.Errorf("PredictionRepository.FindLatestByAreaID: %w", err)
	}
	defer rows.Close()
	return collectPredictions(rows, "FindLatestByAreaID")
}

func collectPredictions(rows *sql.Rows, method string) ([]domain.Prediction, error) {
	var predictions []domain.Prediction
	for rows.Next() {
		var p domain.Prediction
		if err := rows.Scan(&p.ID, &p.SlotID, &p.PredictedFor, &p.Probability, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("PredictionRepository.%s (scanning row): %w", method, err)
		}
		p.PredictedFor = p.PredictedFor.In(time.UTC)
		p.CreatedAt = p.CreatedAt.In(time.UTC)
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PredictionRepository.%s (rows error): %w", method, err)
	}
	return predictions, nil
}

package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rutvikswami/smartpark-complete/internal/domain"
	"github.com/rutvikswami/smartpark-complete/internal/repository"
)

type pgReservationRepository struct {
	db *sql.DB
}

func NewPgReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &pgReservationRepository{db: db}
}

const reservationColumns = `id, user_id, slot_id, start_time, end_time, status, created_at, cancelled_at`

func scanReservation(scan func(dest ...interface{}) error) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	var cancelledAt sql.NullTime
	if err := scan(
		&res.ID, &res.UserID, &res.SlotID, &res.StartTime, &res.EndTime,
		&res.Status, &res.CreatedAt, &cancelledAt,
	); err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		res.CancelledAt.SetValid(cancelledAt.Time.In(time.UTC))
	}
	res.StartTime = res.StartTime.In(time.UTC)
	res.EndTime = res.EndTime.In(time.UTC)
	res.CreatedAt = res.CreatedAt.In(time.UTC)
	return res, nil
}

// Reserve ghi bản đặt chỗ và chuyển slot sang reserved trong một
// transaction duy nhất. Guard WHERE status='free' vừa chặn double-booking
// vừa bảo đảm bất biến "mỗi slot tối đa một đặt chỗ active": slot của một
// đặt chỗ active luôn ở trạng thái reserved nên lần Reserve thứ hai trên
// cùng slot trượt guard và rollback.
func (r *pgReservationRepository) Reserve(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.Status = domain.ReservationActive

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.Reserve (begin tx): %w", err)
	}
	defer tx.Rollback()

	var areaID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`UPDATE slots
		  SET status = $1, last_status_update_source = 'reservation', updated_at = CURRENT_TIMESTAMP
		  WHERE id = $2 AND status = $3
		  RETURNING parking_area_id`,
		domain.SlotReserved, res.SlotID, domain.SlotFree,
	).Scan(&areaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Slot không tồn tại hoặc không còn free: cả hai đều không được đặt.
			return nil, repository.ErrSlotNotFree
		}
		return nil, fmt.Errorf("ReservationRepository.Reserve (updating slot): %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO reservations (id, user_id, slot_id, start_time, end_time, status, created_at)
		  VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		  RETURNING created_at`,
		res.ID, res.UserID, res.SlotID, res.StartTime, res.EndTime, res.Status,
	).Scan(&res.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.Reserve (inserting reservation): %w", err)
	}

	// pg_notify trong tx: listener chỉ nhận được sau commit.
	notifyChange(ctx, tx, domain.ChangeNotification{
		Table: "reservations", Action: domain.ChangeInsert, ID: res.ID.String(), ParkingAreaID: &areaID,
	})
	notifyChange(ctx, tx, domain.ChangeNotification{
		Table: "slots", Action: domain.ChangeUpdate, ID: res.SlotID.String(), ParkingAreaID: &areaID,
	})

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.Reserve (commit): %w", err)
	}
	res.CreatedAt = res.CreatedAt.In(time.UTC)
	return res, nil
}

// Cancel chuyển đặt chỗ active -> cancelled và trả slot về free, cũng
// trong một transaction duy nhất.
func (r *pgReservationRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Cancel (begin tx): %w", err)
	}
	defer tx.Rollback()

	var slotID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`UPDATE reservations
		  SET status = $1, cancelled_at = $2
		  WHERE id = $3 AND status = $4
		  RETURNING slot_id`,
		domain.ReservationCancelled, at, id, domain.ReservationActive,
	).Scan(&slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrReservationNotActive
		}
		return fmt.Errorf("ReservationRepository.Cancel (updating reservation): %w", err)
	}

	var areaID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`UPDATE slots
		  SET status = $1, last_status_update_source = 'reservation_cancel', updated_at = CURRENT_TIMESTAMP
		  WHERE id = $2
		  RETURNING parking_area_id`,
		domain.SlotFree, slotID,
	).Scan(&areaID)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Cancel (updating slot): %w", err)
	}

	notifyChange(ctx, tx, domain.ChangeNotification{
		Table: "reservations", Action: domain.ChangeUpdate, ID: id.String(), ParkingAreaID: &areaID,
	})
	notifyChange(ctx, tx, domain.ChangeNotification{
		Table: "slots", Action: domain.ChangeUpdate, ID: slotID.String(), ParkingAreaID: &areaID,
	})

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ReservationRepository.Cancel (commit): %w", err)
	}
	return nil
}

func (r *pgReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	res, err := scanReservation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindByID: %w", err)
	}
	return res, nil
}

func (r *pgReservationRepository) FindByUserID(ctx context.Context, userID int, activeOnly bool) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1`
	args := []interface{}{userID}
	if activeOnly {
		query += ` AND status = $2`
		args = append(args, domain.ReservationActive)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindByUserID: %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("ReservationRepository.FindByUserID (scanning row): %w", err)
		}
		reservations = append(reservations, *res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindByUserID (rows error): %w", err)
	}
	return reservations, nil
}

func (r *pgReservationRepository) FindActiveByAreaID(ctx context.Context, areaID uuid.UUID) ([]domain.Reservation, error) {
	query := `SELECT r.id, r.user_id, r.slot_id, r.start_time, r.end_time, r.status, r.created_at, r.cancelled_at
	           FROM reservations r
	           JOIN slots s ON s.id = r.slot_id
	           WHERE s.parking_area_id = $1 AND r.status = $2
	           ORDER BY r.start_time`
	rows, err := r.db.QueryContext(ctx, query, areaID, domain.ReservationActive)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindActiveByAreaID: %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("ReservationRepository.FindActiveByAreaID (scanning row): %w", err)
		}
		reservations = append(reservations, *res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindActiveByAreaID (rows error): %w", err)
	}
	return reservations, nil
}

// CompleteExpired đóng mọi đặt chỗ active đã quá end_time và trả slot
// của chúng về free trong một transaction.
func (r *pgReservationRepository) CompleteExpired(ctx context.Context, now time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.CompleteExpired (begin tx): %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`UPDATE reservations
		  SET status = $1
		  WHERE status = $2 AND end_time <= $3
		  RETURNING id, slot_id`,
		domain.ReservationCompleted, domain.ReservationActive, now,
	)
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.CompleteExpired (updating reservations): %w", err)
	}
	type pair struct{ resID, slotID uuid.UUID }
	var completed []pair
	for rows.Next() {
		var p pair
		if err := rows.Scan(&p.resID, &p.slotID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("ReservationRepository.CompleteExpired (scanning row): %w", err)
		}
		completed = append(completed, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("ReservationRepository.CompleteExpired (rows error): %w", err)
	}
	if len(completed) == 0 {
		return 0, nil
	}

	for _, p := range completed {
		var areaID uuid.UUID
		err := tx.QueryRowContext(ctx,
			`UPDATE slots
			  SET status = $1, last_status_update_source = 'reservation_expired', updated_at = CURRENT_TIMESTAMP
			  WHERE id = $2 AND status = $3
			  RETURNING parking_area_id`,
			domain.SlotFree, p.slotID, domain.SlotReserved,
		).Scan(&areaID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Slot đã bị monitor đổi sang occupied: giữ nguyên, camera là
				// nguồn sự thật cho trạng thái vật lý.
				continue
			}
			return 0, fmt.Errorf("ReservationRepository.CompleteExpired (updating slot): %w", err)
		}
		notifyChange(ctx, tx, domain.ChangeNotification{
			Table: "reservations", Action: domain.ChangeUpdate, ID: p.resID.String(), ParkingAreaID: &areaID,
		})
		notifyChange(ctx, tx, domain.ChangeNotification{
			Table: "slots", Action: domain.ChangeUpdate, ID: p.slotID.String(), ParkingAreaID: &areaID,
		})
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ReservationRepository.CompleteExpired (commit): %w", err)
	}
	return len(completed), nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/seatgrid/venue-reservation/internal/model"
)

// ReservationRepo owns the reservation lifecycle: claiming a seat, cancelling
// a claim and expiring overdue claims.  Every state transition that touches a
// seat's cached active-reservation pointer runs inside a transaction so the
// pointer and the reservations table cannot diverge.  All timestamps are
// stored and compared in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that need to compose
// transactions across repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = "id, user_id, venue_id, seat_id, start_time, end_time, duration_minutes, status, created_at"

func scanReservation(row interface{ Scan(...any) error }, res *model.Reservation) error {
	return row.Scan(&res.ID, &res.UserID, &res.VenueID, &res.SeatID,
		&res.StartTime, &res.EndTime, &res.DurationMinutes, &res.Status, &res.CreatedAt)
}

// Claim atomically reserves a seat for a user.  The whole operation is one
// transaction: the seat row is locked with FOR UPDATE, the absence of a live
// reservation is re-checked under that lock, and only then are the
// reservation insert and the seat update performed.  Two concurrent claims
// on the same seat therefore serialize on the row lock and the loser sees
// ErrSeatConflict, never a double booking.
//
// It returns ErrSeatNotFound when the seat does not exist or belongs to a
// different venue, and ErrSeatConflict when the seat is disabled, occupied
// or already has a live reservation.
func (r *ReservationRepo) Claim(ctx context.Context, userID, venueID, seatID uint64, durationMinutes int, now time.Time) (*model.Reservation, error) {
	now = now.UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the seat row for the duration of the claim.
	var (
		seatVenueID uint64
		seatStatus  string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT venue_id, status FROM seats WHERE id = ? FOR UPDATE`,
		seatID).Scan(&seatVenueID, &seatStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	if seatVenueID != venueID {
		return nil, ErrSeatNotFound
	}
	if seatStatus != model.SeatStatusAvailable {
		return nil, ErrSeatConflict
	}

	// Re-check for a live reservation under the lock.
	var live int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE seat_id = ? AND status = 'active' AND end_time > ?`,
		seatID, now).Scan(&live)
	if err != nil {
		return nil, err
	}
	if live > 0 {
		return nil, ErrSeatConflict
	}

	endTime := now.Add(time.Duration(durationMinutes) * time.Minute)
	ins, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, venue_id, seat_id, start_time, end_time, duration_minutes, status)
		 VALUES (?, ?, ?, ?, ?, ?, 'active')`,
		userID, venueID, seatID, now, endTime, durationMinutes)
	if err != nil {
		return nil, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return nil, err
	}

	// Point the seat at its new reservation.
	if _, err := tx.ExecContext(ctx,
		`UPDATE seats SET status = 'occupied', active_reservation_id = ?, reserved_until = ? WHERE id = ?`,
		id, endTime, seatID); err != nil {
		return nil, err
	}

	var res model.Reservation
	const sel = "SELECT " + reservationColumns + " FROM reservations WHERE id = ?"
	if err := scanReservation(tx.QueryRowContext(ctx, sel, id), &res); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &res, nil
}

// Cancel transitions an active reservation to cancelled and releases its
// seat.  The seat release is conditional on the seat still pointing at this
// reservation, so cancelling a reservation that logically expired and whose
// seat was since claimed by someone else never kicks out the new occupant.
// It returns ErrReservationNotFound when no active reservation with the
// given id exists.
func (r *ReservationRepo) Cancel(ctx context.Context, id uint64, now time.Time) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	upd, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'cancelled' WHERE id = ? AND status = 'active'`, id)
	if err != nil {
		return nil, err
	}
	n, err := upd.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrReservationNotFound
	}

	var res model.Reservation
	const sel = "SELECT " + reservationColumns + " FROM reservations WHERE id = ?"
	if err := scanReservation(tx.QueryRowContext(ctx, sel, id), &res); err != nil {
		return nil, err
	}

	// Release the seat only if it still points at this reservation.
	if _, err := tx.ExecContext(ctx,
		`UPDATE seats SET status = 'available', active_reservation_id = NULL, reserved_until = NULL
		 WHERE id = ? AND active_reservation_id = ?`,
		res.SeatID, res.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &res, nil
}

// ExpireDue marks every active reservation whose end time has passed as
// expired and releases the associated seats, each guarded by the same
// pointer check as Cancel.  It returns the reservations it expired.  Running
// it again immediately is a no-op, and concurrent runs are safe: the status
// UPDATE flips each row exactly once.
func (r *ReservationRepo) ExpireDue(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	now = now.UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = "SELECT " + reservationColumns + ` FROM reservations
	           WHERE status = 'active' AND end_time < ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	var due []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			rows.Close()
			return nil, err
		}
		due = append(due, res)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, tx.Commit()
	}

	for i := range due {
		if _, err := tx.ExecContext(ctx,
			`UPDATE reservations SET status = 'expired' WHERE id = ? AND status = 'active'`,
			due[i].ID); err != nil {
			return nil, err
		}
		due[i].Status = model.ReservationStatusExpired
		if _, err := tx.ExecContext(ctx,
			`UPDATE seats SET status = 'available', active_reservation_id = NULL, reserved_until = NULL
			 WHERE id = ? AND active_reservation_id = ?`,
			due[i].SeatID, due[i].ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return due, nil
}

// GetByID fetches a reservation regardless of state.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = "SELECT " + reservationColumns + " FROM reservations WHERE id = ?"
	var res model.Reservation
	if err := scanReservation(r.db.QueryRowContext(ctx, q, id), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// ActiveReservation is a reservation joined with the venue and seat labels a
// customer needs to recognise it.
type ActiveReservation struct {
	ID              uint64    `json:"id"`
	VenueID         uint64    `json:"venueId"`
	SeatID          uint64    `json:"seatId"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	VenueName       string    `json:"venueName"`
	SeatRow         string    `json:"seatRow"`
	SeatCol         string    `json:"seatCol"`
}

// ActiveByUser returns the user's live reservations joined with venue name
// and seat labels, newest first.
func (r *ReservationRepo) ActiveByUser(ctx context.Context, userID uint64, now time.Time) ([]ActiveReservation, error) {
	const q = `SELECT r.id, r.venue_id, r.seat_id, r.start_time, r.end_time, r.duration_minutes, r.status,
	                  v.name, s.row_label, s.col_label
	           FROM reservations r
	           JOIN venues v ON v.id = r.venue_id
	           JOIN seats s ON s.id = r.seat_id
	           WHERE r.user_id = ? AND r.status = 'active' AND r.end_time > ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ActiveReservation, 0)
	for rows.Next() {
		var a ActiveReservation
		if err := rows.Scan(&a.ID, &a.VenueID, &a.SeatID, &a.StartTime, &a.EndTime,
			&a.DurationMinutes, &a.Status, &a.VenueName, &a.SeatRow, &a.SeatCol); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ActiveByVenue returns every live reservation in the venue.  Used by the
// seat-grid read path to overlay live status onto seats.
func (r *ReservationRepo) ActiveByVenue(ctx context.Context, venueID uint64, now time.Time) ([]model.Reservation, error) {
	const q = "SELECT " + reservationColumns + ` FROM reservations
	           WHERE venue_id = ? AND status = 'active' AND end_time > ?`
	rows, err := r.db.QueryContext(ctx, q, venueID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		items = append(items, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// VenueReservation is a reservation joined with the identity of the user who
// made it.  Returned by admin listings.
type VenueReservation struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"userId"`
	VenueID         uint64    `json:"venueId"`
	SeatID          uint64    `json:"seatId"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`
	UserName        string    `json:"userName"`
	UserEmail       string    `json:"userEmail"`
}

// ListByVenue returns every reservation for a venue in any state, newest
// first, joined with the reserving user's name and email.
func (r *ReservationRepo) ListByVenue(ctx context.Context, venueID uint64) ([]VenueReservation, error) {
	const q = `SELECT r.id, r.user_id, r.venue_id, r.seat_id, r.start_time, r.end_time,
	                  r.duration_minutes, r.status, u.name, u.email
	           FROM reservations r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.venue_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]VenueReservation, 0)
	for rows.Next() {
		var (
			vr   VenueReservation
			name sql.NullString
		)
		if err := rows.Scan(&vr.ID, &vr.UserID, &vr.VenueID, &vr.SeatID, &vr.StartTime,
			&vr.EndTime, &vr.DurationMinutes, &vr.Status, &name, &vr.UserEmail); err != nil {
			return nil, err
		}
		if name.Valid {
			vr.UserName = name.String
		} else {
			vr.UserName = "Unknown"
		}
		items = append(items, vr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/seatgrid/venue-reservation/internal/model"
)

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

const seatColumns = "id, venue_id, row_label, col_label, seat_type, status, active_reservation_id, reserved_until, x, y, created_at, updated_at"

func scanSeat(row interface{ Scan(...any) error }, s *model.Seat) error {
	var (
		resID sql.NullInt64
		until sql.NullTime
		x, y  sql.NullInt32
	)
	if err := row.Scan(&s.ID, &s.VenueID, &s.RowLabel, &s.ColLabel, &s.SeatType, &s.Status,
		&resID, &until, &x, &y, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	if resID.Valid {
		id := uint64(resID.Int64)
		s.ActiveReservationID = &id
	}
	if until.Valid {
		t := until.Time
		s.ReservedUntil = &t
	}
	if x.Valid {
		v := x.Int32
		s.X = &v
	}
	if y.Valid {
		v := y.Int32
		s.Y = &v
	}
	return nil
}

// Create inserts a single seat record.  On success the seat's ID and
// timestamps are populated.  A duplicate (venue, row, col) triple surfaces
// as ErrSeatExists.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	const q = `INSERT INTO seats (venue_id, row_label, col_label, seat_type, status, x, y)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.VenueID, s.RowLabel, s.ColLabel, s.SeatType, s.Status, s.X, s.Y)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSeatExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = "SELECT " + seatColumns + " FROM seats WHERE id = ?"
	return scanSeat(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// CreateBulk inserts multiple seats in a single statement.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (venue_id, row_label, col_label, seat_type, status, x, y) VALUES `
	args := make([]interface{}, 0, len(seats)*7)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, seat.VenueID, seat.RowLabel, seat.ColLabel, seat.SeatType, seat.Status, seat.X, seat.Y)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrSeatExists
	}
	return err
}

// ByVenue retrieves all seats of a venue ordered by row_label then col_label.
func (r *SeatRepo) ByVenue(ctx context.Context, venueID uint64) ([]model.Seat, error) {
	const q = "SELECT " + seatColumns + ` FROM seats
	           WHERE venue_id = ?
	           ORDER BY row_label, col_label`
	rows, err := r.db.QueryContext(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = "SELECT " + seatColumns + " FROM seats WHERE id = ?"
	var s model.Seat
	if err := scanSeat(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// SeatUpdate lists the admin-editable seat fields.  Nil fields are left
// untouched.  The active-reservation pointer is deliberately absent: only
// the claim, cancel and expiry paths may touch it.
type SeatUpdate struct {
	RowLabel *string
	ColLabel *string
	SeatType *string
	Status   *string
	X        *int32
	Y        *int32
}

// Update applies a partial update and returns the stored seat.  It returns
// ErrSeatNotFound when the seat does not exist and ErrSeatExists when the
// new (row, col) collides with another seat in the venue.
func (r *SeatRepo) Update(ctx context.Context, id uint64, upd SeatUpdate) (*model.Seat, error) {
	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	if upd.RowLabel != nil {
		sets = append(sets, "row_label = ?")
		args = append(args, *upd.RowLabel)
	}
	if upd.ColLabel != nil {
		sets = append(sets, "col_label = ?")
		args = append(args, *upd.ColLabel)
	}
	if upd.SeatType != nil {
		sets = append(sets, "seat_type = ?")
		args = append(args, *upd.SeatType)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.X != nil {
		sets = append(sets, "x = ?")
		args = append(args, *upd.X)
	}
	if upd.Y != nil {
		sets = append(sets, "y = ?")
		args = append(args, *upd.Y)
	}
	if len(sets) > 0 {
		q := "UPDATE seats SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "1062") {
				return nil, ErrSeatExists
			}
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// This file defines repository methods for venues.  A venue is a physical
// location owning a grid of seats.  Occupancy (how many seats currently have
// a live reservation) is always derived at read time from the reservations
// table; it is never stored on the venue row.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/seatgrid/venue-reservation/internal/model"
)

// VenueRepo encapsulates all database queries related to venues.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the provided DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

const venueColumns = "id, name, location, description, capacity, open_time, close_time, image_url, category, created_at, updated_at"

func scanVenue(row interface{ Scan(...any) error }, v *model.Venue) error {
	var (
		desc sql.NullString
		img  sql.NullString
	)
	if err := row.Scan(&v.ID, &v.Name, &v.Location, &desc, &v.Capacity,
		&v.OpenTime, &v.CloseTime, &img, &v.Category, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return err
	}
	if desc.Valid {
		d := desc.String
		v.Description = &d
	}
	if img.Valid {
		u := img.String
		v.ImageURL = &u
	}
	return nil
}

// Create inserts a new venue.  On success the venue's ID, CreatedAt and
// UpdatedAt fields are populated from the stored row.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const qInsert = `INSERT INTO venues (name, location, description, capacity, open_time, close_time, image_url, category)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		v.Name, v.Location, v.Description, v.Capacity, v.OpenTime, v.CloseTime, v.ImageURL, v.Category)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)

	// Follow-up SELECT to populate default timestamp fields.
	const qSelect = "SELECT " + venueColumns + " FROM venues WHERE id = ?"
	return scanVenue(r.db.QueryRowContext(ctx, qSelect, v.ID), v)
}

// GetByID fetches a venue by its ID.  It returns ErrVenueNotFound if no row
// is found.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	const q = "SELECT " + venueColumns + " FROM venues WHERE id = ?"
	var v model.Venue
	if err := scanVenue(r.db.QueryRowContext(ctx, q, id), &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListWithOccupancy returns all venues ordered newest first, each with
// OccupiedSeats set to the count of reservations that are active with an end
// time after now.
func (r *VenueRepo) ListWithOccupancy(ctx context.Context, now time.Time) ([]model.Venue, error) {
	const q = `SELECT v.id, v.name, v.location, v.description, v.capacity,
	                  v.open_time, v.close_time, v.image_url, v.category,
	                  v.created_at, v.updated_at,
	                  COALESCE(o.cnt, 0)
	           FROM venues v
	           LEFT JOIN (
	               SELECT venue_id, COUNT(*) AS cnt
	               FROM reservations
	               WHERE status = 'active' AND end_time > ?
	               GROUP BY venue_id
	           ) o ON o.venue_id = v.id
	           ORDER BY v.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := make([]model.Venue, 0)
	for rows.Next() {
		var (
			v    model.Venue
			desc sql.NullString
			img  sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.Name, &v.Location, &desc, &v.Capacity,
			&v.OpenTime, &v.CloseTime, &img, &v.Category,
			&v.CreatedAt, &v.UpdatedAt, &v.OccupiedSeats); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			v.Description = &d
		}
		if img.Valid {
			u := img.String
			v.ImageURL = &u
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return venues, nil
}

// VenueUpdate lists the venue fields that may be changed after creation.
// Nil fields are left untouched.
type VenueUpdate struct {
	Name        *string
	Location    *string
	Description *string
	Capacity    *uint32
	OpenTime    *string
	CloseTime   *string
	ImageURL    *string
	Category    *string
}

// Update applies a partial update and returns the stored venue.  It returns
// ErrVenueNotFound when the venue does not exist.  Passing an update with no
// set fields just re-reads the row.
func (r *VenueRepo) Update(ctx context.Context, id uint64, upd VenueUpdate) (*model.Venue, error) {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *upd.Location)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Capacity != nil {
		sets = append(sets, "capacity = ?")
		args = append(args, *upd.Capacity)
	}
	if upd.OpenTime != nil {
		sets = append(sets, "open_time = ?")
		args = append(args, *upd.OpenTime)
	}
	if upd.CloseTime != nil {
		sets = append(sets, "close_time = ?")
		args = append(args, *upd.CloseTime)
	}
	if upd.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *upd.ImageURL)
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *upd.Category)
	}
	if len(sets) > 0 {
		q := "UPDATE venues SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		args = append(args, id)
		res, err := r.db.ExecContext(ctx, q, args...)
		if err != nil {
			return nil, err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			// MySQL reports zero rows both for a missing id and for a no-op
			// update; disambiguate with the read below.
			_ = n
		}
	}
	return r.GetByID(ctx, id)
}

// SetImageURL stores the URL of the uploaded venue image.
func (r *VenueRepo) SetImageURL(ctx context.Context, id uint64, imageURL string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE venues SET image_url = ? WHERE id = ?", imageURL, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

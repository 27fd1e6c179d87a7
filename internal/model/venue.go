package model

import "time"

// Venue categories persisted in venues.category.
const (
	CategoryTech       = "tech"
	CategoryCafe       = "cafe"
	CategoryRestaurant = "restaurant"
)

// Venue represents a bookable physical location containing a grid of seats.
// Open/close times are time-of-day strings ("HH:MM"); whether the venue is
// currently open is computed by the hours evaluator, never stored.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – venue display name.
//  Location      – free-form location string.
//  Description   – optional description.
//  Capacity      – declared seat capacity.
//  OpenTime      – opening time of day ("HH:MM").
//  CloseTime     – closing time of day ("HH:MM"); may be before OpenTime
//                  for windows that cross midnight.
//  ImageURL      – optional URL of the uploaded venue image.
//  Category      – one of tech, cafe, restaurant.
//  OccupiedSeats – derived count of currently active reservations.  Never
//                  persisted; populated only by occupancy queries.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Venue struct {
	ID            uint64    // venues.id
	Name          string    // venues.name
	Location      string    // venues.location
	Description   *string   // venues.description (nullable)
	Capacity      uint32    // venues.capacity
	OpenTime      string    // venues.open_time
	CloseTime     string    // venues.close_time
	ImageURL      *string   // venues.image_url (nullable)
	Category      string    // venues.category
	OccupiedSeats uint32    // derived, not a column
	CreatedAt     time.Time // venues.created_at
	UpdatedAt     time.Time // venues.updated_at
}

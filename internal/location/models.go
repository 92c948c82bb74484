// Package location models donation locations and their scheduled drives.
package location

import (
	"time"

	id "bloodbank/pkg/domain"
)

type Location struct {
	ID        id.LocationID `json:"id"`
	Name      string        `json:"name"`
	Address   string        `json:"address"`
	City      string        `json:"city,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Schedule is a donation drive at a location on a given date.
type Schedule struct {
	ID         id.ScheduleID `json:"id"`
	LocationID id.LocationID `json:"locationId"`
	EventDate  time.Time     `json:"eventDate"`
	// Capacity is the number of donor slots; zero means unlimited.
	Capacity  int       `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

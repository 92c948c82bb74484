// Package disease holds the lookup table of conditions that affect donation
// eligibility screening.
package disease

import (
	"time"

	id "bloodbank/pkg/domain"
)

type Disease struct {
	ID          id.DiseaseID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	// BlocksDonation marks conditions that disqualify a donor outright;
	// RequiresScreening marks those that only demand extra review.
	BlocksDonation    bool      `json:"blocksDonation"`
	RequiresScreening bool      `json:"requiresScreening"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

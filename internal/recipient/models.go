// Package recipient holds the blood recipient records medical centers keep
// alongside their requests.
package recipient

import (
	"time"

	id "bloodbank/pkg/domain"
)

type Recipient struct {
	ID        id.RecipientID `json:"id"`
	Name      string         `json:"name"`
	Age       int            `json:"age"`
	BloodType id.BloodType   `json:"bloodType"`
	Gender    id.Gender      `json:"gender,omitempty"`
	HeightCm  float64        `json:"heightCm,omitempty"`
	WeightKg  float64        `json:"weightKg,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

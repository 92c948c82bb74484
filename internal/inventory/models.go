// Package inventory models the blood stock ledger: one record per blood type,
// quantities in whole units.
package inventory

import (
	"errors"
	"time"

	id "bloodbank/pkg/domain"
	"bloodbank/internal/compat"
)

// Record is the on-hand stock for one blood type. BloodType is the unique key;
// duplicates are a schema violation, not something the ledger merges at read
// time. Quantity never goes negative: any debit that would cross zero is
// rejected whole.
type Record struct {
	BloodType id.BloodType `json:"bloodType"`
	Quantity  int          `json:"quantity"`
	UpdatedBy *id.UserID   `json:"updatedBy,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ErrInsufficientStock is the store-level fact that a debit would push a
// quantity below zero. Services translate it into a coded business rejection.
var ErrInsufficientStock = errors.New("insufficient stock")

// AvailabilityReport is the read-only answer to "can we serve this request,
// and if not, what could substitute".
type AvailabilityReport struct {
	BloodType                id.BloodType          `json:"bloodType"`
	RequestedAmount          int                   `json:"requestedAmount"`
	IsAvailable              bool                  `json:"isAvailable"`
	AvailableQuantity        int                   `json:"availableQuantity"`
	AllCompatibleTypes       []id.BloodType        `json:"allCompatibleTypes"`
	AvailableCompatibleTypes []compat.Availability `json:"availableCompatibleTypes"`
	Message                  string                `json:"message"`
}

// SortRecords orders records by the canonical blood type order so listings are
// deterministic across store implementations.
func SortRecords(records []Record) {
	rank := func(t id.BloodType) int {
		for i, bt := range id.BloodTypes {
			if bt == t {
				return i
			}
		}
		return len(id.BloodTypes)
	}
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && rank(records[j].BloodType) < rank(records[j-1].BloodType); j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}

// Snapshot converts ledger records into the value slices the compatibility
// table consumes.
func Snapshot(records []Record) []compat.Availability {
	snapshot := make([]compat.Availability, 0, len(records))
	for _, r := range records {
		snapshot = append(snapshot, compat.Availability{BloodType: r.BloodType, Quantity: r.Quantity})
	}
	return snapshot
}

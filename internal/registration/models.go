// Package registration models donation registrations: a donor's pledge to
// give blood, screened for eligibility at intake and credited to the
// inventory ledger on confirmation.
package registration

import (
	"time"

	"bloodbank/internal/eligibility"
	id "bloodbank/pkg/domain"
)

// Status is the registration lifecycle. Confirmed and Cancelled are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type Registration struct {
	ID         id.RegistrationID `json:"id"`
	DonorID    id.UserID         `json:"donorId"`
	ScheduleID *id.ScheduleID    `json:"scheduleId,omitempty"`
	Status     Status            `json:"status"`
	BloodType  id.BloodType      `json:"bloodType"`
	// Amount is the number of units pledged, credited on confirmation.
	Amount    int                  `json:"amount"`
	Screening eligibility.Snapshot `json:"screening"`
	// Warnings are advisory eligibility notes; they never block intake.
	Warnings    []string     `json:"warnings,omitempty"`
	ConfirmedBy *id.UserID   `json:"confirmedBy,omitempty"`
	ConfirmedAt *time.Time   `json:"confirmedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Package request models blood requests from medical centers and their
// fulfillment against the inventory ledger.
package request

import (
	"time"

	id "bloodbank/pkg/domain"
)

// Status is the request lifecycle. Confirmed is terminal; Priority and
// OutOfStock are administrative labels staff apply while a request waits.
type Status string

const (
	StatusPending    Status = "pending"
	StatusWaiting    Status = "waiting"
	StatusPriority   Status = "priority"
	StatusOutOfStock Status = "out_of_stock"
	StatusConfirmed  Status = "confirmed"
)

// Confirmable reports whether a confirm may debit stock from this status.
func (s Status) Confirmable() bool {
	return s == StatusPending || s == StatusWaiting
}

type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyCritical Urgency = "critical"
)

var validUrgencies = map[Urgency]bool{
	UrgencyNormal:   true,
	UrgencyUrgent:   true,
	UrgencyCritical: true,
}

func (u Urgency) IsValid() bool { return validUrgencies[u] }

type Request struct {
	ID          id.RequestID `json:"id"`
	RequesterID id.UserID    `json:"requesterId"`
	PatientName string       `json:"patientName"`
	BloodType   id.BloodType `json:"bloodType"`
	Amount      int          `json:"amount"`
	Urgency     Urgency      `json:"urgency"`
	Status      Status       `json:"status"`
	// FulfilledWith is the blood type actually debited; it differs from
	// BloodType when a compatible substitute served the request.
	FulfilledWith *id.BloodType `json:"fulfilledWith,omitempty"`
	Note          string        `json:"note,omitempty"`
	ProcessedBy   *id.UserID    `json:"processedBy,omitempty"`
	ProcessedAt   *time.Time    `json:"processedAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

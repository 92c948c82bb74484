// Package domain holds the shared value types: typed identifiers and the closed
// enumerations (blood type, role, gender) that the feature packages exchange.
//
// Identifiers are distinct uuid-backed types so a RegistrationID can never be
// passed where a UserID is expected. Construct them via the Parse functions at
// trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	derrors "bloodbank/pkg/domain-errors"
)

type (
	// UserID identifies a user account (donor, staff, admin, medical center).
	UserID uuid.UUID
	// RegistrationID identifies a donation registration.
	RegistrationID uuid.UUID
	// RequestID identifies a blood request from a medical center.
	RequestID uuid.UUID
	// LocationID identifies a donation location.
	LocationID uuid.UUID
	// ScheduleID identifies a donation schedule slot.
	ScheduleID uuid.UUID
	// DiseaseID identifies a disease catalog entry.
	DiseaseID uuid.UUID
	// RecipientID identifies a blood recipient record kept by medical centers.
	RecipientID uuid.UUID
	// NotificationID identifies a notification sent to a user.
	NotificationID uuid.UUID
)

// NewUserID generates a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewRegistrationID generates a fresh random registration ID.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// NewRequestID generates a fresh random blood request ID.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// NewLocationID generates a fresh random location ID.
func NewLocationID() LocationID { return LocationID(uuid.New()) }

// NewScheduleID generates a fresh random schedule ID.
func NewScheduleID() ScheduleID { return ScheduleID(uuid.New()) }

// NewDiseaseID generates a fresh random disease ID.
func NewDiseaseID() DiseaseID { return DiseaseID(uuid.New()) }

// NewRecipientID generates a fresh random recipient ID.
func NewRecipientID() RecipientID { return RecipientID(uuid.New()) }

// NewNotificationID generates a fresh random notification ID.
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id RequestID) String() string      { return uuid.UUID(id).String() }
func (id LocationID) String() string     { return uuid.UUID(id).String() }
func (id ScheduleID) String() string     { return uuid.UUID(id).String() }
func (id DiseaseID) String() string      { return uuid.UUID(id).String() }
func (id RecipientID) String() string    { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool         { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }
func (id LocationID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ScheduleID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id DiseaseID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }
func (id RecipientID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// The typed IDs render as canonical uuid strings in JSON.
func (id UserID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id RegistrationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id RequestID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id LocationID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id ScheduleID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id DiseaseID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id RecipientID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id NotificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RegistrationID) UnmarshalText(b []byte) error {
	parsed, err := ParseRegistrationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseRequestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *LocationID) UnmarshalText(b []byte) error {
	parsed, err := ParseLocationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ScheduleID) UnmarshalText(b []byte) error {
	parsed, err := ParseScheduleID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DiseaseID) UnmarshalText(b []byte) error {
	parsed, err := ParseDiseaseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RecipientID) UnmarshalText(b []byte) error {
	parsed, err := ParseRecipientID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *NotificationID) UnmarshalText(b []byte) error {
	parsed, err := ParseNotificationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseID(s, kind string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, derrors.Newf(derrors.CodeInvalidInput, "invalid %s id", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, derrors.Newf(derrors.CodeInvalidInput, "%s id cannot be nil", kind)
	}
	return u, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseID(s, "user")
	return UserID(u), err
}

// ParseRegistrationID constructs a RegistrationID from external input.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseID(s, "registration")
	return RegistrationID(u), err
}

// ParseRequestID constructs a RequestID from external input.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseID(s, "request")
	return RequestID(u), err
}

// ParseLocationID constructs a LocationID from external input.
func ParseLocationID(s string) (LocationID, error) {
	u, err := parseID(s, "location")
	return LocationID(u), err
}

// ParseScheduleID constructs a ScheduleID from external input.
func ParseScheduleID(s string) (ScheduleID, error) {
	u, err := parseID(s, "schedule")
	return ScheduleID(u), err
}

// ParseDiseaseID constructs a DiseaseID from external input.
func ParseDiseaseID(s string) (DiseaseID, error) {
	u, err := parseID(s, "disease")
	return DiseaseID(u), err
}

// ParseRecipientID constructs a RecipientID from external input.
func ParseRecipientID(s string) (RecipientID, error) {
	u, err := parseID(s, "recipient")
	return RecipientID(u), err
}

// ParseNotificationID constructs a NotificationID from external input.
func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseID(s, "notification")
	return NotificationID(u), err
}

// Package user manages accounts: donors, staff, admins and medical centers.
package user

import (
	"time"

	id "bloodbank/pkg/domain"
)

type User struct {
	ID           id.UserID    `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Role         id.Role      `json:"role"`
	Gender       id.Gender    `json:"gender,omitempty"`
	BloodType    id.BloodType `json:"bloodType,omitempty"`
	DateOfBirth  *time.Time   `json:"dateOfBirth,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Address      string       `json:"address,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Role is immutable after registration; no update path writes it.
const (
	RoleProducer       = "producer"
	RoleBookingOfficer = "booking_officer"
	RoleOperator       = "operator"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleProducer, RoleBookingOfficer, RoleOperator:
		return true
	}
	return false
}

// User is the application-level profile, keyed by the credential ID.
type User struct {
	UID            uuid.UUID `json:"uid" gorm:"type:char(36);primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name           string    `json:"name" gorm:"size:255;not null"`
	Role           string    `json:"role" gorm:"size:50;not null;index"`
	Specialization string    `json:"specialization,omitempty" gorm:"size:100"` // operators only
	PushToken      string    `json:"push_token,omitempty" gorm:"size:512"`
	CreatedAt      time.Time `json:"created_at"`
	LastSeen       time.Time `json:"last_seen"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types created by producer/operator flows.
const (
	NotificationAssignmentOffer  = "assignment_offer"
	NotificationProductionStatus = "production_status"
	NotificationReminder         = "reminder"
	NotificationMessage          = "new_message"
)

// Notification is a per-user notification document. Read transitions only
// false to true, never back.
type Notification struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID  `json:"user_id" gorm:"type:char(36);not null;index"`
	ProductionID *uuid.UUID `json:"production_id,omitempty" gorm:"type:char(36);index"`
	Type         string     `json:"type" gorm:"size:50;not null"`
	Title        string     `json:"title" gorm:"size:255;not null"`
	Body         string     `json:"body" gorm:"type:text"`
	Read         bool       `json:"read" gorm:"not null;default:false;index"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Production status lifecycle.
const (
	StatusRequested  = "requested"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Production is a scheduled television production.
type Production struct {
	ID              uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name            string    `json:"name" gorm:"size:255;not null"`
	Date            time.Time `json:"date" gorm:"not null;index"`
	CallTime        time.Time `json:"call_time"`
	StartTime       time.Time `json:"start_time" gorm:"not null;index"`
	EndTime         time.Time `json:"end_time"`
	Venue           string    `json:"venue" gorm:"size:255"`
	LocationDetails string    `json:"location_details" gorm:"type:text"`
	Status          string    `json:"status" gorm:"size:50;not null;default:'requested';index"`
	Notes           string    `json:"notes" gorm:"type:text"`
	RequestedBy     uuid.UUID `json:"requested_by" gorm:"type:char(36);index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Production) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

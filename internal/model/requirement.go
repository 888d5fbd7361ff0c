package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Requirement is a flat crew-requirement document for a production. There is
// no matching engine; booking officers resolve requirements into assignments
// by hand.
type Requirement struct {
	ID             uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ProductionID   uuid.UUID `json:"production_id" gorm:"type:char(36);not null;index"`
	Role           string    `json:"role" gorm:"size:50;not null"`
	Specialization string    `json:"specialization,omitempty" gorm:"size:100"`
	Count          int       `json:"count" gorm:"not null;default:1"`
	Notes          string    `json:"notes" gorm:"type:text"`
	CreatedBy      uuid.UUID `json:"created_by" gorm:"type:char(36)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Requirement) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

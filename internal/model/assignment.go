package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment statuses.
const (
	AssignmentOffered  = "offered"
	AssignmentAccepted = "accepted"
	AssignmentDeclined = "declined"
)

// Assignment links an operator to a production requirement.
type Assignment struct {
	ID            uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ProductionID  uuid.UUID `json:"production_id" gorm:"type:char(36);not null;index"`
	RequirementID uuid.UUID `json:"requirement_id" gorm:"type:char(36);not null;index"`
	OperatorUID   uuid.UUID `json:"operator_uid" gorm:"type:char(36);not null;index"`
	Status        string    `json:"status" gorm:"size:50;not null;default:'offered'"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a per-production chat message.
type Message struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ProductionID uuid.UUID `json:"production_id" gorm:"type:char(36);not null;index"`
	SenderUID    uuid.UUID `json:"sender_uid" gorm:"type:char(36);not null;index"`
	Body         string    `json:"body" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

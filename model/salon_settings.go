package model

import (
	"time"

	"github.com/google/uuid"
)

// SalonSettings is one key/value row of salon-wide configuration
// (salon name, phone, business hours, workflow feature flags).
type SalonSettings struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SettingKey   string    `json:"setting_key" gorm:"unique;not null"`
	SettingValue string    `json:"setting_value" gorm:"not null"`
	Description  string    `json:"description"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"default:now()"`
}

func (SalonSettings) TableName() string {
	return "salon_settings"
}

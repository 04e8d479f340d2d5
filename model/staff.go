package model

import (
	"time"

	"github.com/google/uuid"
)

// Staff is one salon staff member, keyed by their chat-platform user id so
// inbound webhook messages can be resolved to a person.
type Staff struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatUserID string    `json:"chat_user_id" gorm:"type:varchar(64);not null;uniqueIndex"`
	Name       string    `json:"name" gorm:"type:varchar(100);not null"`
	Position   string    `json:"position" gorm:"type:varchar(50)"` // 美容師 | 理容師 | アシスタント ...
	Phone      string    `json:"phone" gorm:"type:varchar(20)"`
	Email      string    `json:"email" gorm:"type:varchar(200)"`
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Staff) TableName() string {
	return "staff"
}

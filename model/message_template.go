package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageTemplate is one of the fixed built-in notification templates.
// Body contains {{variable}} placeholders; Variables holds the distinct
// placeholder names currently present in Body, recomputed on every update.
type MessageTemplate struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TemplateID  string          `json:"template_id" gorm:"type:varchar(50);not null;uniqueIndex"` // 'absence_notification' | 'emergency_notification' | 'general_notification' | 'substitute_request'
	DisplayName string          `json:"display_name" gorm:"type:varchar(100);not null"`
	Body        string          `json:"body" gorm:"type:text;not null"`
	Variables   json.RawMessage `json:"variables" gorm:"type:jsonb"` // ordered string array, derived from Body
	SortOrder   int             `json:"sort_order" gorm:"default:0"` // display order in the admin console
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (MessageTemplate) TableName() string {
	return "message_templates"
}

// VariableNames decodes the stored variable list.
func (t *MessageTemplate) VariableNames() []string {
	var names []string
	if len(t.Variables) > 0 {
		_ = json.Unmarshal(t.Variables, &names)
	}
	return names
}

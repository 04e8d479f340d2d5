package model

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowRecord is a row written by the structured-record channel: one
// audit entry per dispatched absence/substitute notification.
type WorkflowRecord struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StaffName   string    `json:"staff_name" gorm:"type:varchar(100);not null"`
	AbsenceDate string    `json:"absence_date" gorm:"type:varchar(10)"` // YYYY-MM-DD
	AbsenceTime string    `json:"absence_time" gorm:"type:varchar(20)"` // shift window, e.g. 10:00-18:00
	Reason      string    `json:"reason" gorm:"type:varchar(100)"`
	Message     string    `json:"message" gorm:"type:text"` // the rendered notification body
	Status      string    `json:"status" gorm:"type:varchar(20);default:'処理中'"`
	ReportedAt  time.Time `json:"reported_at" gorm:"autoCreateTime"`
}

func (WorkflowRecord) TableName() string {
	return "workflow_records"
}

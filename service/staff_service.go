package service

import (
	"fmt"

	"salon_workflow/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffService is the staff directory: inbound chat user ids resolve to
// staff members here.
type StaffService struct {
	db *gorm.DB
}

func NewStaffService(db *gorm.DB) *StaffService {
	return &StaffService{db: db}
}

// FindByChatUserID resolves a chat-platform user id to an active staff
// member.
func (s *StaffService) FindByChatUserID(chatUserID string) (*model.Staff, error) {
	var staff model.Staff
	err := s.db.Where("chat_user_id = ? AND is_active = ?", chatUserID, true).First(&staff).Error
	if err != nil {
		return nil, fmt.Errorf("staff not found: %w", err)
	}
	return &staff, nil
}

// ListColleagues returns every other active staff member, the candidate set
// for substitute recruitment.
func (s *StaffService) ListColleagues(excludeID uuid.UUID) ([]model.Staff, error) {
	var staff []model.Staff
	err := s.db.Where("id <> ? AND is_active = ?", excludeID, true).Order("name ASC").Find(&staff).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list colleagues: %w", err)
	}
	return staff, nil
}

// ListStaff returns all staff members for the admin console.
func (s *StaffService) ListStaff() ([]model.Staff, error) {
	var staff []model.Staff
	err := s.db.Order("created_at ASC").Find(&staff).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

// CreateStaff provisions a new staff member.
func (s *StaffService) CreateStaff(staff *model.Staff) (*model.Staff, error) {
	if err := s.db.Create(staff).Error; err != nil {
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}
	return staff, nil
}

// UpdateStaff applies partial updates to a staff member.
func (s *StaffService) UpdateStaff(id uuid.UUID, updates map[string]interface{}) error {
	result := s.db.Model(&model.Staff{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update staff: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("staff not found")
	}
	return nil
}

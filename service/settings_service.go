package service

import (
	"fmt"
	"sync"

	"salon_workflow/model"

	"gorm.io/gorm"
)

// SettingsService serves salon-wide settings from an in-memory cache over
// the salon_settings table.
type SettingsService struct {
	db              *gorm.DB
	settingsCache   map[string]string
	settingsCacheMu sync.RWMutex
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	service := &SettingsService{
		db:            db,
		settingsCache: make(map[string]string),
	}
	service.LoadSettings()
	return service
}

// LoadSettings reloads the whole cache from the database.
func (s *SettingsService) LoadSettings() error {
	var settings []model.SalonSettings
	if err := s.db.Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load salon settings: %w", err)
	}

	s.settingsCacheMu.Lock()
	defer s.settingsCacheMu.Unlock()

	for _, setting := range settings {
		s.settingsCache[setting.SettingKey] = setting.SettingValue
	}

	return nil
}

// GetSetting returns a cached setting value.
func (s *SettingsService) GetSetting(key string) (string, bool) {
	s.settingsCacheMu.RLock()
	defer s.settingsCacheMu.RUnlock()

	value, exists := s.settingsCache[key]
	return value, exists
}

// GetSettingDefault returns a cached value or the given default.
func (s *SettingsService) GetSettingDefault(key, defaultValue string) string {
	if value, exists := s.GetSetting(key); exists {
		return value
	}
	return defaultValue
}

// GetBoolSetting returns a boolean setting.
func (s *SettingsService) GetBoolSetting(key string, defaultValue bool) bool {
	value, exists := s.GetSetting(key)
	if !exists {
		return defaultValue
	}
	return value == "true"
}

// IsFeatureEnabled checks a workflow feature flag.
func (s *SettingsService) IsFeatureEnabled(featureKey string) bool {
	return s.GetBoolSetting(featureKey, false)
}

// UpdateSetting writes one setting to the database and the cache.
func (s *SettingsService) UpdateSetting(key, value string) error {
	result := s.db.Model(&model.SalonSettings{}).
		Where("setting_key = ?", key).
		Update("setting_value", value)

	if result.Error != nil {
		return fmt.Errorf("failed to update setting: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("setting key not found: %s", key)
	}

	s.settingsCacheMu.Lock()
	s.settingsCache[key] = value
	s.settingsCacheMu.Unlock()

	return nil
}

// GetAllSettings returns a copy of the cached settings.
func (s *SettingsService) GetAllSettings() (map[string]string, error) {
	s.settingsCacheMu.RLock()
	defer s.settingsCacheMu.RUnlock()

	result := make(map[string]string, len(s.settingsCache))
	for k, v := range s.settingsCache {
		result[k] = v
	}

	return result, nil
}

// InitDefaultSettings seeds the settings the workflow reads. Existing rows
// are left untouched.
func (s *SettingsService) InitDefaultSettings() error {
	defaults := []model.SalonSettings{
		{SettingKey: "salon_name", SettingValue: "カルサクサロン", Description: "サロン名"},
		{SettingKey: "salon_phone", SettingValue: "03-1234-5678", Description: "サロン電話番号"},
		{SettingKey: "business_hours", SettingValue: "10:00-19:00", Description: "営業時間"},
		{SettingKey: "management_url", SettingValue: "https://karusaku-salon.com/admin", Description: "管理画面URL"},
		{SettingKey: "substitute_allowance", SettingValue: "5000", Description: "代替出勤手当（円）"},
		{SettingKey: "default_shift_window", SettingValue: "10:00-18:00", Description: "欠勤報告の既定シフト時間帯"},
		{SettingKey: "unknown_reply_enabled", SettingValue: "true", Description: "未分類メッセージへの自動返信"},
		{SettingKey: "substitute_recruitment_enabled", SettingValue: "true", Description: "欠勤報告後の代替スタッフ募集"},
	}

	for _, def := range defaults {
		var existing model.SalonSettings
		err := s.db.Where("setting_key = ?", def.SettingKey).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := s.db.Create(&def).Error; err != nil {
				return fmt.Errorf("failed to create default setting %s: %w", def.SettingKey, err)
			}
		}
	}

	return s.LoadSettings()
}

package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"salon_workflow/model"

	"gorm.io/gorm"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExtractVariables returns the distinct placeholder names in body, in order
// of first appearance.
func ExtractVariables(body string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// RenderTemplate replaces every {{key}} occurrence with its context value.
// Placeholders without a matching key stay verbatim, so a partial preview
// shows the operator exactly which data is missing. Substituted values are
// not re-expanded.
func RenderTemplate(body string, vars map[string]string) string {
	result := body
	for key, value := range vars {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

type TemplateService struct {
	db *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

// GetTemplate loads one template by its fixed template id. The returned
// struct is a fresh copy, so a later update never mutates an in-flight
// render.
func (s *TemplateService) GetTemplate(templateID string) (*model.MessageTemplate, error) {
	var template model.MessageTemplate
	err := s.db.Where("template_id = ?", templateID).First(&template).Error
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	return &template, nil
}

// ListTemplates returns the built-in template set in display order.
func (s *TemplateService) ListTemplates() ([]model.MessageTemplate, error) {
	var templates []model.MessageTemplate
	err := s.db.Order("sort_order ASC").Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// UpdateTemplateBody replaces a template's body and recomputes its variable
// list. The template set is fixed: bodies change, templates are never
// created or deleted here.
func (s *TemplateService) UpdateTemplateBody(templateID, body string) (*model.MessageTemplate, error) {
	variables, err := json.Marshal(ExtractVariables(body))
	if err != nil {
		return nil, fmt.Errorf("failed to encode variables: %w", err)
	}

	result := s.db.Model(&model.MessageTemplate{}).
		Where("template_id = ?", templateID).
		Updates(map[string]interface{}{
			"body":      body,
			"variables": variables,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("template not found: %s", templateID)
	}

	return s.GetTemplate(templateID)
}

// InitDefaultTemplates seeds the built-in template set. Existing rows are
// left untouched so operator edits survive restarts.
func (s *TemplateService) InitDefaultTemplates() error {
	defaults := []struct {
		templateID  string
		displayName string
		body        string
	}{
		{
			templateID:  "absence_notification",
			displayName: "当日欠勤報告",
			body: `【サポート窓口｜HAL】当日欠勤報告

👤 スタッフ: {{staff_name}}
📅 欠勤日: {{absence_date}}
🕒 時間: {{absence_time}}
💊 理由: {{absence_reason}}
⏰ 報告時刻: {{report_time}}`,
		},
		{
			templateID:  "emergency_notification",
			displayName: "緊急欠勤通知（管理者向け）",
			body: `【緊急】{{staff_name}}さん欠勤報告

📋 詳細情報:
- 欠勤日時: {{absence_date}} {{absence_time}}
- 欠勤理由: {{absence_reason}}
- 報告時刻: {{report_time}}
- スタッフ電話: {{staff_phone}}

⚡ 次の対応を実行中:
✅ 代替スタッフ募集開始
✅ 影響予約の確認
✅ 顧客への連絡準備

管理者による確認が必要です。
管理画面: {{management_url}}`,
		},
		{
			templateID:  "general_notification",
			displayName: "お知らせ",
			body: `【{{salon_name}}】お知らせ

{{notification_content}}

詳細は管理画面をご確認ください。
{{management_url}}`,
		},
		{
			templateID:  "substitute_request",
			displayName: "代替出勤のお願い",
			body: `【緊急】代替出勤のお願い

👤 欠勤スタッフ: {{staff_name}}
📅 欠勤日: {{absence_date}}
🕒 時間: {{absence_time}}
💊 理由: {{absence_reason}}

代わりに出勤していただけますか？

✅ 出勤可能 → "代わりに出勤します"
❌ 出勤不可 → "代わりに出勤できません"

ご回答をお願いいたします。`,
		},
	}

	for i, def := range defaults {
		var existing model.MessageTemplate
		err := s.db.Where("template_id = ?", def.templateID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			variables, _ := json.Marshal(ExtractVariables(def.body))
			template := model.MessageTemplate{
				TemplateID:  def.templateID,
				DisplayName: def.displayName,
				Body:        def.body,
				Variables:   variables,
				SortOrder:   i,
			}
			if err := s.db.Create(&template).Error; err != nil {
				return fmt.Errorf("failed to create default template %s: %w", def.templateID, err)
			}
		}
	}

	return nil
}

package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"salon_workflow/model"
)

// Classification is the result of classifying one inbound message.
type Classification struct {
	Intent    string
	Extracted map[string]string
}

var absenceDatePattern = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)

// ClassifierService turns free-text staff messages into intents using
// ordered keyword rules. It never fails: anything the rules don't recognize
// is IntentUnknown, left for a human operator to review.
type ClassifierService struct {
	year        int // 0 means current year at classification time
	shiftWindow string
	now         func() time.Time
}

// ClassifierOptions configures date defaulting.
type ClassifierOptions struct {
	Year        int              // year for dates like "8月31日"; 0 = current year
	ShiftWindow string           // default absence time window
	Now         func() time.Time // injectable clock for tests
}

func NewClassifierService(opts ClassifierOptions) *ClassifierService {
	if opts.ShiftWindow == "" {
		opts.ShiftWindow = "10:00-18:00"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ClassifierService{
		year:        opts.Year,
		shiftWindow: opts.ShiftWindow,
		now:         opts.Now,
	}
}

// Classify applies the keyword rules in order; the first match wins. Rule
// order matters because the rules are not mutually exclusive (a message can
// contain both absence and substitute tokens).
func (s *ClassifierService) Classify(message string) Classification {
	text := strings.ToLower(message)

	if strings.Contains(text, "欠勤") || strings.Contains(text, "休み") || strings.Contains(text, "体調不良") {
		return Classification{
			Intent:    model.IntentAbsenceReport,
			Extracted: s.extractAbsenceData(message),
		}
	}

	// The inability check runs before the willingness check: a polite
	// refusal like 出勤できません contains 出勤 and would otherwise read as
	// an acceptance.
	if strings.Contains(text, "代わり") {
		if strings.Contains(text, "無理") || strings.Contains(text, "できない") || strings.Contains(text, "できません") {
			return Classification{Intent: model.IntentSubstituteDecline, Extracted: map[string]string{}}
		}
		if strings.Contains(text, "出勤") || strings.Contains(text, "行く") || strings.Contains(text, "行きます") {
			return Classification{Intent: model.IntentSubstituteAccept, Extracted: map[string]string{}}
		}
	}

	return Classification{Intent: model.IntentUnknown, Extracted: map[string]string{}}
}

// extractAbsenceData pulls reason, date and time out of an absence report.
// Reason defaults to 体調不良; a more specific keyword later in the
// vocabulary overrides an earlier one. The date defaults to today; there is
// no time-range parser, the configured shift window is always used.
func (s *ClassifierService) extractAbsenceData(message string) map[string]string {
	data := map[string]string{
		"reason": "体調不良",
		"date":   s.now().Format("2006-01-02"),
		"time":   s.shiftWindow,
	}

	if strings.Contains(message, "体調不良") {
		data["reason"] = "体調不良"
	}
	if strings.Contains(message, "風邪") {
		data["reason"] = "風邪"
	}
	if strings.Contains(message, "熱") {
		data["reason"] = "発熱"
	}
	if strings.Contains(message, "家族") {
		data["reason"] = "家族の事情"
	}

	if m := absenceDatePattern.FindStringSubmatch(message); m != nil {
		year := s.year
		if year == 0 {
			year = s.now().Year()
		}
		month := m[1]
		day := m[2]
		if len(month) == 1 {
			month = "0" + month
		}
		if len(day) == 1 {
			day = "0" + day
		}
		data["date"] = fmt.Sprintf("%d-%s-%s", year, month, day)
	}

	return data
}

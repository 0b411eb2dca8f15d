package assessment

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

// Setting keys, as stored in the settings table
const (
	KeyPassThreshold          = "pass_threshold"
	KeyQuestionsPerArea       = "questions_per_area"
	KeyCooldownDays           = "cooldown_days"
	KeyTrainingWeight         = "training_weight"
	KeyNeedsTrainingThreshold = "needs_training_threshold"
)

var SettingKeys = []string{KeyPassThreshold, KeyQuestionsPerArea, KeyCooldownDays, KeyTrainingWeight, KeyNeedsTrainingThreshold}

// Settings are the program-wide knobs of the scoring workflow. They are loaded once per request
// and handed to whatever needs them.
type Settings struct {
	PassThreshold          int     `json:"pass_threshold"`           // percentage, 0..100
	QuestionsPerArea       int     `json:"questions_per_area"`       // default sample size when assembling templates
	CooldownDays           int     `json:"cooldown_days"`            // 0: no cooldown
	TrainingWeight         float64 `json:"training_weight"`          // share of training completion in the area score, 0..1
	NeedsTrainingThreshold int     `json:"needs_training_threshold"` // area scores below it flag the volunteer
}

func DefaultSettings(d core.AssessmentDefaults) Settings {
	return Settings{
		PassThreshold:          d.PassThreshold,
		QuestionsPerArea:       d.QuestionsPerArea,
		CooldownDays:           d.CooldownDays,
		TrainingWeight:         d.TrainingWeight,
		NeedsTrainingThreshold: d.NeedsTrainingThreshold,
	}.clamped()
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (s Settings) clamped() Settings {
	s.PassThreshold = clampInt(s.PassThreshold, 0, 100)
	s.QuestionsPerArea = clampInt(s.QuestionsPerArea, 1, 100)
	s.CooldownDays = clampInt(s.CooldownDays, 0, 365)
	s.NeedsTrainingThreshold = clampInt(s.NeedsTrainingThreshold, 0, 100)
	switch {
	case math.IsNaN(s.TrainingWeight), s.TrainingWeight < 0:
		s.TrainingWeight = 0
	case s.TrainingWeight > 1:
		s.TrainingWeight = 1
	}
	return s
}

// SettingsFromValues overlays stored key/values on `defaults`.
// Unparseable values keep the default; out-of-range ones are clamped.
func SettingsFromValues(values map[string]string, defaults Settings) Settings {
	s := defaults
	parseInt := func(key string, dst *int) {
		if raw, ok := values[key]; ok {
			if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				*dst = v
			}
		}
	}

	parseInt(KeyPassThreshold, &s.PassThreshold)
	parseInt(KeyQuestionsPerArea, &s.QuestionsPerArea)
	parseInt(KeyCooldownDays, &s.CooldownDays)
	parseInt(KeyNeedsTrainingThreshold, &s.NeedsTrainingThreshold)
	if raw, ok := values[KeyTrainingWeight]; ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			s.TrainingWeight = v
		}
	}
	return s.clamped()
}

func (s Settings) Values() map[string]string {
	return map[string]string{
		KeyPassThreshold:          strconv.Itoa(s.PassThreshold),
		KeyQuestionsPerArea:       strconv.Itoa(s.QuestionsPerArea),
		KeyCooldownDays:           strconv.Itoa(s.CooldownDays),
		KeyTrainingWeight:         strconv.FormatFloat(s.TrainingWeight, 'f', -1, 64),
		KeyNeedsTrainingThreshold: strconv.Itoa(s.NeedsTrainingThreshold),
	}
}

// UpdateSettings carries a partial settings change; nil fields are left alone.
type UpdateSettings struct {
	PassThreshold          *int     `json:"pass_threshold" validate:"omitempty,min=0,max=100"`
	QuestionsPerArea       *int     `json:"questions_per_area" validate:"omitempty,min=1,max=100"`
	CooldownDays           *int     `json:"cooldown_days" validate:"omitempty,min=0,max=365"`
	TrainingWeight         *float64 `json:"training_weight" validate:"omitempty,min=0,max=1"`
	NeedsTrainingThreshold *int     `json:"needs_training_threshold" validate:"omitempty,min=0,max=100"`
}

func (us *UpdateSettings) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

func (us UpdateSettings) IsEmpty() bool {
	return us.PassThreshold == nil && us.QuestionsPerArea == nil && us.CooldownDays == nil &&
		us.TrainingWeight == nil && us.NeedsTrainingThreshold == nil
}

func (us UpdateSettings) apply(s Settings) Settings {
	if us.PassThreshold != nil {
		s.PassThreshold = *us.PassThreshold
	}
	if us.QuestionsPerArea != nil {
		s.QuestionsPerArea = *us.QuestionsPerArea
	}
	if us.CooldownDays != nil {
		s.CooldownDays = *us.CooldownDays
	}
	if us.TrainingWeight != nil {
		s.TrainingWeight = *us.TrainingWeight
	}
	if us.NeedsTrainingThreshold != nil {
		s.NeedsTrainingThreshold = *us.NeedsTrainingThreshold
	}
	return s.clamped()
}

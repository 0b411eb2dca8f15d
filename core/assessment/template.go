package assessment

import (
	"math/rand"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

type Template struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TopicArea   string    `json:"topic_area"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	QuestionIDs []string  `json:"question_ids"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TemplateDetail is a Template with its Questions resolved, in template order.
type TemplateDetail struct {
	Template
	Questions []Question `json:"questions"`
}

// MaxScore is the sum of the points of every question in the template.
func (td TemplateDetail) MaxScore() int {
	var max int
	for _, q := range td.Questions {
		max += q.Points
	}
	return max
}

func (td TemplateDetail) Question(id string) (Question, bool) {
	for _, q := range td.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Public hides the correct answers of every question.
func (td TemplateDetail) Public() TemplateDetail {
	pub := td
	pub.CreatedBy = ""
	pub.Questions = make([]Question, 0, len(td.Questions))
	for _, q := range td.Questions {
		pub.Questions = append(pub.Questions, q.Public())
	}
	return pub
}

// NewTemplate contains information needed to create a Template from a fixed, ordered list of questions.
type NewTemplate struct {
	Title       string   `json:"title" validate:"notblank,max=255"`
	TopicArea   string   `json:"topic_area" validate:"max=100"`
	Description string   `json:"description"`
	Active      *bool    `json:"active"`
	QuestionIDs []string `json:"question_ids" validate:"unique,dive,required"`
}

func (nt *NewTemplate) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.TopicArea = core.CleanString(nt.TopicArea, true /* lower */)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

func (nt NewTemplate) IsActive() bool {
	return nt.Active == nil || *nt.Active
}

// UpdateTemplate replaces the editable fields of a Template.
type UpdateTemplate NewTemplate

func (ut *UpdateTemplate) Validate(validate *validator.Validate) error {
	return (*NewTemplate)(ut).Validate(validate)
}

// TemplateActivation toggles Template.Active, the one change allowed on locked templates.
type TemplateActivation struct {
	Active *bool `json:"active" validate:"required"`
}

// AssembleTemplate asks for a template built from a random sample of the question bank.
type AssembleTemplate struct {
	Title       string   `json:"title" validate:"notblank,max=255"`
	Description string   `json:"description"`
	TopicAreas  []string `json:"topic_areas" validate:"omitempty,unique"` // empty: every area in the bank
	PerArea     int      `json:"per_area" validate:"min=0"`               // 0: Settings.QuestionsPerArea
	Active      *bool    `json:"active"`
}

func (at *AssembleTemplate) Validate(validate *validator.Validate) error {
	at.Title = core.CleanString(at.Title)
	at.Description = core.CleanString(at.Description)
	for i, area := range at.TopicAreas {
		at.TopicAreas[i] = core.CleanString(area, true /* lower */)
	}
	return validate.Struct(at)
}

type TemplateFilter struct {
	Search     string `query:"search"`
	TopicArea  string `query:"topic_area"`
	QuestionID string `query:"question_id"` // templates containing the question
	ActiveOnly bool   `query:"active"`
}

func (tf *TemplateFilter) Clean() {
	tf.Search = core.CleanString(tf.Search)
	tf.TopicArea = core.CleanString(tf.TopicArea, true /* lower */)
}

// SampleQuestions picks up to `perArea` questions per topic area out of `bank`.
// Areas come out sorted by name; within an area, questions keep the order the sample drew them in.
// Areas holding fewer than `perArea` questions contribute all of them.
func SampleQuestions(bank []Question, perArea int, rnd *rand.Rand) []Question {
	if perArea <= 0 {
		return nil
	}

	byArea := make(map[string][]Question)
	areas := make([]string, 0)
	for _, q := range bank {
		if _, ok := byArea[q.TopicArea]; !ok {
			areas = append(areas, q.TopicArea)
		}
		byArea[q.TopicArea] = append(byArea[q.TopicArea], q)
	}
	sort.Strings(areas)

	sample := make([]Question, 0, len(areas)*perArea)
	for _, area := range areas {
		qs := append([]Question(nil), byArea[area]...)
		rnd.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		if len(qs) > perArea {
			qs = qs[:perArea]
		}
		sample = append(sample, qs...)
	}
	return sample
}

// templateArea derives the topic area of a template: the single area its questions share, or DefaultTopicArea.
func templateArea(questions []Question) string {
	var area string
	for i, q := range questions {
		if i == 0 {
			area = q.TopicArea
		} else if q.TopicArea != area {
			return DefaultTopicArea
		}
	}
	if area == "" {
		return DefaultTopicArea
	}
	return area
}

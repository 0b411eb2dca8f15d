package assessment

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

type QuestionType string

// Question types
const (
	TypeScale          QuestionType = "scale_1_5"
	TypeYesNo          QuestionType = "yes_no"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeFreeText       QuestionType = "free_text"
	TypeWordOrder      QuestionType = "word_order"
	TypeImageChoice    QuestionType = "image_choice"
)

const (
	// WordOrderDelimiter joins the tokens of word-order answers.
	WordOrderDelimiter = "|"
	// DefaultTopicArea groups questions created without a topic area.
	DefaultTopicArea = "general"
)

var QuestionTypes = []QuestionType{TypeScale, TypeYesNo, TypeMultipleChoice, TypeFreeText, TypeWordOrder, TypeImageChoice}

func (qt QuestionType) Valid() bool {
	for _, t := range QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

// IsChoice reports whether answers are picked among Question.Options.
func (qt QuestionType) IsChoice() bool {
	return qt == TypeMultipleChoice || qt == TypeImageChoice
}

func (qt QuestionType) AutoGradable() bool {
	return qt != TypeFreeText
}

type Option struct {
	Text      string `json:"text" validate:"notblank"`
	IsCorrect bool   `json:"is_correct"`
}

type Question struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Options       []Option     `json:"options"`
	Points        int          `json:"points"`
	TopicArea     string       `json:"topic_area"`
	Metadata      Metadata     `json:"metadata"`
	CreatedBy     string       `json:"created_by,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// CorrectOption returns the text of the first option flagged correct.
func (q Question) CorrectOption() (string, bool) {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.Text, true
		}
	}
	return "", false
}

// ReferenceAnswer is the value auto-grading compares against.
func (q Question) ReferenceAnswer() string {
	if q.Type.IsChoice() {
		if txt, ok := q.CorrectOption(); ok {
			return txt
		}
	}
	return q.CorrectAnswer
}

// Public strips everything that gives the answer away; it is what volunteers get to see.
func (q Question) Public() Question {
	pub := q
	pub.CorrectAnswer = ""
	pub.CreatedBy = ""
	if q.Options != nil {
		pub.Options = make([]Option, len(q.Options))
		for i, opt := range q.Options {
			pub.Options[i] = Option{Text: opt.Text}
		}
	}
	if q.Type == TypeWordOrder && q.Metadata.Kind != MetadataWordOrder {
		// volunteers need the tokens to reorder
		pub.Metadata = NewWordOrderMetadata(shuffledTokens(q.CorrectAnswer))
	}
	return pub
}

// shuffledTokens returns the tokens of a word-order answer in a stable, non-solution order.
func shuffledTokens(answer string) []string {
	tokens := splitTokens(answer)
	n := len(tokens)
	if n < 2 {
		return tokens
	}
	out := make([]string, 0, n)
	for i := 1; i < n; i += 2 {
		out = append(out, tokens[i])
	}
	for i := 0; i < n; i += 2 {
		out = append(out, tokens[i])
	}
	return out
}

func splitTokens(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, WordOrderDelimiter)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		tokens = append(tokens, strings.TrimSpace(p))
	}
	return tokens
}

// NewQuestion contains information needed to add a Question to the bank.
type NewQuestion struct {
	Text          string       `json:"text" validate:"notblank"`
	Type          QuestionType `json:"type" validate:"required,questiontype"`
	CorrectAnswer string       `json:"correct_answer"`
	Options       []Option     `json:"options" validate:"omitempty,dive"`
	Points        int          `json:"points" validate:"required,min=1"`
	TopicArea     string       `json:"topic_area" validate:"max=100"`
	Metadata      Metadata     `json:"metadata"`
}

func (nq *NewQuestion) Clean() {
	nq.Text = core.CleanString(nq.Text)
	nq.TopicArea = core.CleanString(nq.TopicArea, true /* lower */)
	nq.Type = QuestionType(core.CleanString(string(nq.Type), true /* lower */))
	if nq.Type != TypeWordOrder {
		nq.CorrectAnswer = strings.TrimSpace(nq.CorrectAnswer)
	}
	if !nq.Type.IsChoice() {
		nq.Options = nil
	}
	for i := range nq.Options {
		nq.Options[i].Text = core.CleanString(nq.Options[i].Text)
	}
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Clean()
	return validate.Struct(nq)
}

// UpdateQuestion replaces the editable fields of a Question. Same rules as NewQuestion.
type UpdateQuestion NewQuestion

func (uq *UpdateQuestion) Validate(validate *validator.Validate) error {
	nq := (*NewQuestion)(uq)
	return nq.Validate(validate)
}

type QuestionFilter struct {
	Search    string       `query:"search"`
	Type      QuestionType `query:"type"`
	TopicArea string       `query:"topic_area"`
	IDs       []string     `query:"id"`
}

func (qf *QuestionFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TopicArea = core.CleanString(qf.TopicArea, true /* lower */)
}

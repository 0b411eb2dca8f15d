package assessment

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

func newTestValidator() *validator.Validate {
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func failedTags(err error) map[string]string {
	tags := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			tags[fe.Field()] = fe.Tag()
		}
	}
	return tags
}

func TestNewQuestion_Validate(t *testing.T) {
	validate := newTestValidator()
	options := func(correct ...bool) []Option {
		opts := make([]Option, len(correct))
		for i, c := range correct {
			opts[i] = Option{Text: string(rune('A' + i)), IsCorrect: c}
		}
		return opts
	}

	tests := []struct {
		name     string
		nq       NewQuestion
		wantTags map[string]string
	}{
		{name: "scale", nq: NewQuestion{Text: "¿Cuánto leés?", Type: TypeScale, CorrectAnswer: "3", Points: 10}},
		{name: "scale out of range", nq: NewQuestion{Text: "x", Type: TypeScale, CorrectAnswer: "6", Points: 10}, wantTags: map[string]string{"correct_answer": scaleAnswerTag}},
		{name: "scale without answer", nq: NewQuestion{Text: "x", Type: TypeScale, Points: 10}, wantTags: map[string]string{"correct_answer": correctAnswerTag}},
		{name: "yes/no", nq: NewQuestion{Text: "x", Type: TypeYesNo, CorrectAnswer: "si", Points: 1}},
		{name: "yes/no without answer", nq: NewQuestion{Text: "x", Type: TypeYesNo, CorrectAnswer: "  ", Points: 1}, wantTags: map[string]string{"correct_answer": correctAnswerTag}},
		{name: "multiple choice", nq: NewQuestion{Text: "x", Type: TypeMultipleChoice, Options: options(false, true, false), Points: 2}},
		{name: "multiple choice two correct", nq: NewQuestion{Text: "x", Type: TypeMultipleChoice, Options: options(true, true), Points: 2}, wantTags: map[string]string{"options": choiceOptionsTag}},
		{name: "multiple choice single option", nq: NewQuestion{Text: "x", Type: TypeMultipleChoice, Options: options(true), Points: 2}, wantTags: map[string]string{"options": choiceOptionsTag}},
		{name: "image choice none correct", nq: NewQuestion{Text: "x", Type: TypeImageChoice, Options: options(false, false), Points: 2}, wantTags: map[string]string{"options": choiceOptionsTag}},
		{name: "blank option", nq: NewQuestion{Text: "x", Type: TypeMultipleChoice, Options: []Option{{Text: " ", IsCorrect: true}, {Text: "B"}}, Points: 2}, wantTags: map[string]string{"text": "notblank"}},
		{name: "word order", nq: NewQuestion{Text: "x", Type: TypeWordOrder, CorrectAnswer: "el|perro|ladra", Points: 3}},
		{name: "word order single token", nq: NewQuestion{Text: "x", Type: TypeWordOrder, CorrectAnswer: "perro", Points: 3}, wantTags: map[string]string{"correct_answer": wordOrderTag}},
		{name: "word order blank token", nq: NewQuestion{Text: "x", Type: TypeWordOrder, CorrectAnswer: "el||ladra", Points: 3}, wantTags: map[string]string{"correct_answer": wordOrderTag}},
		{name: "free text", nq: NewQuestion{Text: "Contá una experiencia", Type: TypeFreeText, Points: 10}},
		{name: "unknown type", nq: NewQuestion{Text: "x", Type: "audio", Points: 1}, wantTags: map[string]string{"type": questionTypeTag}},
		{name: "no points", nq: NewQuestion{Text: "x", Type: TypeFreeText}, wantTags: map[string]string{"points": "required"}},
		{name: "blank text", nq: NewQuestion{Text: "  ", Type: TypeFreeText, Points: 1}, wantTags: map[string]string{"text": "notblank"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nq.Validate(validate)
			if len(tt.wantTags) == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantTags, failedTags(err))
		})
	}
}

func TestNewQuestion_CleanDropsOptionsOfNonChoiceTypes(t *testing.T) {
	nq := NewQuestion{Text: " x ", Type: " Free_Text ", Options: []Option{{Text: "A"}}, Points: 1, TopicArea: " Lectura "}
	nq.Clean()
	assert.Equal(t, TypeFreeText, nq.Type)
	assert.Nil(t, nq.Options)
	assert.Equal(t, "lectura", nq.TopicArea)
	assert.Equal(t, "x", nq.Text)
}

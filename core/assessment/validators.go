package assessment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

var (
	questionTypeTag  = "questiontype"
	questionTypeText = "invalid question type"

	choiceOptionsTag  = "choiceoptions"
	choiceOptionsText = "choice questions need at least 2 options, exactly one of them correct"

	correctAnswerTag  = "correctanswer"
	correctAnswerText = "this question type needs a correct answer"

	scaleAnswerTag  = "scaleanswer"
	scaleAnswerText = "the correct answer of a scale question must be between 1 and 5"

	wordOrderTag  = "wordorder"
	wordOrderText = "word-order answers need at least 2 non-blank tokens separated by |"

	scaleValues = map[string]bool{"1": true, "2": true, "3": true, "4": true, "5": true}
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(questionTypeTag, questionTypeValidation)
	core.RegisterCustomTranslation(validate, translator, questionTypeTag, questionTypeText)

	validate.RegisterStructValidation(questionStructValidation, NewQuestion{})
	core.RegisterCustomTranslation(validate, translator, choiceOptionsTag, choiceOptionsText)
	core.RegisterCustomTranslation(validate, translator, correctAnswerTag, correctAnswerText)
	core.RegisterCustomTranslation(validate, translator, scaleAnswerTag, scaleAnswerText)
	core.RegisterCustomTranslation(validate, translator, wordOrderTag, wordOrderText)
}

func questionTypeValidation(fl validator.FieldLevel) bool {
	return QuestionType(fl.Field().String()).Valid()
}

// questionStructValidation checks that the answer of a question fits its type.
func questionStructValidation(sl validator.StructLevel) {
	nq := sl.Current().Interface().(NewQuestion)

	switch nq.Type {
	case TypeMultipleChoice, TypeImageChoice:
		var nCorrect int
		for _, opt := range nq.Options {
			if opt.IsCorrect {
				nCorrect++
			}
		}
		if len(nq.Options) < 2 || nCorrect != 1 {
			sl.ReportError(nq.Options, "options", "Options", choiceOptionsTag, "")
		}
	case TypeScale:
		if nq.CorrectAnswer == "" {
			sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", correctAnswerTag, "")
		} else if !scaleValues[nq.CorrectAnswer] {
			sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", scaleAnswerTag, "")
		}
	case TypeYesNo:
		if nq.CorrectAnswer == "" {
			sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", correctAnswerTag, "")
		}
	case TypeWordOrder:
		tokens := splitTokens(nq.CorrectAnswer)
		ok := len(tokens) >= 2
		for _, tok := range tokens {
			if tok == "" {
				ok = false
			}
		}
		if !ok {
			sl.ReportError(nq.CorrectAnswer, "correct_answer", "CorrectAnswer", wordOrderTag, "")
		}
	}
}

package assessment

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

type ReviewQueueFilter struct {
	TopicArea    string `query:"topic_area"`
	SubmissionID string `query:"submission_id"`
}

func (rf *ReviewQueueFilter) Clean() {
	rf.TopicArea = core.CleanString(rf.TopicArea, true /* lower */)
	rf.SubmissionID = core.CleanString(rf.SubmissionID)
}

// ReviewItem is the review of one answer within a batch.
type ReviewItem struct {
	AnswerID string `json:"answer_id" validate:"required"`
	ReviewInput
}

// PendingReview is an answer awaiting manual review, with what the reviewer needs to grade it.
type PendingReview struct {
	Answer
	QuestionText    string       `json:"question_text"`
	QuestionType    QuestionType `json:"question_type"`
	TopicArea       string       `json:"topic_area"`
	MaxPoints       int          `json:"max_points"`
	ReferenceAnswer string       `json:"reference_answer"`
	// Similarity between the response and the reference answer, 0..1; a hint, never a grade.
	Similarity float64 `json:"similarity"`
}

func newPendingReview(a Answer, q Question) PendingReview {
	ref := q.ReferenceAnswer()
	return PendingReview{
		Answer:          a,
		QuestionText:    q.Text,
		QuestionType:    q.Type,
		TopicArea:       q.TopicArea,
		MaxPoints:       q.Points,
		ReferenceAnswer: ref,
		Similarity:      Similarity(a.RawResponse, ref),
	}
}

// Similarity compares the words of two texts, case-insensitively. 0 when either is blank.
func Similarity(response, reference string) float64 {
	a := strings.Fields(strings.ToLower(response))
	b := strings.Fields(strings.ToLower(reference))
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ratio := difflib.NewMatcher(a, b).Ratio()
	return math.Round(ratio*100) / 100
}

// review applies a reviewer's grade to `a`.
func review(a *Answer, q Question, in ReviewInput, reviewer profile.Profile, at time.Time) {
	a.apply(ManualGrade(q, in))
	a.ReviewedBy = reviewer.ID
	a.ReviewedAt = at
	a.UpdatedAt = at
}

func errEmptyReview(fieldPrefix string) error {
	err := errors.New("at least one of is_correct or points is required")
	return core.NewValidationError(err,
		core.FieldError{Field: fieldPrefix + "is_correct", Error: err.Error()},
		core.FieldError{Field: fieldPrefix + "points", Error: err.Error()},
	)
}

package assessment

import (
	"time"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

type Status string

// Submission statuses, as stored
const (
	StatusInProgress Status = "in_progress" // collecting answers
	StatusCompleted  Status = "completed"   // auto-graded
	StatusPending    Status = "pending"     // awaiting manual review
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

func (s Status) Resolved() bool {
	return s == StatusApproved || s == StatusRejected
}

type Answer struct {
	ID            string    `json:"id"`
	SubmissionID  string    `json:"submission_id"`
	QuestionID    string    `json:"question_id"`
	RawResponse   string    `json:"raw_response"`
	IsCorrect     *bool     `json:"is_correct"` // nil: awaiting manual review
	PointsAwarded float64   `json:"points_awarded"`
	ReviewedBy    string    `json:"reviewed_by,omitempty"`
	ReviewedAt    time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (a Answer) Graded() bool {
	return a.IsCorrect != nil
}

func (a *Answer) apply(res GradeResult) {
	a.IsCorrect = res.IsCorrect
	a.PointsAwarded = res.PointsAwarded
}

type Submission struct {
	ID          string    `json:"id"`
	TemplateID  string    `json:"template_id"`
	VolunteerID string    `json:"volunteer_id"`
	TopicArea   string    `json:"topic_area"`
	Status      Status    `json:"status"`
	Answers     []Answer  `json:"answers"`
	FinalScore  float64   `json:"final_score"`
	MaxScore    int       `json:"max_score"`
	Percentage  int       `json:"percentage"`
	CompletedAt time.Time `json:"completed_at"` // set on resolution, drives the cooldown
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UngradedCount is the number of answers still awaiting manual review.
func (s Submission) UngradedCount() int {
	var n int
	for _, a := range s.Answers {
		if !a.Graded() {
			n++
		}
	}
	return n
}

func (s Submission) Answer(questionID string) (Answer, bool) {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return Answer{}, false
}

func (s Submission) OwnedBy(profileID string) bool {
	return s.VolunteerID == profileID
}

type SubmissionFilter struct {
	VolunteerID string   `query:"volunteer_id"`
	TemplateID  string   `query:"template_id"`
	TopicArea   string   `query:"topic_area"`
	Statuses    []Status `query:"status"`
}

func (sf *SubmissionFilter) Clean() {
	sf.TopicArea = core.CleanString(sf.TopicArea, true /* lower */)
}

// AnswerInput is a volunteer's response to one question.
type AnswerInput struct {
	QuestionID string `json:"question_id" validate:"required"`
	Response   string `json:"response"`
}

// StartSubmission asks to start answering a template.
type StartSubmission struct {
	TemplateID string `json:"template_id" validate:"required"`
}

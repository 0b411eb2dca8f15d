package assessment

import (
	"context"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

var (
	ErrQuestionNotFound   = core.NewNotFoundError("question not found")
	ErrTemplateNotFound   = core.NewNotFoundError("template not found")
	ErrSubmissionNotFound = core.NewNotFoundError("submission not found")
	ErrAnswerNotFound     = core.NewNotFoundError("answer not found")

	ErrQuestionLocked   = core.NewConflictError("question is referenced by submitted answers and cannot be changed")
	ErrTemplateLocked   = core.NewConflictError("template has submissions and cannot be changed")
	ErrTemplateInactive = core.NewConflictError("template is not active")
)

type (
	QuestionRepository interface {
		CreateQuestion(ctx context.Context, q Question) (Question, error)
		GetQuestion(ctx context.Context, id string) (Question, error)
		// QueryQuestions applies AND operation on available QuestionFilter fields.
		QueryQuestions(ctx context.Context, filter *QuestionFilter, ordering []core.DBOrdering) ([]Question, error)
		UpdateQuestion(ctx context.Context, q Question) (Question, error)
		DeleteQuestion(ctx context.Context, id string) error
		// CountAnswers counts the answers referencing the question, across all submissions.
		CountAnswers(ctx context.Context, questionID string) (int, error)
	}

	TemplateRepository interface {
		CreateTemplate(ctx context.Context, t Template) (Template, error)
		GetTemplate(ctx context.Context, id string) (Template, error)
		QueryTemplates(ctx context.Context, filter *TemplateFilter, ordering []core.DBOrdering) ([]Template, error)
		UpdateTemplate(ctx context.Context, t Template) (Template, error)
		DeleteTemplate(ctx context.Context, id string) error
		CountSubmissions(ctx context.Context, templateID string) (int, error)
	}

	SubmissionRepository interface {
		CreateSubmission(ctx context.Context, s Submission) (Submission, error)
		// GetSubmission returns the submission with its answers.
		GetSubmission(ctx context.Context, id string) (Submission, error)
		// QuerySubmissions returns submissions without their answers.
		QuerySubmissions(ctx context.Context, filter *SubmissionFilter, ordering []core.DBOrdering) ([]Submission, error)
		// UpdateSubmission saves status, scores and completion time; answers are saved separately.
		UpdateSubmission(ctx context.Context, s Submission) (Submission, error)
		// LatestResolved returns the most recently resolved submission of the volunteer in the topic area,
		// or ErrSubmissionNotFound.
		LatestResolved(ctx context.Context, volunteerID, topicArea string) (Submission, error)
		// SaveAnswers inserts or updates answers, matching them on (submission, question).
		SaveAnswers(ctx context.Context, answers ...Answer) ([]Answer, error)
		GetAnswer(ctx context.Context, id string) (Answer, error)
		// QueryUngradedAnswers returns answers still awaiting manual review, oldest first.
		QueryUngradedAnswers(ctx context.Context, filter *ReviewQueueFilter) ([]Answer, error)
	}

	SettingsRepository interface {
		GetSettings(ctx context.Context) (map[string]string, error)
		SaveSettings(ctx context.Context, values map[string]string) error
	}

	// Repository is everything the assessment Service persists.
	Repository interface {
		QuestionRepository
		TemplateRepository
		SubmissionRepository
		SettingsRepository
	}

	// TemplateCache keeps resolved templates around between requests.
	TemplateCache interface {
		Get(ctx context.Context, id string) (TemplateDetail, bool)
		Set(ctx context.Context, detail TemplateDetail)
		Invalidate(ctx context.Context, ids ...string)
		Flush(ctx context.Context)
	}

	ProfileFinder interface {
		GetByID(ctx context.Context, id string) (profile.Profile, error)
	}

	TrainingProgress interface {
		Progress(ctx context.Context, profileID string) ([]training.AreaProgress, error)
	}
)

// NoopTemplateCache caches nothing.
type NoopTemplateCache struct{}

var _ TemplateCache = NoopTemplateCache{}

func (NoopTemplateCache) Get(context.Context, string) (TemplateDetail, bool) { return TemplateDetail{}, false }
func (NoopTemplateCache) Set(context.Context, TemplateDetail)                {}
func (NoopTemplateCache) Invalidate(context.Context, ...string)              {}
func (NoopTemplateCache) Flush(context.Context)                              {}

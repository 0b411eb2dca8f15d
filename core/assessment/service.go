package assessment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

// NowFunc is the clock of the grading workflow. Tests pin it.
var NowFunc = time.Now

type Service struct {
	repo     Repository
	cache    TemplateCache
	profiles ProfileFinder
	progress TrainingProgress
	mailSvc  core.EmailService
	logger   core.Logger
	defaults Settings

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewService(
	repo Repository,
	cache TemplateCache,
	profiles ProfileFinder,
	progress TrainingProgress,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	if cache == nil {
		cache = NoopTemplateCache{}
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		profiles: profiles,
		progress: progress,
		mailSvc:  mailSvc,
		logger:   logger,
		defaults: DefaultSettings(conf.Assessment),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func now() time.Time {
	return NowFunc().UTC()
}

// Settings loads the program settings, falling back to the configured defaults.
func (svc *Service) Settings(ctx context.Context) (Settings, error) {
	values, err := svc.repo.GetSettings(ctx)
	if err != nil {
		return Settings{}, errors.Wrap(err, "loading settings")
	}
	return SettingsFromValues(values, svc.defaults), nil
}

func (svc *Service) UpdateSettings(ctx context.Context, actor profile.Profile, us UpdateSettings) (Settings, error) {
	if !actor.IsAdmin() {
		return Settings{}, core.ErrPermissionDenied
	}
	s, err := svc.Settings(ctx)
	if err != nil {
		return Settings{}, err
	}
	if us.IsEmpty() {
		return s, nil
	}
	s = us.apply(s)
	if err := svc.repo.SaveSettings(ctx, s.Values()); err != nil {
		return Settings{}, errors.Wrap(err, "saving settings")
	}
	return s, nil
}

// ---------------------------------------------------------------------------------------------------------------------
// questions

func (svc *Service) CreateQuestion(ctx context.Context, actor profile.Profile, nq NewQuestion) (Question, error) {
	if !actor.IsReviewer() {
		return Question{}, core.ErrPermissionDenied
	}
	t := now()
	q := Question{
		Text:          nq.Text,
		Type:          nq.Type,
		CorrectAnswer: nq.CorrectAnswer,
		Options:       nq.Options,
		Points:        nq.Points,
		TopicArea:     nq.TopicArea,
		Metadata:      nq.Metadata,
		CreatedBy:     actor.ID,
		CreatedAt:     t,
		UpdatedAt:     t,
	}
	if q.TopicArea == "" {
		q.TopicArea = DefaultTopicArea
	}
	return svc.repo.CreateQuestion(ctx, q)
}

func (svc *Service) GetQuestion(ctx context.Context, actor profile.Profile, id string) (Question, error) {
	if !actor.IsReviewer() {
		return Question{}, core.ErrPermissionDenied
	}
	return svc.repo.GetQuestion(ctx, id)
}

func (svc *Service) QueryQuestions(ctx context.Context, actor profile.Profile, filter *QuestionFilter, ordering []core.DBOrdering) ([]Question, error) {
	if !actor.IsReviewer() {
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.QueryQuestions(ctx, filter, ordering)
}

func (svc *Service) checkQuestionUnlocked(ctx context.Context, id string) error {
	n, err := svc.repo.CountAnswers(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting answers")
	}
	if n > 0 {
		return ErrQuestionLocked
	}
	return nil
}

// UpdateQuestion edits a question nobody answered yet.
func (svc *Service) UpdateQuestion(ctx context.Context, actor profile.Profile, id string, uq UpdateQuestion) (Question, error) {
	if !actor.IsReviewer() {
		return Question{}, core.ErrPermissionDenied
	}
	q, err := svc.repo.GetQuestion(ctx, id)
	if err != nil {
		return Question{}, err
	}
	if err := svc.checkQuestionUnlocked(ctx, id); err != nil {
		return Question{}, err
	}

	q.Text = uq.Text
	q.Type = uq.Type
	q.CorrectAnswer = uq.CorrectAnswer
	q.Options = uq.Options
	q.Points = uq.Points
	q.Metadata = uq.Metadata
	if uq.TopicArea != "" {
		q.TopicArea = uq.TopicArea
	}
	q.UpdatedAt = now()

	q, err = svc.repo.UpdateQuestion(ctx, q)
	if err != nil {
		return Question{}, err
	}
	// any cached template may embed it
	svc.cache.Flush(ctx)
	return q, nil
}

// DeleteQuestion removes a question that is neither answered nor part of a template.
func (svc *Service) DeleteQuestion(ctx context.Context, actor profile.Profile, id string) error {
	if !actor.IsReviewer() {
		return core.ErrPermissionDenied
	}
	if _, err := svc.repo.GetQuestion(ctx, id); err != nil {
		return err
	}
	if err := svc.checkQuestionUnlocked(ctx, id); err != nil {
		return err
	}
	tmpls, err := svc.repo.QueryTemplates(ctx, &TemplateFilter{QuestionID: id}, nil)
	if err != nil {
		return errors.Wrap(err, "querying templates")
	}
	if len(tmpls) > 0 {
		return core.NewConflictError(fmt.Sprintf("question is part of %d template(s)", len(tmpls)))
	}
	if err := svc.repo.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	svc.cache.Flush(ctx)
	return nil
}

// resolveQuestions fetches the questions with `ids`, in the order of `ids`.
func (svc *Service) resolveQuestions(ctx context.Context, ids []string) ([]Question, error) {
	if len(ids) == 0 {
		return []Question{}, nil
	}
	found, err := svc.repo.QueryQuestions(ctx, &QuestionFilter{IDs: ids}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	byID := make(map[string]Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}

	questions := make([]Question, 0, len(ids))
	var missing []string
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		questions = append(questions, q)
	}
	if len(missing) > 0 {
		err := errors.Errorf("unknown question(s): %s", strings.Join(missing, ", "))
		return nil, core.NewValidationError(err, core.FieldError{Field: "question_ids", Error: err.Error()})
	}
	return questions, nil
}

// ---------------------------------------------------------------------------------------------------------------------
// templates

func (svc *Service) CreateTemplate(ctx context.Context, actor profile.Profile, nt NewTemplate) (TemplateDetail, error) {
	if !actor.IsReviewer() {
		return TemplateDetail{}, core.ErrPermissionDenied
	}
	questions, err := svc.resolveQuestions(ctx, nt.QuestionIDs)
	if err != nil {
		return TemplateDetail{}, err
	}
	return svc.createTemplate(ctx, actor, nt, questions)
}

func (svc *Service) createTemplate(ctx context.Context, actor profile.Profile, nt NewTemplate, questions []Question) (TemplateDetail, error) {
	t := now()
	tmpl := Template{
		Title:       nt.Title,
		TopicArea:   nt.TopicArea,
		Description: nt.Description,
		Active:      nt.IsActive(),
		QuestionIDs: make([]string, 0, len(questions)),
		CreatedBy:   actor.ID,
		CreatedAt:   t,
		UpdatedAt:   t,
	}
	for _, q := range questions {
		tmpl.QuestionIDs = append(tmpl.QuestionIDs, q.ID)
	}
	if tmpl.TopicArea == "" {
		tmpl.TopicArea = templateArea(questions)
	}

	tmpl, err := svc.repo.CreateTemplate(ctx, tmpl)
	if err != nil {
		return TemplateDetail{}, err
	}
	return TemplateDetail{Template: tmpl, Questions: questions}, nil
}

// AssembleTemplate builds a template out of a random sample of the question bank,
// up to `PerArea` (or Settings.QuestionsPerArea) questions per topic area.
func (svc *Service) AssembleTemplate(ctx context.Context, actor profile.Profile, at AssembleTemplate) (TemplateDetail, error) {
	if !actor.IsReviewer() {
		return TemplateDetail{}, core.ErrPermissionDenied
	}
	settings, err := svc.Settings(ctx)
	if err != nil {
		return TemplateDetail{}, err
	}
	perArea := at.PerArea
	if perArea == 0 {
		perArea = settings.QuestionsPerArea
	}

	var bank []Question
	if len(at.TopicAreas) == 0 {
		if bank, err = svc.repo.QueryQuestions(ctx, &QuestionFilter{}, nil); err != nil {
			return TemplateDetail{}, errors.Wrap(err, "querying questions")
		}
	} else {
		for _, area := range at.TopicAreas {
			qs, err := svc.repo.QueryQuestions(ctx, &QuestionFilter{TopicArea: area}, nil)
			if err != nil {
				return TemplateDetail{}, errors.Wrapf(err, "querying questions of %q", area)
			}
			bank = append(bank, qs...)
		}
	}

	svc.rndMu.Lock()
	sample := SampleQuestions(bank, perArea, svc.rnd)
	svc.rndMu.Unlock()
	if len(sample) == 0 {
		err := errors.New("no questions available in the requested topic areas")
		return TemplateDetail{}, core.NewValidationError(err, core.FieldError{Field: "topic_areas", Error: err.Error()})
	}

	nt := NewTemplate{Title: at.Title, Description: at.Description, Active: at.Active}
	return svc.createTemplate(ctx, actor, nt, sample)
}

// templateDetail reads a template and its questions, through the cache.
func (svc *Service) templateDetail(ctx context.Context, id string) (TemplateDetail, error) {
	if detail, ok := svc.cache.Get(ctx, id); ok {
		return detail, nil
	}
	tmpl, err := svc.repo.GetTemplate(ctx, id)
	if err != nil {
		return TemplateDetail{}, err
	}
	questions, err := svc.resolveQuestions(ctx, tmpl.QuestionIDs)
	if err != nil {
		return TemplateDetail{}, errors.Wrapf(err, "resolving questions of template %s", id)
	}
	detail := TemplateDetail{Template: tmpl, Questions: questions}
	svc.cache.Set(ctx, detail)
	return detail, nil
}

// GetTemplate returns the template with its questions. Volunteers only get active templates, without the answers.
func (svc *Service) GetTemplate(ctx context.Context, actor profile.Profile, id string) (TemplateDetail, error) {
	detail, err := svc.templateDetail(ctx, id)
	if err != nil {
		return TemplateDetail{}, err
	}
	if actor.IsReviewer() {
		return detail, nil
	}
	if !detail.Active {
		return TemplateDetail{}, ErrTemplateNotFound
	}
	return detail.Public(), nil
}

func (svc *Service) QueryTemplates(ctx context.Context, actor profile.Profile, filter *TemplateFilter, ordering []core.DBOrdering) ([]Template, error) {
	if filter == nil {
		filter = &TemplateFilter{}
	}
	if !actor.IsReviewer() {
		filter.ActiveOnly = true
	}
	return svc.repo.QueryTemplates(ctx, filter, ordering)
}

func (svc *Service) templateLocked(ctx context.Context, id string) (bool, error) {
	n, err := svc.repo.CountSubmissions(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "counting submissions")
	}
	return n > 0, nil
}

// UpdateTemplate edits a template. Once submissions reference it, only its active flag may change.
func (svc *Service) UpdateTemplate(ctx context.Context, actor profile.Profile, id string, ut UpdateTemplate) (TemplateDetail, error) {
	if !actor.IsReviewer() {
		return TemplateDetail{}, core.ErrPermissionDenied
	}
	tmpl, err := svc.repo.GetTemplate(ctx, id)
	if err != nil {
		return TemplateDetail{}, err
	}
	questions, err := svc.resolveQuestions(ctx, ut.QuestionIDs)
	if err != nil {
		return TemplateDetail{}, err
	}

	area := ut.TopicArea
	if area == "" {
		area = templateArea(questions)
	}
	changed := ut.Title != tmpl.Title || area != tmpl.TopicArea || ut.Description != tmpl.Description ||
		!equalIDs(ut.QuestionIDs, tmpl.QuestionIDs)
	if changed {
		locked, err := svc.templateLocked(ctx, id)
		if err != nil {
			return TemplateDetail{}, err
		}
		if locked {
			return TemplateDetail{}, ErrTemplateLocked
		}
	}

	tmpl.Title = ut.Title
	tmpl.TopicArea = area
	tmpl.Description = ut.Description
	tmpl.Active = (*NewTemplate)(&ut).IsActive()
	tmpl.QuestionIDs = make([]string, 0, len(questions))
	for _, q := range questions {
		tmpl.QuestionIDs = append(tmpl.QuestionIDs, q.ID)
	}
	tmpl.UpdatedAt = now()

	tmpl, err = svc.repo.UpdateTemplate(ctx, tmpl)
	if err != nil {
		return TemplateDetail{}, err
	}
	svc.cache.Invalidate(ctx, id)
	return TemplateDetail{Template: tmpl, Questions: questions}, nil
}

// SetTemplateActive opens or closes a template to new submissions. Locked templates accept it too.
func (svc *Service) SetTemplateActive(ctx context.Context, actor profile.Profile, id string, active bool) (TemplateDetail, error) {
	if !actor.IsReviewer() {
		return TemplateDetail{}, core.ErrPermissionDenied
	}
	tmpl, err := svc.repo.GetTemplate(ctx, id)
	if err != nil {
		return TemplateDetail{}, err
	}
	if tmpl.Active != active {
		tmpl.Active = active
		tmpl.UpdatedAt = now()
		if _, err := svc.repo.UpdateTemplate(ctx, tmpl); err != nil {
			return TemplateDetail{}, err
		}
		svc.cache.Invalidate(ctx, id)
	}
	return svc.templateDetail(ctx, id)
}

func (svc *Service) DeleteTemplate(ctx context.Context, actor profile.Profile, id string) error {
	if !actor.IsReviewer() {
		return core.ErrPermissionDenied
	}
	if _, err := svc.repo.GetTemplate(ctx, id); err != nil {
		return err
	}
	locked, err := svc.templateLocked(ctx, id)
	if err != nil {
		return err
	}
	if locked {
		return ErrTemplateLocked
	}
	if err := svc.repo.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	svc.cache.Invalidate(ctx, id)
	return nil
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------------------------------------------------
// submissions

// StartSubmission opens a submission of `actor` on an active template.
// An in-progress submission of the same template is returned as is.
func (svc *Service) StartSubmission(ctx context.Context, actor profile.Profile, ss StartSubmission) (Submission, error) {
	detail, err := svc.templateDetail(ctx, ss.TemplateID)
	if err != nil {
		return Submission{}, err
	}
	if !detail.Active {
		return Submission{}, ErrTemplateInactive
	}

	ongoing, err := svc.repo.QuerySubmissions(ctx, &SubmissionFilter{
		VolunteerID: actor.ID,
		TemplateID:  detail.ID,
		Statuses:    []Status{StatusInProgress},
	}, nil)
	if err != nil {
		return Submission{}, errors.Wrap(err, "querying submissions")
	}
	if len(ongoing) > 0 {
		return svc.repo.GetSubmission(ctx, ongoing[0].ID)
	}

	settings, err := svc.Settings(ctx)
	if err != nil {
		return Submission{}, err
	}
	last, err := svc.repo.LatestResolved(ctx, actor.ID, detail.TopicArea)
	switch {
	case err == nil:
		if err := CheckCooldown(detail.TopicArea, last.CompletedAt, settings.CooldownDays, now()); err != nil {
			return Submission{}, err
		}
	case !core.IsNotFound(err):
		return Submission{}, errors.Wrap(err, "finding latest resolved submission")
	}

	t := now()
	sub := Submission{
		TemplateID:  detail.ID,
		VolunteerID: actor.ID,
		TopicArea:   detail.TopicArea,
		Status:      StatusInProgress,
		Answers:     []Answer{},
		MaxScore:    detail.MaxScore(),
		CreatedAt:   t,
		UpdatedAt:   t,
	}
	return svc.repo.CreateSubmission(ctx, sub)
}

func (svc *Service) ownedSubmission(ctx context.Context, actor profile.Profile, id string) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if !sub.OwnedBy(actor.ID) {
		return Submission{}, core.ErrPermissionDenied
	}
	return sub, nil
}

// SubmitAnswers records responses of the owner while the submission collects answers.
// Answering a question again replaces the previous response. Answers stay ungraded until CompleteSubmission,
// so nothing about their correctness is known while they can still change.
func (svc *Service) SubmitAnswers(ctx context.Context, actor profile.Profile, submissionID string, inputs ...AnswerInput) ([]Answer, error) {
	sub, err := svc.ownedSubmission(ctx, actor, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status.Phase() != PhaseCollecting {
		return nil, invalidTransition("answer", sub.Status, "answers are no longer being collected")
	}
	detail, err := svc.templateDetail(ctx, sub.TemplateID)
	if err != nil {
		return nil, err
	}

	t := now()
	answers := make([]Answer, 0, len(inputs))
	for i, in := range inputs {
		q, ok := detail.Question(in.QuestionID)
		if !ok {
			err := errors.Errorf("question %s is not part of the template", in.QuestionID)
			return nil, core.NewValidationError(err, core.FieldError{Field: fmt.Sprintf("answers[%d].question_id", i), Error: err.Error()})
		}
		a, ok := sub.Answer(q.ID)
		if !ok {
			a = Answer{SubmissionID: sub.ID, QuestionID: q.ID, CreatedAt: t}
		}
		a.RawResponse = in.Response
		a.apply(GradeResult{})
		a.UpdatedAt = t
		answers = append(answers, a)
	}
	return svc.repo.SaveAnswers(ctx, answers...)
}

func (svc *Service) SubmitAnswer(ctx context.Context, actor profile.Profile, submissionID string, in AnswerInput) (Answer, error) {
	answers, err := svc.SubmitAnswers(ctx, actor, submissionID, in)
	if err != nil {
		return Answer{}, err
	}
	return answers[0], nil
}

// CompleteSubmission closes answer collection: unanswered questions get an empty answer,
// everything is auto-graded and the submission is aggregated.
func (svc *Service) CompleteSubmission(ctx context.Context, actor profile.Profile, submissionID string) (Submission, error) {
	sub, err := svc.ownedSubmission(ctx, actor, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if err := sub.complete(); err != nil {
		return Submission{}, err
	}
	detail, err := svc.templateDetail(ctx, sub.TemplateID)
	if err != nil {
		return Submission{}, err
	}
	settings, err := svc.Settings(ctx)
	if err != nil {
		return Submission{}, err
	}

	t := now()
	answers := make([]Answer, 0, len(detail.Questions))
	for _, q := range detail.Questions {
		a, ok := sub.Answer(q.ID)
		if !ok {
			a = Answer{SubmissionID: sub.ID, QuestionID: q.ID, CreatedAt: t}
		}
		a.apply(AutoGrade(q, a.RawResponse))
		a.UpdatedAt = t
		answers = append(answers, a)
	}
	if sub.Answers, err = svc.repo.SaveAnswers(ctx, answers...); err != nil {
		return Submission{}, errors.Wrap(err, "saving answers")
	}
	return svc.aggregate(ctx, sub, detail, settings)
}

// aggregate runs Aggregate over `sub` and saves the outcome. The volunteer is notified when a decision is reached.
func (svc *Service) aggregate(ctx context.Context, sub Submission, detail TemplateDetail, settings Settings) (Submission, error) {
	prev := sub.Status
	if err := Aggregate(&sub, detail, settings, now()); err != nil {
		return Submission{}, err
	}
	sub.UpdatedAt = now()

	answers := sub.Answers
	sub, err := svc.repo.UpdateSubmission(ctx, sub)
	if err != nil {
		return Submission{}, errors.Wrap(err, "saving submission")
	}
	sub.Answers = answers

	if sub.Status.Resolved() && sub.Status != prev {
		svc.notifyResult(ctx, sub, detail, settings)
	}
	return sub, nil
}

// GetSubmission returns the submission with its answers to its owner or a reviewer.
func (svc *Service) GetSubmission(ctx context.Context, actor profile.Profile, id string) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if !sub.OwnedBy(actor.ID) && !actor.IsReviewer() {
		return Submission{}, core.ErrPermissionDenied
	}
	return sub, nil
}

// QuerySubmissions lists submissions; volunteers only ever see their own.
func (svc *Service) QuerySubmissions(ctx context.Context, actor profile.Profile, filter *SubmissionFilter, ordering []core.DBOrdering) ([]Submission, error) {
	if filter == nil {
		filter = &SubmissionFilter{}
	}
	if !actor.IsReviewer() {
		filter.VolunteerID = actor.ID
	}
	return svc.repo.QuerySubmissions(ctx, filter, ordering)
}

// AggregateSubmission recomputes the scores of a graded submission and moves it to its next state.
func (svc *Service) AggregateSubmission(ctx context.Context, actor profile.Profile, id string) (Submission, error) {
	if !actor.IsReviewer() {
		return Submission{}, core.ErrPermissionDenied
	}
	sub, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	detail, err := svc.templateDetail(ctx, sub.TemplateID)
	if err != nil {
		return Submission{}, err
	}
	settings, err := svc.Settings(ctx)
	if err != nil {
		return Submission{}, err
	}
	return svc.aggregate(ctx, sub, detail, settings)
}

// ReviewAnswer grades one answer by hand. It does not aggregate the submission.
func (svc *Service) ReviewAnswer(ctx context.Context, actor profile.Profile, answerID string, in ReviewInput) (Answer, error) {
	if !actor.IsReviewer() {
		return Answer{}, core.ErrPermissionDenied
	}
	if in.Empty() {
		return Answer{}, errEmptyReview("")
	}
	a, err := svc.repo.GetAnswer(ctx, answerID)
	if err != nil {
		return Answer{}, err
	}
	sub, err := svc.repo.GetSubmission(ctx, a.SubmissionID)
	if err != nil {
		return Answer{}, err
	}
	if err := sub.reviewable(); err != nil {
		return Answer{}, err
	}
	detail, err := svc.templateDetail(ctx, sub.TemplateID)
	if err != nil {
		return Answer{}, err
	}
	q, ok := detail.Question(a.QuestionID)
	if !ok {
		return Answer{}, errors.Wrapf(ErrQuestionNotFound, "answer %s", a.ID)
	}

	review(&a, q, in, actor, now())
	saved, err := svc.repo.SaveAnswers(ctx, a)
	if err != nil {
		return Answer{}, err
	}
	return saved[0], nil
}

// ReviewSubmission grades a batch of answers of one submission, then aggregates it once.
func (svc *Service) ReviewSubmission(ctx context.Context, actor profile.Profile, submissionID string, items []ReviewItem) (Submission, error) {
	if !actor.IsReviewer() {
		return Submission{}, core.ErrPermissionDenied
	}
	sub, err := svc.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	if err := sub.reviewable(); err != nil {
		return Submission{}, err
	}
	detail, err := svc.templateDetail(ctx, sub.TemplateID)
	if err != nil {
		return Submission{}, err
	}
	settings, err := svc.Settings(ctx)
	if err != nil {
		return Submission{}, err
	}

	index := make(map[string]int, len(sub.Answers))
	for i, a := range sub.Answers {
		index[a.ID] = i
	}
	t := now()
	reviewed := make([]Answer, 0, len(items))
	for i, item := range items {
		if item.Empty() {
			return Submission{}, errEmptyReview(fmt.Sprintf("items[%d].", i))
		}
		idx, ok := index[item.AnswerID]
		if !ok {
			err := errors.Errorf("answer %s is not part of the submission", item.AnswerID)
			return Submission{}, core.NewValidationError(err, core.FieldError{Field: fmt.Sprintf("items[%d].answer_id", i), Error: err.Error()})
		}
		q, ok := detail.Question(sub.Answers[idx].QuestionID)
		if !ok {
			return Submission{}, errors.Wrapf(ErrQuestionNotFound, "answer %s", item.AnswerID)
		}
		review(&sub.Answers[idx], q, item.ReviewInput, actor, t)
		reviewed = append(reviewed, sub.Answers[idx])
	}

	if len(reviewed) > 0 {
		if _, err := svc.repo.SaveAnswers(ctx, reviewed...); err != nil {
			return Submission{}, errors.Wrap(err, "saving answers")
		}
	}
	return svc.aggregate(ctx, sub, detail, settings)
}

// ReopenSubmission sends a resolved submission back for regrading. Scores stay until the next aggregation.
func (svc *Service) ReopenSubmission(ctx context.Context, actor profile.Profile, id string) (Submission, error) {
	if !actor.IsReviewer() {
		return Submission{}, core.ErrPermissionDenied
	}
	sub, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	if err := sub.reopen(); err != nil {
		return Submission{}, err
	}
	sub.UpdatedAt = now()

	answers := sub.Answers
	if sub, err = svc.repo.UpdateSubmission(ctx, sub); err != nil {
		return Submission{}, errors.Wrap(err, "saving submission")
	}
	sub.Answers = answers
	return sub, nil
}

// ---------------------------------------------------------------------------------------------------------------------
// review queue & scores

// ReviewQueue lists the answers awaiting manual review, with what a reviewer needs to grade them.
func (svc *Service) ReviewQueue(ctx context.Context, actor profile.Profile, filter *ReviewQueueFilter) ([]PendingReview, error) {
	if !actor.IsReviewer() {
		return nil, core.ErrPermissionDenied
	}
	if filter == nil {
		filter = &ReviewQueueFilter{}
	}
	answers, err := svc.repo.QueryUngradedAnswers(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying ungraded answers")
	}
	if len(answers) == 0 {
		return []PendingReview{}, nil
	}

	ids := make([]string, 0, len(answers))
	seen := make(map[string]bool)
	for _, a := range answers {
		if !seen[a.QuestionID] {
			seen[a.QuestionID] = true
			ids = append(ids, a.QuestionID)
		}
	}
	questions, err := svc.resolveQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	queue := make([]PendingReview, 0, len(answers))
	for _, a := range answers {
		queue = append(queue, newPendingReview(a, byID[a.QuestionID]))
	}
	return queue, nil
}

// ScoreByArea computes the per-area competency of a volunteer for its owner or a reviewer.
func (svc *Service) ScoreByArea(ctx context.Context, actor profile.Profile, volunteerID string) ([]AreaScore, error) {
	if actor.ID != volunteerID && !actor.IsReviewer() {
		return nil, core.ErrPermissionDenied
	}
	if svc.profiles != nil {
		if _, err := svc.profiles.GetByID(ctx, volunteerID); err != nil {
			return nil, err
		}
	}
	settings, err := svc.Settings(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := svc.repo.QuerySubmissions(ctx, &SubmissionFilter{
		VolunteerID: volunteerID,
		Statuses:    []Status{StatusApproved},
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}

	var progress []training.AreaProgress
	if svc.progress != nil {
		if progress, err = svc.progress.Progress(ctx, volunteerID); err != nil {
			return nil, errors.Wrap(err, "loading training progress")
		}
	}
	return ScoreByArea(subs, progress, settings), nil
}

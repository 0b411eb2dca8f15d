package inmemdb

import (
	"context"
	"strings"
	"time"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
)

type assessmentRepository struct {
	question   *questionTable
	template   *templateTable
	submission *submissionTable
	answer     *answerTable
	setting    *settingTable
}

var _ assessment.Repository = (*assessmentRepository)(nil)

func NewAssessmentRepository(db *DB) *assessmentRepository {
	return &assessmentRepository{
		question:   db.question,
		template:   db.template,
		submission: db.submission,
		answer:     db.answer,
		setting:    db.setting,
	}
}

func copyQuestion(q assessment.Question) *assessment.Question {
	if q.Options != nil {
		q.Options = append([]assessment.Option(nil), q.Options...)
	}
	return &q
}

func copyTemplate(t assessment.Template) *assessment.Template {
	t.QuestionIDs = append(make([]string, 0, len(t.QuestionIDs)), t.QuestionIDs...)
	return &t
}

// ---------------------------------------------------------------------------------------------------------------------
// questions

func (repo *assessmentRepository) CreateQuestion(ctx context.Context, q assessment.Question) (assessment.Question, error) {
	repo.question.Lock()
	defer repo.question.Unlock()

	q.ID = newID()
	repo.question.table[q.ID] = copyQuestion(q)
	return *copyQuestion(q), nil
}

func (repo *assessmentRepository) GetQuestion(ctx context.Context, id string) (assessment.Question, error) {
	repo.question.RLock()
	defer repo.question.RUnlock()

	if q, ok := repo.question.table[id]; ok {
		return *copyQuestion(*q), nil
	}
	return assessment.Question{}, assessment.ErrQuestionNotFound
}

func (repo *assessmentRepository) QueryQuestions(ctx context.Context, filter *assessment.QuestionFilter, ordering []core.DBOrdering) ([]assessment.Question, error) {
	repo.question.RLock()
	defer repo.question.RUnlock()

	var ids map[string]bool
	if filter != nil && len(filter.IDs) > 0 {
		ids = make(map[string]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}

	questions := make([]assessment.Question, 0)
	for _, q := range repo.question.table {
		if filter != nil {
			if ids != nil && !ids[q.ID] {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(q.Text), strings.ToLower(filter.Search)) {
				continue
			}
			if filter.Type != "" && q.Type != filter.Type {
				continue
			}
			if filter.TopicArea != "" && q.TopicArea != filter.TopicArea {
				continue
			}
		}
		questions = append(questions, *copyQuestion(*q))
	}

	sortRows(len(questions), func(i, j int) { questions[i], questions[j] = questions[j], questions[i] }, ordering, fieldComparers{
		"topic_area": func(i, j int) int { return cmpString(questions[i].TopicArea, questions[j].TopicArea) },
		"type":       func(i, j int) int { return cmpString(string(questions[i].Type), string(questions[j].Type)) },
		"points":     func(i, j int) int { return cmpInt(questions[i].Points, questions[j].Points) },
		"created_at": func(i, j int) int { return cmpTime(questions[i].CreatedAt, questions[j].CreatedAt) },
		"id":         func(i, j int) int { return cmpString(questions[i].ID, questions[j].ID) },
	}, "created_at")
	return questions, nil
}

func (repo *assessmentRepository) UpdateQuestion(ctx context.Context, q assessment.Question) (assessment.Question, error) {
	repo.question.Lock()
	defer repo.question.Unlock()

	if _, ok := repo.question.table[q.ID]; !ok {
		return assessment.Question{}, assessment.ErrQuestionNotFound
	}
	repo.question.table[q.ID] = copyQuestion(q)
	return q, nil
}

func (repo *assessmentRepository) DeleteQuestion(ctx context.Context, id string) error {
	repo.question.Lock()
	defer repo.question.Unlock()
	delete(repo.question.table, id)
	return nil
}

func (repo *assessmentRepository) CountAnswers(ctx context.Context, questionID string) (int, error) {
	repo.answer.RLock()
	defer repo.answer.RUnlock()

	var n int
	for _, a := range repo.answer.table {
		if a.QuestionID == questionID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------------------------------------------------
// templates

func (repo *assessmentRepository) CreateTemplate(ctx context.Context, t assessment.Template) (assessment.Template, error) {
	repo.template.Lock()
	defer repo.template.Unlock()

	t.ID = newID()
	repo.template.table[t.ID] = copyTemplate(t)
	return *copyTemplate(t), nil
}

func (repo *assessmentRepository) GetTemplate(ctx context.Context, id string) (assessment.Template, error) {
	repo.template.RLock()
	defer repo.template.RUnlock()

	if t, ok := repo.template.table[id]; ok {
		return *copyTemplate(*t), nil
	}
	return assessment.Template{}, assessment.ErrTemplateNotFound
}

func (repo *assessmentRepository) QueryTemplates(ctx context.Context, filter *assessment.TemplateFilter, ordering []core.DBOrdering) ([]assessment.Template, error) {
	repo.template.RLock()
	defer repo.template.RUnlock()

	templates := make([]assessment.Template, 0)
	for _, t := range repo.template.table {
		if filter != nil {
			if filter.ActiveOnly && !t.Active {
				continue
			}
			if filter.TopicArea != "" && t.TopicArea != filter.TopicArea {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(filter.Search)) {
				continue
			}
			if filter.QuestionID != "" && !containsString(t.QuestionIDs, filter.QuestionID) {
				continue
			}
		}
		templates = append(templates, *copyTemplate(*t))
	}

	sortRows(len(templates), func(i, j int) { templates[i], templates[j] = templates[j], templates[i] }, ordering, fieldComparers{
		"title":      func(i, j int) int { return cmpString(templates[i].Title, templates[j].Title) },
		"topic_area": func(i, j int) int { return cmpString(templates[i].TopicArea, templates[j].TopicArea) },
		"created_at": func(i, j int) int { return cmpTime(templates[i].CreatedAt, templates[j].CreatedAt) },
		"id":         func(i, j int) int { return cmpString(templates[i].ID, templates[j].ID) },
	}, "created_at")
	return templates, nil
}

func (repo *assessmentRepository) UpdateTemplate(ctx context.Context, t assessment.Template) (assessment.Template, error) {
	repo.template.Lock()
	defer repo.template.Unlock()

	if _, ok := repo.template.table[t.ID]; !ok {
		return assessment.Template{}, assessment.ErrTemplateNotFound
	}
	repo.template.table[t.ID] = copyTemplate(t)
	return t, nil
}

func (repo *assessmentRepository) DeleteTemplate(ctx context.Context, id string) error {
	repo.template.Lock()
	defer repo.template.Unlock()
	delete(repo.template.table, id)
	return nil
}

func (repo *assessmentRepository) CountSubmissions(ctx context.Context, templateID string) (int, error) {
	repo.submission.RLock()
	defer repo.submission.RUnlock()

	var n int
	for _, s := range repo.submission.table {
		if s.TemplateID == templateID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------------------------------------------------
// submissions & answers

func (repo *assessmentRepository) CreateSubmission(ctx context.Context, s assessment.Submission) (assessment.Submission, error) {
	repo.submission.Lock()
	defer repo.submission.Unlock()

	s.ID = newID()
	s.Answers = nil
	repo.submission.table[s.ID] = &s
	created := s
	created.Answers = []assessment.Answer{}
	return created, nil
}

// answersOf returns the answers of a submission in creation order. Caller holds the answer lock.
func (repo *assessmentRepository) answersOf(submissionID string) []assessment.Answer {
	answers := make([]assessment.Answer, 0)
	for _, a := range repo.answer.table {
		if a.SubmissionID == submissionID {
			answers = append(answers, *a)
		}
	}
	sortRows(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] }, nil, fieldComparers{
		"created_at": func(i, j int) int { return cmpTime(answers[i].CreatedAt, answers[j].CreatedAt) },
		"id":         func(i, j int) int { return cmpString(answers[i].ID, answers[j].ID) },
	}, "created_at")
	return answers
}

func (repo *assessmentRepository) GetSubmission(ctx context.Context, id string) (assessment.Submission, error) {
	repo.submission.RLock()
	s, ok := repo.submission.table[id]
	var sub assessment.Submission
	if ok {
		sub = *s
	}
	repo.submission.RUnlock()
	if !ok {
		return assessment.Submission{}, assessment.ErrSubmissionNotFound
	}

	repo.answer.RLock()
	defer repo.answer.RUnlock()
	sub.Answers = repo.answersOf(id)
	return sub, nil
}

func (repo *assessmentRepository) QuerySubmissions(ctx context.Context, filter *assessment.SubmissionFilter, ordering []core.DBOrdering) ([]assessment.Submission, error) {
	repo.submission.RLock()
	defer repo.submission.RUnlock()

	subs := make([]assessment.Submission, 0)
	for _, s := range repo.submission.table {
		if filter != nil {
			if filter.VolunteerID != "" && s.VolunteerID != filter.VolunteerID {
				continue
			}
			if filter.TemplateID != "" && s.TemplateID != filter.TemplateID {
				continue
			}
			if filter.TopicArea != "" && s.TopicArea != filter.TopicArea {
				continue
			}
			if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, s.Status) {
				continue
			}
		}
		subs = append(subs, *s)
	}

	sortRows(len(subs), func(i, j int) { subs[i], subs[j] = subs[j], subs[i] }, ordering, fieldComparers{
		"status":       func(i, j int) int { return cmpString(string(subs[i].Status), string(subs[j].Status)) },
		"percentage":   func(i, j int) int { return cmpInt(subs[i].Percentage, subs[j].Percentage) },
		"topic_area":   func(i, j int) int { return cmpString(subs[i].TopicArea, subs[j].TopicArea) },
		"completed_at": func(i, j int) int { return cmpTime(subs[i].CompletedAt, subs[j].CompletedAt) },
		"created_at":   func(i, j int) int { return cmpTime(subs[i].CreatedAt, subs[j].CreatedAt) },
		"id":           func(i, j int) int { return cmpString(subs[i].ID, subs[j].ID) },
	}, "created_at")
	return subs, nil
}

func (repo *assessmentRepository) UpdateSubmission(ctx context.Context, s assessment.Submission) (assessment.Submission, error) {
	repo.submission.Lock()
	defer repo.submission.Unlock()

	if _, ok := repo.submission.table[s.ID]; !ok {
		return assessment.Submission{}, assessment.ErrSubmissionNotFound
	}
	s.Answers = nil
	repo.submission.table[s.ID] = &s
	return s, nil
}

func (repo *assessmentRepository) LatestResolved(ctx context.Context, volunteerID, topicArea string) (assessment.Submission, error) {
	repo.submission.RLock()
	defer repo.submission.RUnlock()

	var latest *assessment.Submission
	for _, s := range repo.submission.table {
		if s.VolunteerID != volunteerID || s.TopicArea != topicArea || !s.Status.Resolved() {
			continue
		}
		if latest == nil || s.CompletedAt.After(latest.CompletedAt) {
			latest = s
		}
	}
	if latest == nil {
		return assessment.Submission{}, assessment.ErrSubmissionNotFound
	}
	return *latest, nil
}

func (repo *assessmentRepository) SaveAnswers(ctx context.Context, answers ...assessment.Answer) ([]assessment.Answer, error) {
	repo.answer.Lock()
	defer repo.answer.Unlock()

	saved := make([]assessment.Answer, 0, len(answers))
	for _, a := range answers {
		// (submission, question) is unique
		for _, existing := range repo.answer.table {
			if existing.SubmissionID == a.SubmissionID && existing.QuestionID == a.QuestionID {
				a.ID = existing.ID
				a.CreatedAt = existing.CreatedAt
				break
			}
		}
		if a.ID == "" {
			a.ID = newID()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		stored := a
		repo.answer.table[a.ID] = &stored
		saved = append(saved, a)
	}
	return saved, nil
}

func (repo *assessmentRepository) GetAnswer(ctx context.Context, id string) (assessment.Answer, error) {
	repo.answer.RLock()
	defer repo.answer.RUnlock()

	if a, ok := repo.answer.table[id]; ok {
		return *a, nil
	}
	return assessment.Answer{}, assessment.ErrAnswerNotFound
}

func (repo *assessmentRepository) QueryUngradedAnswers(ctx context.Context, filter *assessment.ReviewQueueFilter) ([]assessment.Answer, error) {
	repo.submission.RLock()
	pending := make(map[string]bool)
	for _, s := range repo.submission.table {
		if s.Status != assessment.StatusPending {
			continue
		}
		if filter != nil {
			if filter.SubmissionID != "" && s.ID != filter.SubmissionID {
				continue
			}
			if filter.TopicArea != "" && s.TopicArea != filter.TopicArea {
				continue
			}
		}
		pending[s.ID] = true
	}
	repo.submission.RUnlock()

	repo.answer.RLock()
	defer repo.answer.RUnlock()

	answers := make([]assessment.Answer, 0)
	for _, a := range repo.answer.table {
		if pending[a.SubmissionID] && !a.Graded() {
			answers = append(answers, *a)
		}
	}
	sortRows(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] }, nil, fieldComparers{
		"updated_at": func(i, j int) int { return cmpTime(answers[i].UpdatedAt, answers[j].UpdatedAt) },
		"id":         func(i, j int) int { return cmpString(answers[i].ID, answers[j].ID) },
	}, "updated_at")
	return answers, nil
}

// ---------------------------------------------------------------------------------------------------------------------
// settings

func (repo *assessmentRepository) GetSettings(ctx context.Context) (map[string]string, error) {
	repo.setting.RLock()
	defer repo.setting.RUnlock()

	values := make(map[string]string, len(repo.setting.table))
	for k, v := range repo.setting.table {
		values[k] = v
	}
	return values, nil
}

func (repo *assessmentRepository) SaveSettings(ctx context.Context, values map[string]string) error {
	repo.setting.Lock()
	defer repo.setting.Unlock()

	for k, v := range values {
		repo.setting.table[k] = v
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsStatus(list []assessment.Status, s assessment.Status) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

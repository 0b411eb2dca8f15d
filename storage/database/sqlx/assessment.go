package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/storage/database"
)

const (
	questionColumns   = "id, text, type, correct_answer, options, points, topic_area, metadata, created_by, created_at, updated_at"
	templateColumns   = "id, title, topic_area, description, active, created_by, created_at, updated_at"
	submissionColumns = "id, template_id, volunteer_id, topic_area, status, final_score, max_score, percentage, completed_at, created_at, updated_at"
	answerColumns     = "id, submission_id, question_id, raw_response, is_correct, points_awarded, reviewed_by, reviewed_at, created_at, updated_at"
)

type questionRow struct {
	ID            string    `db:"id"`
	Text          string    `db:"text"`
	Type          string    `db:"type"`
	CorrectAnswer string    `db:"correct_answer"`
	Options       string    `db:"options"`
	Points        int       `db:"points"`
	TopicArea     string    `db:"topic_area"`
	Metadata      string    `db:"metadata"`
	CreatedBy     string    `db:"created_by"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func toQuestionRow(q assessment.Question) (questionRow, error) {
	options := []byte("[]")
	if len(q.Options) > 0 {
		var err error
		if options, err = json.Marshal(q.Options); err != nil {
			return questionRow{}, errors.Wrap(err, "encoding question options")
		}
	}
	metadata, err := json.Marshal(q.Metadata)
	if err != nil {
		return questionRow{}, errors.Wrap(err, "encoding question metadata")
	}
	return questionRow{
		ID:            q.ID,
		Text:          q.Text,
		Type:          string(q.Type),
		CorrectAnswer: q.CorrectAnswer,
		Options:       string(options),
		Points:        q.Points,
		TopicArea:     q.TopicArea,
		Metadata:      string(metadata),
		CreatedBy:     q.CreatedBy,
		CreatedAt:     q.CreatedAt.UTC(),
		UpdatedAt:     q.UpdatedAt.UTC(),
	}, nil
}

func (r questionRow) question() (assessment.Question, error) {
	q := assessment.Question{
		ID:            r.ID,
		Text:          r.Text,
		Type:          assessment.QuestionType(r.Type),
		CorrectAnswer: r.CorrectAnswer,
		Points:        r.Points,
		TopicArea:     r.TopicArea,
		Metadata:      assessment.DecodeMetadata([]byte(r.Metadata)),
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(r.Options), &q.Options); err != nil {
		return assessment.Question{}, errors.Wrapf(err, "decoding options of question %s", r.ID)
	}
	if len(q.Options) == 0 {
		q.Options = nil
	}
	return q, nil
}

type templateRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	TopicArea   string    `db:"topic_area"`
	Description string    `db:"description"`
	Active      bool      `db:"active"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toTemplateRow(t assessment.Template) templateRow {
	return templateRow{
		ID:          t.ID,
		Title:       t.Title,
		TopicArea:   t.TopicArea,
		Description: t.Description,
		Active:      t.Active,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (r templateRow) template(questionIDs []string) assessment.Template {
	if questionIDs == nil {
		questionIDs = []string{}
	}
	return assessment.Template{
		ID:          r.ID,
		Title:       r.Title,
		TopicArea:   r.TopicArea,
		Description: r.Description,
		Active:      r.Active,
		QuestionIDs: questionIDs,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type submissionRow struct {
	ID          string    `db:"id"`
	TemplateID  string    `db:"template_id"`
	VolunteerID string    `db:"volunteer_id"`
	TopicArea   string    `db:"topic_area"`
	Status      string    `db:"status"`
	FinalScore  float64   `db:"final_score"`
	MaxScore    int       `db:"max_score"`
	Percentage  int       `db:"percentage"`
	CompletedAt null.Time `db:"completed_at"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toSubmissionRow(s assessment.Submission) submissionRow {
	return submissionRow{
		ID:          s.ID,
		TemplateID:  s.TemplateID,
		VolunteerID: s.VolunteerID,
		TopicArea:   s.TopicArea,
		Status:      string(s.Status),
		FinalScore:  s.FinalScore,
		MaxScore:    s.MaxScore,
		Percentage:  s.Percentage,
		CompletedAt: null.NewTime(s.CompletedAt.UTC(), !s.CompletedAt.IsZero()),
		CreatedAt:   s.CreatedAt.UTC(),
		UpdatedAt:   s.UpdatedAt.UTC(),
	}
}

func (r submissionRow) submission() assessment.Submission {
	s := assessment.Submission{
		ID:          r.ID,
		TemplateID:  r.TemplateID,
		VolunteerID: r.VolunteerID,
		TopicArea:   r.TopicArea,
		Status:      assessment.Status(r.Status),
		FinalScore:  r.FinalScore,
		MaxScore:    r.MaxScore,
		Percentage:  r.Percentage,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.CompletedAt.Valid {
		s.CompletedAt = r.CompletedAt.Time.UTC()
	}
	return s
}

type answerRow struct {
	ID            string    `db:"id"`
	SubmissionID  string    `db:"submission_id"`
	QuestionID    string    `db:"question_id"`
	RawResponse   string    `db:"raw_response"`
	IsCorrect     null.Bool `db:"is_correct"`
	PointsAwarded float64   `db:"points_awarded"`
	ReviewedBy    string    `db:"reviewed_by"`
	ReviewedAt    null.Time `db:"reviewed_at"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func toAnswerRow(a assessment.Answer) answerRow {
	return answerRow{
		ID:            a.ID,
		SubmissionID:  a.SubmissionID,
		QuestionID:    a.QuestionID,
		RawResponse:   a.RawResponse,
		IsCorrect:     null.BoolFromPtr(a.IsCorrect),
		PointsAwarded: a.PointsAwarded,
		ReviewedBy:    a.ReviewedBy,
		ReviewedAt:    null.NewTime(a.ReviewedAt.UTC(), !a.ReviewedAt.IsZero()),
		CreatedAt:     a.CreatedAt.UTC(),
		UpdatedAt:     a.UpdatedAt.UTC(),
	}
}

func (r answerRow) answer() assessment.Answer {
	a := assessment.Answer{
		ID:            r.ID,
		SubmissionID:  r.SubmissionID,
		QuestionID:    r.QuestionID,
		RawResponse:   r.RawResponse,
		IsCorrect:     r.IsCorrect.Ptr(),
		PointsAwarded: r.PointsAwarded,
		ReviewedBy:    r.ReviewedBy,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.ReviewedAt.Valid {
		a.ReviewedAt = r.ReviewedAt.Time.UTC()
	}
	return a
}

func answersOf(rows []answerRow) []assessment.Answer {
	answers := make([]assessment.Answer, 0, len(rows))
	for _, r := range rows {
		answers = append(answers, r.answer())
	}
	return answers
}

type assessmentRepository struct {
	db *sqlx.DB
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *sqlx.DB) *assessmentRepository {
	return &assessmentRepository{db: db}
}

// ---------------------------------------------------------------------------------------------------------------------
// questions

func (repo *assessmentRepository) CreateQuestion(ctx context.Context, q assessment.Question) (assessment.Question, error) {
	q.ID = uuid.New().String()
	row, err := toQuestionRow(q)
	if err != nil {
		return assessment.Question{}, err
	}
	query := `INSERT INTO question (` + questionColumns + `)
		VALUES (:id, :text, :type, :correct_answer, :options, :points, :topic_area, :metadata, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return assessment.Question{}, errors.Wrap(err, "inserting question")
	}
	return row.question()
}

func (repo *assessmentRepository) GetQuestion(ctx context.Context, id string) (assessment.Question, error) {
	var row questionRow
	query := repo.db.Rebind("SELECT " + questionColumns + " FROM question WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return assessment.Question{}, trapNoRowsErr(err, assessment.ErrQuestionNotFound, "finding question")
	}
	return row.question()
}

func (repo *assessmentRepository) QueryQuestions(ctx context.Context, filter *assessment.QuestionFilter, ordering []core.DBOrdering) ([]assessment.Question, error) {
	w := &where{}
	if filter != nil {
		if len(filter.IDs) > 0 {
			w.add("id IN (?)", filter.IDs)
		}
		if filter.Search != "" {
			w.add("LOWER(text) LIKE ?", likePattern(filter.Search))
		}
		if filter.Type != "" {
			w.add("type = ?", string(filter.Type))
		}
		if filter.TopicArea != "" {
			w.add("topic_area = ?", filter.TopicArea)
		}
	}

	query, args, err := build(repo.db, "SELECT "+questionColumns+" FROM question"+w.String()+orderBy(ordering, "created_at, id"), w.args...)
	if err != nil {
		return nil, err
	}
	var rows []questionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	questions := make([]assessment.Question, 0, len(rows))
	for _, r := range rows {
		q, err := r.question()
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (repo *assessmentRepository) UpdateQuestion(ctx context.Context, q assessment.Question) (assessment.Question, error) {
	row, err := toQuestionRow(q)
	if err != nil {
		return assessment.Question{}, err
	}
	query := `UPDATE question SET text = :text, type = :type, correct_answer = :correct_answer, options = :options,
		points = :points, topic_area = :topic_area, metadata = :metadata, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return assessment.Question{}, errors.Wrap(err, "updating question")
	}
	if err := checkAffected(res, assessment.ErrQuestionNotFound, "updating question"); err != nil {
		return assessment.Question{}, err
	}
	return q, nil
}

func (repo *assessmentRepository) DeleteQuestion(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM question WHERE id = ?"), id); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return nil
}

func (repo *assessmentRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, repo.db.Rebind(query), args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (repo *assessmentRepository) CountAnswers(ctx context.Context, questionID string) (int, error) {
	n, err := repo.count(ctx, "SELECT COUNT(*) FROM answer WHERE question_id = ?", questionID)
	return n, errors.Wrap(err, "counting answers")
}

// ---------------------------------------------------------------------------------------------------------------------
// templates

func insertTemplateQuestions(ctx context.Context, tx *sqlx.Tx, templateID string, questionIDs []string) error {
	query := tx.Rebind("INSERT INTO template_question (template_id, question_id, position) VALUES (?, ?, ?)")
	for pos, qid := range questionIDs {
		if _, err := tx.ExecContext(ctx, query, templateID, qid, pos); err != nil {
			return errors.Wrap(err, "inserting template question")
		}
	}
	return nil
}

func (repo *assessmentRepository) CreateTemplate(ctx context.Context, t assessment.Template) (assessment.Template, error) {
	t.ID = uuid.New().String()
	row := toTemplateRow(t)
	err := database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		query := `INSERT INTO template (` + templateColumns + `)
			VALUES (:id, :title, :topic_area, :description, :active, :created_by, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return errors.Wrap(err, "inserting template")
		}
		return insertTemplateQuestions(ctx, tx, t.ID, t.QuestionIDs)
	})
	if err != nil {
		return assessment.Template{}, err
	}
	return row.template(append([]string(nil), t.QuestionIDs...)), nil
}

// questionIDs returns the question IDs of each template, in template order.
func (repo *assessmentRepository) questionIDs(ctx context.Context, templateIDs ...string) (map[string][]string, error) {
	ids := make(map[string][]string, len(templateIDs))
	if len(templateIDs) == 0 {
		return ids, nil
	}
	query, args, err := build(repo.db,
		"SELECT template_id, question_id FROM template_question WHERE template_id IN (?) ORDER BY template_id, position",
		templateIDs)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		TemplateID string `db:"template_id"`
		QuestionID string `db:"question_id"`
	}
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying template questions")
	}
	for _, r := range rows {
		ids[r.TemplateID] = append(ids[r.TemplateID], r.QuestionID)
	}
	return ids, nil
}

func (repo *assessmentRepository) GetTemplate(ctx context.Context, id string) (assessment.Template, error) {
	var row templateRow
	query := repo.db.Rebind("SELECT " + templateColumns + " FROM template WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return assessment.Template{}, trapNoRowsErr(err, assessment.ErrTemplateNotFound, "finding template")
	}
	ids, err := repo.questionIDs(ctx, id)
	if err != nil {
		return assessment.Template{}, err
	}
	return row.template(ids[id]), nil
}

func (repo *assessmentRepository) QueryTemplates(ctx context.Context, filter *assessment.TemplateFilter, ordering []core.DBOrdering) ([]assessment.Template, error) {
	w := &where{}
	if filter != nil {
		if filter.ActiveOnly {
			w.add("active = ?", true)
		}
		if filter.TopicArea != "" {
			w.add("topic_area = ?", filter.TopicArea)
		}
		if filter.Search != "" {
			w.add("LOWER(title) LIKE ?", likePattern(filter.Search))
		}
		if filter.QuestionID != "" {
			w.add("id IN (SELECT template_id FROM template_question WHERE question_id = ?)", filter.QuestionID)
		}
	}

	query, args, err := build(repo.db, "SELECT "+templateColumns+" FROM template"+w.String()+orderBy(ordering, "created_at, id"), w.args...)
	if err != nil {
		return nil, err
	}
	var rows []templateRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying templates")
	}

	templateIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		templateIDs = append(templateIDs, r.ID)
	}
	ids, err := repo.questionIDs(ctx, templateIDs...)
	if err != nil {
		return nil, err
	}
	templates := make([]assessment.Template, 0, len(rows))
	for _, r := range rows {
		templates = append(templates, r.template(ids[r.ID]))
	}
	return templates, nil
}

func (repo *assessmentRepository) UpdateTemplate(ctx context.Context, t assessment.Template) (assessment.Template, error) {
	row := toTemplateRow(t)
	err := database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		query := `UPDATE template SET title = :title, topic_area = :topic_area, description = :description,
			active = :active, updated_at = :updated_at
			WHERE id = :id`
		res, err := tx.NamedExecContext(ctx, query, row)
		if err != nil {
			return errors.Wrap(err, "updating template")
		}
		if err := checkAffected(res, assessment.ErrTemplateNotFound, "updating template"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM template_question WHERE template_id = ?"), t.ID); err != nil {
			return errors.Wrap(err, "clearing template questions")
		}
		return insertTemplateQuestions(ctx, tx, t.ID, t.QuestionIDs)
	})
	if err != nil {
		return assessment.Template{}, err
	}
	return row.template(append([]string(nil), t.QuestionIDs...)), nil
}

func (repo *assessmentRepository) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM template WHERE id = ?"), id); err != nil {
		return errors.Wrap(err, "deleting template")
	}
	return nil
}

func (repo *assessmentRepository) CountSubmissions(ctx context.Context, templateID string) (int, error) {
	n, err := repo.count(ctx, "SELECT COUNT(*) FROM submission WHERE template_id = ?", templateID)
	return n, errors.Wrap(err, "counting submissions")
}

// ---------------------------------------------------------------------------------------------------------------------
// submissions & answers

func (repo *assessmentRepository) CreateSubmission(ctx context.Context, s assessment.Submission) (assessment.Submission, error) {
	s.ID = uuid.New().String()
	row := toSubmissionRow(s)
	query := `INSERT INTO submission (` + submissionColumns + `)
		VALUES (:id, :template_id, :volunteer_id, :topic_area, :status, :final_score, :max_score, :percentage,
			:completed_at, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, row); err != nil {
		return assessment.Submission{}, errors.Wrap(err, "inserting submission")
	}
	created := row.submission()
	created.Answers = []assessment.Answer{}
	return created, nil
}

func (repo *assessmentRepository) GetSubmission(ctx context.Context, id string) (assessment.Submission, error) {
	var row submissionRow
	query := repo.db.Rebind("SELECT " + submissionColumns + " FROM submission WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return assessment.Submission{}, trapNoRowsErr(err, assessment.ErrSubmissionNotFound, "finding submission")
	}

	var answers []answerRow
	query = repo.db.Rebind("SELECT " + answerColumns + " FROM answer WHERE submission_id = ? ORDER BY created_at, id")
	if err := repo.db.SelectContext(ctx, &answers, query, id); err != nil {
		return assessment.Submission{}, errors.Wrap(err, "querying answers")
	}
	sub := row.submission()
	sub.Answers = answersOf(answers)
	return sub, nil
}

func (repo *assessmentRepository) QuerySubmissions(ctx context.Context, filter *assessment.SubmissionFilter, ordering []core.DBOrdering) ([]assessment.Submission, error) {
	w := &where{}
	if filter != nil {
		if filter.VolunteerID != "" {
			w.add("volunteer_id = ?", filter.VolunteerID)
		}
		if filter.TemplateID != "" {
			w.add("template_id = ?", filter.TemplateID)
		}
		if filter.TopicArea != "" {
			w.add("topic_area = ?", filter.TopicArea)
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, 0, len(filter.Statuses))
			for _, s := range filter.Statuses {
				statuses = append(statuses, string(s))
			}
			w.add("status IN (?)", statuses)
		}
	}

	query, args, err := build(repo.db, "SELECT "+submissionColumns+" FROM submission"+w.String()+orderBy(ordering, "created_at, id"), w.args...)
	if err != nil {
		return nil, err
	}
	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]assessment.Submission, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.submission())
	}
	return subs, nil
}

func (repo *assessmentRepository) UpdateSubmission(ctx context.Context, s assessment.Submission) (assessment.Submission, error) {
	row := toSubmissionRow(s)
	query := `UPDATE submission SET status = :status, final_score = :final_score, max_score = :max_score,
		percentage = :percentage, completed_at = :completed_at, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return assessment.Submission{}, errors.Wrap(err, "updating submission")
	}
	if err := checkAffected(res, assessment.ErrSubmissionNotFound, "updating submission"); err != nil {
		return assessment.Submission{}, err
	}
	s.Answers = nil
	return s, nil
}

func (repo *assessmentRepository) LatestResolved(ctx context.Context, volunteerID, topicArea string) (assessment.Submission, error) {
	query, args, err := build(repo.db,
		"SELECT "+submissionColumns+" FROM submission WHERE volunteer_id = ? AND topic_area = ? AND status IN (?)"+
			" ORDER BY completed_at DESC LIMIT 1",
		volunteerID, topicArea, []string{string(assessment.StatusApproved), string(assessment.StatusRejected)})
	if err != nil {
		return assessment.Submission{}, err
	}
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return assessment.Submission{}, trapNoRowsErr(err, assessment.ErrSubmissionNotFound, "finding latest resolved submission")
	}
	return row.submission(), nil
}

func (repo *assessmentRepository) SaveAnswers(ctx context.Context, answers ...assessment.Answer) ([]assessment.Answer, error) {
	saved := make([]assessment.Answer, 0, len(answers))
	err := database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		find := tx.Rebind("SELECT id, created_at FROM answer WHERE submission_id = ? AND question_id = ?")
		for _, a := range answers {
			// (submission, question) is unique
			var existing struct {
				ID        string    `db:"id"`
				CreatedAt time.Time `db:"created_at"`
			}
			var isNew bool
			err := tx.GetContext(ctx, &existing, find, a.SubmissionID, a.QuestionID)
			switch {
			case err == nil:
				a.ID = existing.ID
				a.CreatedAt = existing.CreatedAt.UTC()
			case errors.Cause(err) != sql.ErrNoRows:
				return errors.Wrap(err, "finding answer")
			default:
				isNew = true
				a.ID = uuid.New().String()
				if a.CreatedAt.IsZero() {
					a.CreatedAt = time.Now().UTC()
				}
			}

			row := toAnswerRow(a)
			query := `UPDATE answer SET raw_response = :raw_response, is_correct = :is_correct,
				points_awarded = :points_awarded, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at,
				updated_at = :updated_at
				WHERE id = :id`
			if isNew {
				query = `INSERT INTO answer (` + answerColumns + `)
					VALUES (:id, :submission_id, :question_id, :raw_response, :is_correct, :points_awarded,
						:reviewed_by, :reviewed_at, :created_at, :updated_at)`
			}
			if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
				return errors.Wrap(err, "saving answer")
			}
			saved = append(saved, row.answer())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (repo *assessmentRepository) GetAnswer(ctx context.Context, id string) (assessment.Answer, error) {
	var row answerRow
	query := repo.db.Rebind("SELECT " + answerColumns + " FROM answer WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return assessment.Answer{}, trapNoRowsErr(err, assessment.ErrAnswerNotFound, "finding answer")
	}
	return row.answer(), nil
}

func (repo *assessmentRepository) QueryUngradedAnswers(ctx context.Context, filter *assessment.ReviewQueueFilter) ([]assessment.Answer, error) {
	w := &where{}
	w.add("s.status = ?", string(assessment.StatusPending))
	w.add("a.is_correct IS NULL")
	if filter != nil {
		if filter.SubmissionID != "" {
			w.add("s.id = ?", filter.SubmissionID)
		}
		if filter.TopicArea != "" {
			w.add("s.topic_area = ?", filter.TopicArea)
		}
	}

	query := repo.db.Rebind(`SELECT a.id, a.submission_id, a.question_id, a.raw_response, a.is_correct, a.points_awarded,
			a.reviewed_by, a.reviewed_at, a.created_at, a.updated_at
		FROM answer a JOIN submission s ON s.id = a.submission_id` + w.String() + " ORDER BY a.updated_at, a.id")
	var rows []answerRow
	if err := repo.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying ungraded answers")
	}
	return answersOf(rows), nil
}

// ---------------------------------------------------------------------------------------------------------------------
// settings

func (repo *assessmentRepository) GetSettings(ctx context.Context) (map[string]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := repo.db.SelectContext(ctx, &rows, "SELECT key, value FROM setting"); err != nil {
		return nil, errors.Wrap(err, "querying settings")
	}
	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}
	return values, nil
}

func (repo *assessmentRepository) SaveSettings(ctx context.Context, values map[string]string) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`INSERT INTO setting (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
		for k, v := range values {
			if _, err := tx.ExecContext(ctx, query, k, v, now); err != nil {
				return errors.Wrapf(err, "saving setting %s", k)
			}
		}
		return nil
	})
}

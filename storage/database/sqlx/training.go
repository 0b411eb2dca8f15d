package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

const assignmentSelect = `SELECT a.module_id, a.profile_id, m.topic_area, a.assigned_by, a.assigned_at, a.completed_at
	FROM training_assignment a JOIN training_module m ON m.id = a.module_id`

const moduleColumns = "id, title, topic_area, description, url, created_at"

type moduleRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	TopicArea   string    `db:"topic_area"`
	Description string    `db:"description"`
	URL         string    `db:"url"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r moduleRow) module() training.Module {
	return training.Module{
		ID:          r.ID,
		Title:       r.Title,
		TopicArea:   r.TopicArea,
		Description: r.Description,
		URL:         r.URL,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type assignmentRow struct {
	ModuleID    string    `db:"module_id"`
	ProfileID   string    `db:"profile_id"`
	TopicArea   string    `db:"topic_area"`
	AssignedBy  string    `db:"assigned_by"`
	AssignedAt  time.Time `db:"assigned_at"`
	CompletedAt null.Time `db:"completed_at"`
}

func (r assignmentRow) assignment() training.Assignment {
	a := training.Assignment{
		ModuleID:   r.ModuleID,
		ProfileID:  r.ProfileID,
		TopicArea:  r.TopicArea,
		AssignedBy: r.AssignedBy,
		AssignedAt: r.AssignedAt.UTC(),
	}
	if r.CompletedAt.Valid {
		a.CompletedAt = r.CompletedAt.Time.UTC()
	}
	return a
}

type trainingRepository struct {
	db *sqlx.DB
}

var _ training.Repository = (*trainingRepository)(nil) // interface compliance check

func NewTrainingRepository(db *sqlx.DB) *trainingRepository {
	return &trainingRepository{db: db}
}

func (repo *trainingRepository) CreateModule(ctx context.Context, m training.Module) (training.Module, error) {
	m.ID = uuid.New().String()
	m.CreatedAt = m.CreatedAt.UTC()
	query := repo.db.Rebind("INSERT INTO training_module (" + moduleColumns + ") VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := repo.db.ExecContext(ctx, query, m.ID, m.Title, m.TopicArea, m.Description, m.URL, m.CreatedAt); err != nil {
		return training.Module{}, errors.Wrap(err, "inserting training module")
	}
	return m, nil
}

func (repo *trainingRepository) GetModule(ctx context.Context, id string) (training.Module, error) {
	var row moduleRow
	query := repo.db.Rebind("SELECT " + moduleColumns + " FROM training_module WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return training.Module{}, trapNoRowsErr(err, training.ErrModuleNotFound, "finding training module")
	}
	return row.module(), nil
}

func (repo *trainingRepository) QueryModules(ctx context.Context, topicArea string) ([]training.Module, error) {
	w := &where{}
	if topicArea != "" {
		w.add("topic_area = ?", topicArea)
	}
	query := repo.db.Rebind("SELECT " + moduleColumns + " FROM training_module" + w.String() + " ORDER BY topic_area, title")
	var rows []moduleRow
	if err := repo.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying training modules")
	}
	modules := make([]training.Module, 0, len(rows))
	for _, r := range rows {
		modules = append(modules, r.module())
	}
	return modules, nil
}

func (repo *trainingRepository) SaveAssignment(ctx context.Context, a training.Assignment) (training.Assignment, error) {
	m, err := repo.GetModule(ctx, a.ModuleID)
	if err != nil {
		return training.Assignment{}, err
	}
	a.TopicArea = m.TopicArea

	query := repo.db.Rebind(`INSERT INTO training_assignment (module_id, profile_id, assigned_by, assigned_at, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (module_id, profile_id) DO UPDATE SET
			assigned_by = excluded.assigned_by, assigned_at = excluded.assigned_at, completed_at = excluded.completed_at`)
	completedAt := null.NewTime(a.CompletedAt.UTC(), !a.CompletedAt.IsZero())
	if _, err := repo.db.ExecContext(ctx, query, a.ModuleID, a.ProfileID, a.AssignedBy, a.AssignedAt.UTC(), completedAt); err != nil {
		return training.Assignment{}, errors.Wrap(err, "saving training assignment")
	}
	return a, nil
}

func (repo *trainingRepository) GetAssignment(ctx context.Context, moduleID, profileID string) (training.Assignment, error) {
	var row assignmentRow
	query := repo.db.Rebind(assignmentSelect + " WHERE a.module_id = ? AND a.profile_id = ?")
	if err := repo.db.GetContext(ctx, &row, query, moduleID, profileID); err != nil {
		return training.Assignment{}, trapNoRowsErr(err, training.ErrAssignmentNotFound, "finding training assignment")
	}
	return row.assignment(), nil
}

func (repo *trainingRepository) QueryAssignments(ctx context.Context, profileID string) ([]training.Assignment, error) {
	var rows []assignmentRow
	query := repo.db.Rebind(assignmentSelect + " WHERE a.profile_id = ? ORDER BY a.assigned_at, a.module_id")
	if err := repo.db.SelectContext(ctx, &rows, query, profileID); err != nil {
		return nil, errors.Wrap(err, "querying training assignments")
	}
	assignments := make([]training.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.assignment())
	}
	return assignments, nil
}

package inmemdb

import (
	"context"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

type trainingRepository struct {
	module     *moduleTable
	assignment *assignmentTable
}

var _ training.Repository = (*trainingRepository)(nil)

func NewTrainingRepository(db *DB) *trainingRepository {
	return &trainingRepository{module: db.module, assignment: db.assignment}
}

func (repo *trainingRepository) CreateModule(ctx context.Context, m training.Module) (training.Module, error) {
	repo.module.Lock()
	defer repo.module.Unlock()

	m.ID = newID()
	repo.module.table[m.ID] = &m
	return m, nil
}

func (repo *trainingRepository) GetModule(ctx context.Context, id string) (training.Module, error) {
	repo.module.RLock()
	defer repo.module.RUnlock()

	if m, ok := repo.module.table[id]; ok {
		return *m, nil
	}
	return training.Module{}, training.ErrModuleNotFound
}

func (repo *trainingRepository) QueryModules(ctx context.Context, topicArea string) ([]training.Module, error) {
	repo.module.RLock()
	defer repo.module.RUnlock()

	modules := make([]training.Module, 0, len(repo.module.table))
	for _, m := range repo.module.table {
		if topicArea == "" || m.TopicArea == topicArea {
			modules = append(modules, *m)
		}
	}
	sortRows(len(modules), func(i, j int) { modules[i], modules[j] = modules[j], modules[i] }, nil, fieldComparers{
		"topic_area": func(i, j int) int { return cmpString(modules[i].TopicArea, modules[j].TopicArea) },
		"title":      func(i, j int) int { return cmpString(modules[i].Title, modules[j].Title) },
	}, "topic_area")
	return modules, nil
}

func (repo *trainingRepository) SaveAssignment(ctx context.Context, a training.Assignment) (training.Assignment, error) {
	repo.module.RLock()
	m, ok := repo.module.table[a.ModuleID]
	repo.module.RUnlock()
	if !ok {
		return training.Assignment{}, training.ErrModuleNotFound
	}
	a.TopicArea = m.TopicArea

	repo.assignment.Lock()
	defer repo.assignment.Unlock()
	repo.assignment.table[assignmentKey{a.ModuleID, a.ProfileID}] = &a
	return a, nil
}

func (repo *trainingRepository) GetAssignment(ctx context.Context, moduleID, profileID string) (training.Assignment, error) {
	repo.assignment.RLock()
	defer repo.assignment.RUnlock()

	if a, ok := repo.assignment.table[assignmentKey{moduleID, profileID}]; ok {
		return *a, nil
	}
	return training.Assignment{}, training.ErrAssignmentNotFound
}

func (repo *trainingRepository) QueryAssignments(ctx context.Context, profileID string) ([]training.Assignment, error) {
	repo.assignment.RLock()
	defer repo.assignment.RUnlock()

	assignments := make([]training.Assignment, 0)
	for _, a := range repo.assignment.table {
		if a.ProfileID == profileID {
			assignments = append(assignments, *a)
		}
	}
	sortRows(len(assignments), func(i, j int) { assignments[i], assignments[j] = assignments[j], assignments[i] }, nil, fieldComparers{
		"assigned_at": func(i, j int) int { return cmpTime(assignments[i].AssignedAt, assignments[j].AssignedAt) },
		"module_id":   func(i, j int) int { return cmpString(assignments[i].ModuleID, assignments[j].ModuleID) },
	}, "assigned_at")
	return assignments, nil
}

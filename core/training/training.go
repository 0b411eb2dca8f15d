package training

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

var (
	ErrModuleNotFound     = core.NewNotFoundError("training module not found")
	ErrAssignmentNotFound = core.NewNotFoundError("training assignment not found")
)

type Module struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TopicArea   string    `json:"topic_area"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

type Assignment struct {
	ModuleID    string    `json:"module_id"`
	ProfileID   string    `json:"profile_id"`
	TopicArea   string    `json:"topic_area"` // of the module, read-only
	AssignedBy  string    `json:"assigned_by"`
	AssignedAt  time.Time `json:"assigned_at"`
	CompletedAt time.Time `json:"completed_at"`
}

func (a Assignment) Completed() bool {
	return !a.CompletedAt.IsZero()
}

// AreaProgress counts the assigned and completed modules of a profile in one topic area.
type AreaProgress struct {
	TopicArea string `json:"topic_area"`
	Assigned  int    `json:"assigned"`
	Completed int    `json:"completed"`
}

type NewModule struct {
	Title       string `json:"title" validate:"notblank,max=255"`
	TopicArea   string `json:"topic_area" validate:"notblank,max=100"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"omitempty,url"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.TopicArea = core.CleanString(nm.TopicArea, true /* lower */)
	nm.Description = core.CleanString(nm.Description)
	nm.URL = core.CleanString(nm.URL)
	return validate.Struct(nm)
}

type NewAssignment struct {
	ModuleID  string `json:"module_id" validate:"required"`
	ProfileID string `json:"profile_id" validate:"required"`
}

type (
	Repository interface {
		CreateModule(ctx context.Context, m Module) (Module, error)
		GetModule(ctx context.Context, id string) (Module, error)
		QueryModules(ctx context.Context, topicArea string) ([]Module, error)
		// SaveAssignment inserts the assignment or updates the existing one for the same module and profile.
		SaveAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignment(ctx context.Context, moduleID, profileID string) (Assignment, error)
		QueryAssignments(ctx context.Context, profileID string) ([]Assignment, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateModule(ctx context.Context, actor profile.Profile, nm NewModule) (Module, error) {
	if !actor.IsReviewer() {
		return Module{}, core.ErrPermissionDenied
	}
	m := Module{
		Title:       nm.Title,
		TopicArea:   nm.TopicArea,
		Description: nm.Description,
		URL:         nm.URL,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateModule(ctx, m)
}

func (svc *Service) QueryModules(ctx context.Context, topicArea string) ([]Module, error) {
	return svc.repo.QueryModules(ctx, core.CleanString(topicArea, true /* lower */))
}

// Assign assigns a module to a profile. Assigning twice keeps the original assignment.
func (svc *Service) Assign(ctx context.Context, actor profile.Profile, na NewAssignment) (Assignment, error) {
	if !actor.IsReviewer() {
		return Assignment{}, core.ErrPermissionDenied
	}
	m, err := svc.repo.GetModule(ctx, na.ModuleID)
	if err != nil {
		return Assignment{}, err
	}
	if a, err := svc.repo.GetAssignment(ctx, m.ID, na.ProfileID); err == nil {
		return a, nil
	} else if errors.Cause(err) != ErrAssignmentNotFound {
		return Assignment{}, errors.Wrap(err, "finding assignment")
	}

	return svc.repo.SaveAssignment(ctx, Assignment{
		ModuleID:   m.ID,
		ProfileID:  na.ProfileID,
		TopicArea:  m.TopicArea,
		AssignedBy: actor.ID,
		AssignedAt: time.Now().UTC(),
	})
}

// Complete marks the module done for `profileID`; the assignee or a reviewer may do it.
func (svc *Service) Complete(ctx context.Context, actor profile.Profile, moduleID, profileID string) (Assignment, error) {
	if actor.ID != profileID && !actor.IsReviewer() {
		return Assignment{}, core.ErrPermissionDenied
	}
	a, err := svc.repo.GetAssignment(ctx, moduleID, profileID)
	if err != nil {
		return Assignment{}, err
	}
	if a.Completed() {
		return a, nil
	}
	a.CompletedAt = time.Now().UTC()
	return svc.repo.SaveAssignment(ctx, a)
}

func (svc *Service) Assignments(ctx context.Context, actor profile.Profile, profileID string) ([]Assignment, error) {
	if actor.ID != profileID && !actor.IsReviewer() {
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.QueryAssignments(ctx, profileID)
}

// Progress rolls up the assignments of `profileID` per topic area, sorted by area.
func (svc *Service) Progress(ctx context.Context, profileID string) ([]AreaProgress, error) {
	assignments, err := svc.repo.QueryAssignments(ctx, profileID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return RollupProgress(assignments), nil
}

func RollupProgress(assignments []Assignment) []AreaProgress {
	byArea := make(map[string]*AreaProgress)
	for _, a := range assignments {
		p, ok := byArea[a.TopicArea]
		if !ok {
			p = &AreaProgress{TopicArea: a.TopicArea}
			byArea[a.TopicArea] = p
		}
		p.Assigned++
		if a.Completed() {
			p.Completed++
		}
	}

	out := make([]AreaProgress, 0, len(byArea))
	for _, p := range byArea {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TopicArea < out[j].TopicArea })
	return out
}

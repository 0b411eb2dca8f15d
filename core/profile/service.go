package profile

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

var (
	ErrNotFound       = core.NewNotFoundError("profile not found")
	ErrEmailExists    = errors.New("a profile with this email already exists")
	ErrUsernameExists = errors.New("a profile with this username already exists")
)

type (
	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrEmailExists when another profile
		// (not in excludedIDs) already uses `username` or `email`.
		CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...string) error
		CreateProfile(ctx context.Context, p Profile) (Profile, error)
		// QueryProfiles applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Profile.Name, Profile.Username or Profile.Email.
		QueryProfiles(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Profile, error)
		GetProfile(ctx context.Context, filter GetFilter) (Profile, error)
		UpdateProfile(ctx context.Context, p Profile) (Profile, error)
		DeleteProfiles(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(ctx context.Context, uname, email string, excludedIDs ...string) error {
	if err := svc.repo.CheckUniqueness(ctx, uname, email, excludedIDs...); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, np NewProfile) (Profile, error) {
	now := time.Now().UTC()
	p := Profile{
		Name:      np.Name,
		Username:  np.Username,
		Email:     np.Email,
		Role:      np.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.SetActive(true)
	if err := p.SetPassword(np.Password); err != nil {
		return Profile{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateProfile(ctx, p)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Profile, error) {
	return svc.repo.QueryProfiles(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	return svc.repo.GetProfile(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (Profile, error) {
	return svc.repo.GetProfile(ctx, GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
}

func (svc *Service) Update(ctx context.Context, orig Profile, up UpdateProfile) (Profile, error) {
	p := orig
	p.Name = up.Name
	p.Username = up.Username
	p.Email = up.Email
	p.Role = up.Role
	p.IsActive = up.IsActive
	p.UpdatedAt = time.Now().UTC()
	if up.Password != "" {
		if err := p.SetPassword(up.Password); err != nil {
			return Profile{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateProfile(ctx, p)
}

func (svc *Service) SetLastLogin(ctx context.Context, p Profile) (Profile, error) {
	p.LastLogin = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, p)
}

// ResetPassword sets a new password on the profile matching `uname` (username or email).
func (svc *Service) ResetPassword(ctx context.Context, uname, pwd string) (Profile, error) {
	p, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return Profile{}, err
	}
	if err = p.SetPassword(pwd); err != nil {
		return Profile{}, errors.Wrap(err, "setting password")
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteProfiles(ctx, ids...)
}

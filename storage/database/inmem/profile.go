package inmemdb

import (
	"context"
	"strings"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

type profileRepository struct {
	db *profileTable
}

var _ profile.Repository = (*profileRepository)(nil)

func NewProfileRepository(db *DB) *profileRepository {
	return &profileRepository{db: db.profile}
}

func (repo *profileRepository) query() []profile.Profile {
	profiles := make([]profile.Profile, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		profiles = append(profiles, *p)
	}
	return profiles
}

func (repo *profileRepository) CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}
	for _, p := range repo.db.table {
		if excluded[p.ID] {
			continue
		}
		if username != "" && p.Username == username {
			return profile.ErrUsernameExists
		}
		if email != "" && p.Email == email {
			return profile.ErrEmailExists
		}
	}
	return nil
}

func (repo *profileRepository) CreateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = newID()
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *profileRepository) QueryProfiles(ctx context.Context, filter *profile.QueryFilter, ordering []core.DBOrdering) ([]profile.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	profiles := make([]profile.Profile, 0, len(repo.db.table))
	for _, p := range repo.query() {
		if filter != nil && !matchProfile(p, filter) {
			continue
		}
		profiles = append(profiles, p)
	}

	sortRows(len(profiles), func(i, j int) { profiles[i], profiles[j] = profiles[j], profiles[i] }, ordering, fieldComparers{
		"name":       func(i, j int) int { return cmpString(profiles[i].Name, profiles[j].Name) },
		"username":   func(i, j int) int { return cmpString(profiles[i].Username, profiles[j].Username) },
		"email":      func(i, j int) int { return cmpString(profiles[i].Email, profiles[j].Email) },
		"role":       func(i, j int) int { return cmpString(profiles[i].Role, profiles[j].Role) },
		"created_at": func(i, j int) int { return cmpTime(profiles[i].CreatedAt, profiles[j].CreatedAt) },
		"last_login": func(i, j int) int { return cmpTime(profiles[i].LastLogin, profiles[j].LastLogin) },
		"id":         func(i, j int) int { return cmpString(profiles[i].ID, profiles[j].ID) },
	}, "id")
	return profiles, nil
}

func matchProfile(p profile.Profile, filter *profile.QueryFilter) bool {
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(p.Name), s) &&
			!strings.Contains(p.Username, s) &&
			!strings.Contains(p.Email, s) {
			return false
		}
	}
	if len(filter.Roles) > 0 {
		var ok bool
		for _, role := range filter.Roles {
			if p.Role == role {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if filter.IsActive != nil && p.Active() != *filter.IsActive {
		return false
	}
	if !filter.CreatedFrom.IsZero() && p.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && p.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func (repo *profileRepository) GetProfile(ctx context.Context, filter profile.GetFilter) (profile.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if p, ok := repo.db.table[filter.ID]; ok {
			return *p, nil
		}
		return profile.Profile{}, profile.ErrNotFound
	}
	for _, p := range repo.db.table {
		switch {
		case filter.Username != "":
			if p.Username == filter.Username {
				return *p, nil
			}
		case filter.Email != "":
			if p.Email == filter.Email {
				return *p, nil
			}
		case filter.UsernameOrEmail != "":
			if p.Username == filter.UsernameOrEmail || p.Email == filter.UsernameOrEmail {
				return *p, nil
			}
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[p.ID]; !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *profileRepository) DeleteProfiles(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

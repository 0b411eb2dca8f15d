package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

const profileColumns = "id, name, username, email, role, is_active, password_hash, created_at, updated_at, last_login"

type profileRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Username     null.String `db:"username"`
	Email        null.String `db:"email"`
	Role         string      `db:"role"`
	IsActive     bool        `db:"is_active"`
	PasswordHash string      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func toProfileRow(p profile.Profile) profileRow {
	return profileRow{
		ID:           p.ID,
		Name:         p.Name,
		Username:     null.NewString(p.Username, p.Username != ""),
		Email:        null.NewString(p.Email, p.Email != ""),
		Role:         p.Role,
		IsActive:     p.Active(),
		PasswordHash: string(p.PasswordHash),
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(p.LastLogin.UTC(), !p.LastLogin.IsZero()),
	}
}

func (r profileRow) profile() profile.Profile {
	p := profile.Profile{
		ID:        r.ID,
		Name:      r.Name,
		Username:  r.Username.String,
		Email:     r.Email.String,
		Role:      r.Role,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.PasswordHash != "" {
		p.PasswordHash = []byte(r.PasswordHash)
	}
	if r.LastLogin.Valid {
		p.LastLogin = r.LastLogin.Time.UTC()
	}
	p.SetActive(r.IsActive)
	return p
}

type profileRepository struct {
	db *sqlx.DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *sqlx.DB) *profileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) exists(ctx context.Context, column, value string, excludedIDs []string) (bool, error) {
	w := &where{}
	w.add(column+" = ?", value)
	if len(excludedIDs) > 0 {
		w.add("id NOT IN (?)", excludedIDs)
	}
	q, args, err := build(repo.db, "SELECT COUNT(*) FROM profile"+w.String(), w.args...)
	if err != nil {
		return false, err
	}
	var n int
	if err := repo.db.GetContext(ctx, &n, q, args...); err != nil {
		return false, errors.Wrap(err, "checking profile uniqueness")
	}
	return n > 0, nil
}

func (repo *profileRepository) CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...string) error {
	if username != "" {
		found, err := repo.exists(ctx, "username", username, excludedIDs)
		if err != nil {
			return err
		}
		if found {
			return profile.ErrUsernameExists
		}
	}
	if email != "" {
		found, err := repo.exists(ctx, "email", email, excludedIDs)
		if err != nil {
			return err
		}
		if found {
			return profile.ErrEmailExists
		}
	}
	return nil
}

func (repo *profileRepository) CreateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	p.ID = uuid.New().String()
	row := toProfileRow(p)
	q := `INSERT INTO profile (` + profileColumns + `)
		VALUES (:id, :name, :username, :email, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return profile.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return row.profile(), nil
}

func (repo *profileRepository) QueryProfiles(ctx context.Context, filter *profile.QueryFilter, ordering []core.DBOrdering) ([]profile.Profile, error) {
	w := &where{}
	if filter != nil {
		// profiles with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := likePattern(filter.Search)
			w.add("(LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?)", val, val, val)
		}
		if len(filter.Roles) > 0 {
			w.add("role IN (?)", filter.Roles)
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			w.add("created_at >= ?", filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			w.add("created_at <= ?", filter.CreatedTo.UTC())
		}
	}

	q, args, err := build(repo.db, "SELECT "+profileColumns+" FROM profile"+w.String()+orderBy(ordering, "id"), w.args...)
	if err != nil {
		return nil, err
	}
	var rows []profileRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	profiles := make([]profile.Profile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, r.profile())
	}
	return profiles, nil
}

func (repo *profileRepository) GetProfile(ctx context.Context, filter profile.GetFilter) (profile.Profile, error) {
	w := &where{}
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return profile.Profile{}, profile.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	case filter.Username != "":
		w.add("username = ?", filter.Username)
	case filter.Email != "":
		w.add("email = ?", filter.Email)
	case filter.UsernameOrEmail != "":
		w.add("(username = ? OR email = ?)", filter.UsernameOrEmail, filter.UsernameOrEmail)
	default:
		return profile.Profile{}, profile.ErrNotFound
	}

	var row profileRow
	q := repo.db.Rebind("SELECT " + profileColumns + " FROM profile" + w.String() + " LIMIT 1")
	if err := repo.db.GetContext(ctx, &row, q, w.args...); err != nil {
		return profile.Profile{}, trapNoRowsErr(err, profile.ErrNotFound, "finding profile")
	}
	return row.profile(), nil
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	row := toProfileRow(p)
	q := `UPDATE profile SET name = :name, username = :username, email = :email, role = :role, is_active = :is_active,
		password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "updating profile")
	}
	if err := checkAffected(res, profile.ErrNotFound, "updating profile"); err != nil {
		return profile.Profile{}, err
	}
	return row.profile(), nil
}

func (repo *profileRepository) DeleteProfiles(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := build(repo.db, "DELETE FROM profile WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	if _, err := repo.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting profiles")
	}
	return nil
}

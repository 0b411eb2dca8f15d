package profile

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

// Roles
const (
	RoleAdmin            = "admin"
	RoleDirector         = "director"
	RolePedagogy         = "pedagogy"
	RoleCoordinator      = "coordinator"
	RoleSocialWorker     = "social_worker"
	RoleProfessionalTeam = "professional_team"
	RoleVolunteer        = "volunteer"
)

var (
	// ReviewerRoles may grade free-text answers and manage the question bank.
	ReviewerRoles = []string{RoleAdmin, RoleDirector, RolePedagogy, RoleCoordinator, RoleSocialWorker, RoleProfessionalTeam}
	AllRoles      = append(append(make([]string, 0, 7), ReviewerRoles...), RoleVolunteer)

	rolePriorities = map[string]int{
		RoleAdmin:            30,
		RoleDirector:         25,
		RoleCoordinator:      20,
		RolePedagogy:         15,
		RoleProfessionalTeam: 15,
		RoleSocialWorker:     15,
		RoleVolunteer:        1,
	}

	Roles = []Role{
		{Name: "Voluntario", Value: RoleVolunteer},
		{Name: "Trabajador/a social", Value: RoleSocialWorker},
		{Name: "Equipo profesional", Value: RoleProfessionalTeam},
		{Name: "Psicopedagogía", Value: RolePedagogy},
		{Name: "Coordinador/a", Value: RoleCoordinator},
		{Name: "Director/a", Value: RoleDirector},
		{Name: "Administrador/a", Value: RoleAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func IsReviewerRole(role string) bool {
	for _, r := range ReviewerRoles {
		if r == role {
			return true
		}
	}
	return false
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsActive     *bool     `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (p *Profile) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return nil
}

func (p Profile) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(pwd))
}

func (p *Profile) SetActive(active bool) {
	p.IsActive = &active
}

func (p Profile) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsReviewer reports whether the profile holds the reviewer capability.
func (p Profile) IsReviewer() bool {
	return IsReviewerRole(p.Role)
}

func (p Profile) IsVolunteer() bool {
	return p.Role == RoleVolunteer
}

// NewProfile contains information needed to create a new Profile.
type NewProfile struct {
	Name            string `json:"name" validate:"required"`
	Username        string `json:"username" validate:"omitempty,min=4,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"required,role"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (np *NewProfile) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	np.Name = core.CleanString(np.Name)
	np.Username = core.CleanString(np.Username, true /* lower */)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.Role = core.CleanString(np.Role, true /* lower */)

	if err := validate.Struct(np); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, np.Username, np.Email)
}

// UpdateProfile defines what information may be provided to modify an existing Profile.
type UpdateProfile struct {
	Name            string `json:"name"`
	Username        string `json:"username" validate:"omitempty,min=4,alphanum_"`
	Email           string `json:"email" validate:"omitempty,email"`
	IsActive        *bool  `json:"is_active"`
	Role            string `json:"role" validate:"omitempty,role"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (up *UpdateProfile) Validate(ctx context.Context, orig Profile, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = orig.Name
	}
	if uname := core.CleanString(up.Username, true /* lower */); uname != "" {
		up.Username = uname
	} else {
		up.Username = orig.Username
	}
	if email := core.CleanString(up.Email, true /* lower */); email != "" {
		up.Email = email
	} else {
		up.Email = orig.Email
	}
	if role := core.CleanString(up.Role, true /* lower */); role != "" {
		up.Role = role
	} else {
		up.Role = orig.Role
	}
	if up.IsActive == nil {
		up.IsActive = orig.IsActive
	}

	if err := validate.Struct(up); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, up.Username, up.Email, orig.ID)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single profile; the first non-empty field wins.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail string
}

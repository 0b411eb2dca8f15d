package profile

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

const passwordResetTemplate = "password_reset"

// ResetPassword redeems a password reset token.
type ResetPassword struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

// PasswordReset mails password reset links and redeems their tokens.
type PasswordReset struct {
	svc     *Service
	mailSvc core.EmailService
	tokens  tokenGenerator
}

func NewPasswordReset(svc *Service, mailSvc core.EmailService, conf *core.Config) *PasswordReset {
	return &PasswordReset{
		svc:     svc,
		mailSvc: mailSvc,
		tokens: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.Server.PasswordResetTimeoutDelta,
			now:       time.Now,
		},
	}
}

// Request mails a reset link to the active profile owning `email`. Unknown emails return ErrNotFound.
func (pr *PasswordReset) Request(ctx context.Context, email string) error {
	p, err := pr.svc.repo.GetProfile(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	if !p.Active() {
		return ErrNotFound
	}

	token, err := pr.tokens.makeToken(p)
	if err != nil {
		return errors.Wrap(err, "making token")
	}
	name := p.Name
	if name == "" {
		name = p.Username
	}
	pr.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: p.Name, Address: p.Email}},
		Subject:      "Restablecer contraseña",
		TemplateName: passwordResetTemplate,
		TemplateData: map[string]string{
			"Name":  name,
			"UID":   EncodeUID(p),
			"Token": token,
		},
		Categories: []string{"account"},
		Metadata:   map[string]string{"profile_id": p.ID},
	})
	return nil
}

// Confirm sets the new password when the token is still valid for the profile.
func (pr *PasswordReset) Confirm(ctx context.Context, data ResetPassword) (Profile, error) {
	invalid := core.NewValidationError(errInvalidToken, core.FieldError{Field: "token", Error: errInvalidToken.Error()})

	id, err := decodeUID(data.UID)
	if err != nil {
		return Profile{}, invalid
	}
	p, err := pr.svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Profile{}, invalid
		}
		return Profile{}, errors.Wrap(err, "finding profile")
	}
	if err := pr.tokens.verifyToken(p, data.Token); err != nil {
		return Profile{}, core.NewValidationError(err, core.FieldError{Field: "token", Error: err.Error()})
	}
	if tag := PasswordPolicyViolation(data.Password, p.Name, p.Username, p.Email); tag != "" {
		return Profile{}, core.NewValidationError(errors.New(policyTexts[tag]), core.FieldError{Field: "password", Error: policyTexts[tag]})
	}

	if err := p.SetPassword(data.Password); err != nil {
		return Profile{}, errors.Wrap(err, "setting password")
	}
	p.UpdatedAt = time.Now().UTC()
	return pr.svc.repo.UpdateProfile(ctx, p)
}

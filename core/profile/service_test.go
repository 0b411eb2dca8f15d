package profile_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	inmemdb "github.com/MorenaCaparros/plataformaAPA-sub001/storage/database/inmem"
)

type mailbox struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailbox) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

func newValidator() *validator.Validate {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	profile.InitValidators(validate, translator)
	return validate
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	out := make(map[string]string)
	switch e := err.(type) {
	case validator.ValidationErrors:
		for _, fe := range e {
			out[fe.Field()] = fe.Tag()
		}
	case *core.ValidationError:
		for _, fe := range e.Fields {
			out[fe.Field] = fe.Error
		}
	default:
		t.Fatalf("unexpected error type %T: %v", err, err)
	}
	return out
}

func TestNewProfile_Validate(t *testing.T) {
	ctx := context.Background()
	validate := newValidator()
	svc := profile.NewService(inmemdb.NewProfileRepository(inmemdb.Open()))

	_, err := svc.Create(ctx, profile.NewProfile{
		Name: "Ana", Username: "ana_g", Email: "ana@apa.test", Role: profile.RoleVolunteer,
		Password: "Lectura#2026", PasswordConfirm: "Lectura#2026",
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		data       profile.NewProfile
		wantFields map[string]string
	}{
		{
			name: "username or email required",
			data: profile.NewProfile{Name: "X", Role: profile.RoleVolunteer, Password: "Lectura#2026", PasswordConfirm: "Lectura#2026"},
			wantFields: map[string]string{"username": "username_or_email", "email": "username_or_email"},
		},
		{
			name: "unknown role",
			data: profile.NewProfile{Name: "X", Username: "xavier", Role: "teacher", Password: "Lectura#2026", PasswordConfirm: "Lectura#2026"},
			wantFields: map[string]string{"role": "role"},
		},
		{
			name: "weak password",
			data: profile.NewProfile{Name: "X", Username: "xavier", Role: profile.RoleVolunteer, Password: "12345678", PasswordConfirm: "12345678"},
			wantFields: map[string]string{"password": "pwdnotallnum"},
		},
		{
			name: "password too similar",
			data: profile.NewProfile{Name: "X", Username: "bernardita", Role: profile.RoleVolunteer, Password: "Bernardita1!", PasswordConfirm: "Bernardita1!"},
			wantFields: map[string]string{"password": "pwdtoosim"},
		},
		{
			name: "username taken",
			data: profile.NewProfile{Name: "X", Username: "ANA_G", Role: profile.RoleVolunteer, Password: "Lectura#2026", PasswordConfirm: "Lectura#2026"},
			wantFields: map[string]string{"username": profile.ErrUsernameExists.Error()},
		},
		{
			name: "email taken",
			data: profile.NewProfile{Name: "X", Email: " Ana@apa.test ", Role: profile.RoleVolunteer, Password: "Lectura#2026", PasswordConfirm: "Lectura#2026"},
			wantFields: map[string]string{"email": profile.ErrEmailExists.Error()},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.data.Validate(ctx, validate, svc)
			require.Error(t, err)
			assert.Equal(t, tc.wantFields, fieldErrors(t, err))
		})
	}
}

func TestService_UpdateAndLogin(t *testing.T) {
	ctx := context.Background()
	validate := newValidator()
	svc := profile.NewService(inmemdb.NewProfileRepository(inmemdb.Open()))

	np := profile.NewProfile{
		Name: "Bruno", Username: "bruno", Role: profile.RoleVolunteer,
		Password: "Lectura#2026", PasswordConfirm: "Lectura#2026",
	}
	require.NoError(t, np.Validate(ctx, validate, svc))
	p, err := svc.Create(ctx, np)
	require.NoError(t, err)
	assert.True(t, p.Active())
	assert.NoError(t, p.CheckPassword("Lectura#2026"))

	got, err := svc.GetByUsernameOrEmail(ctx, " BRUNO ")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	up := profile.UpdateProfile{Role: profile.RoleCoordinator, Email: "bruno@apa.test"}
	require.NoError(t, up.Validate(ctx, p, validate, svc))
	p, err = svc.Update(ctx, p, up)
	require.NoError(t, err)
	assert.Equal(t, "Bruno", p.Name, "blank fields keep their value")
	assert.Equal(t, profile.RoleCoordinator, p.Role)
	assert.True(t, p.IsReviewer())

	p, err = svc.SetLastLogin(ctx, p)
	require.NoError(t, err)
	assert.False(t, p.LastLogin.IsZero())

	p, err = svc.ResetPassword(ctx, "bruno@apa.test", "Escritura#2026")
	require.NoError(t, err)
	assert.NoError(t, p.CheckPassword("Escritura#2026"))

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.GetByID(ctx, p.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	conf := &core.Config{SecretKey: "secret"}
	conf.Server.PasswordResetTimeoutDelta = 72 * time.Hour

	svc := profile.NewService(inmemdb.NewProfileRepository(inmemdb.Open()))
	mail := &mailbox{}
	reset := profile.NewPasswordReset(svc, mail, conf)

	p, err := svc.Create(ctx, profile.NewProfile{
		Name: "Carla", Username: "carla", Email: "carla@apa.test", Role: profile.RoleVolunteer, Password: "Lectura#2026",
	})
	require.NoError(t, err)

	err = reset.Request(ctx, "nobody@apa.test")
	assert.True(t, core.IsNotFound(err))
	assert.Empty(t, mail.sent)

	require.NoError(t, reset.Request(ctx, "CARLA@apa.test"))
	require.Len(t, mail.sent, 1)
	msg := mail.sent[0]
	assert.Equal(t, "password_reset", msg.TemplateName)
	assert.Equal(t, "carla@apa.test", msg.To[0].Address)
	data := msg.TemplateData.(map[string]string)

	_, err = reset.Confirm(ctx, profile.ResetPassword{UID: data["UID"], Token: "HE4TS-sigsig-sig", Password: "Escritura#2026"})
	assert.Equal(t, map[string]string{"token": "invalid token"}, fieldErrors(t, err))

	_, err = reset.Confirm(ctx, profile.ResetPassword{UID: data["UID"], Token: data["Token"], Password: "short"})
	assert.Contains(t, fieldErrors(t, err), "password")

	p, err = reset.Confirm(ctx, profile.ResetPassword{UID: data["UID"], Token: data["Token"], Password: "Escritura#2026"})
	require.NoError(t, err)
	assert.NoError(t, p.CheckPassword("Escritura#2026"))

	_, err = reset.Confirm(ctx, profile.ResetPassword{UID: data["UID"], Token: data["Token"], Password: "Aritmetica#2026"})
	assert.Equal(t, map[string]string{"token": "invalid token"}, fieldErrors(t, err), "tokens are single use")
}

package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/MorenaCaparros/plataformaAPA-sub001/apps/api/echo"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	emailsvc "github.com/MorenaCaparros/plataformaAPA-sub001/services/email"
)

const pwd = "Lapiz-Azul-7319"

func Test_profileApi_login(t *testing.T) {
	a := setup(t)
	a.createProfile(t, "Ana", "ana", pwd, profile.RoleVolunteer, true)
	a.createProfile(t, "Beto", "beto", pwd, profile.RoleVolunteer, false)

	failed := marshalObj(t, httpErr{Error: "authentication failed"})
	tests := []httpTest{
		{
			name: "missing credentials", method: http.MethodPost, path: "/v1/profiles/login", body: echoapi.LoginRequest{},
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown profile", method: http.MethodPost, path: "/v1/profiles/login",
			body: echoapi.LoginRequest{Username: "lol", Password: pwd}, wantCode: http.StatusBadRequest, wantData: failed,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/profiles/login",
			body: echoapi.LoginRequest{Username: "ana", Password: "lol"}, wantCode: http.StatusBadRequest, wantData: failed,
		},
		{
			name: "deactivated", method: http.MethodPost, path: "/v1/profiles/login",
			body: echoapi.LoginRequest{Username: "beto", Password: pwd}, wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	a.run(t, tests)

	t.Run("success with username or email", func(t *testing.T) {
		for _, uname := range []string{"ana", " ANA@apa.test "} {
			rec := a.do(http.MethodPost, "/v1/profiles/login", "", echoapi.LoginRequest{Username: uname, Password: pwd})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp echoapi.LoginResponse
			decode(t, rec, &resp)
			require.NotEmpty(t, resp.Token)

			rec = a.do(http.MethodPost, "/v1/profiles/token-refresh", resp.Token)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}
	})
}

func Test_profileApi_permissions(t *testing.T) {
	a := setup(t)
	admin := a.createProfile(t, "Admin", "admin", pwd, profile.RoleAdmin, true)
	coord := a.createProfile(t, "Coordinadora", "coord", pwd, profile.RoleCoordinator, true)
	vol := a.createProfile(t, "Voluntaria", "vol", pwd, profile.RoleVolunteer, true)
	other := a.createProfile(t, "Otro", "other", pwd, profile.RoleVolunteer, true)

	forbidden := marshalObj(t, httpErr{Error: "permission denied"})
	notFound := marshalObj(t, httpErr{Error: "not found"})
	tests := []httpTest{
		{name: "auth required", path: "/v1/profiles", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "reviewer required to list", path: "/v1/profiles", token: a.token(t, vol), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "reviewer lists", path: "/v1/profiles", token: a.token(t, coord)},
		{name: "self detail", path: "/v1/profiles/" + vol.ID, token: a.token(t, vol)},
		{name: "others are hidden", path: "/v1/profiles/" + other.ID, token: a.token(t, vol), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "admin sees anyone", path: "/v1/profiles/" + other.ID, token: a.token(t, admin)},
		{
			name: "only admins change roles", method: http.MethodPut, path: "/v1/profiles/" + vol.ID, token: a.token(t, vol),
			body: profile.UpdateProfile{Role: profile.RoleAdmin}, wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "admin required to create", method: http.MethodPost, path: "/v1/profiles", token: a.token(t, coord),
			body: profile.NewProfile{Name: "X", Username: "xxxx", Role: profile.RoleVolunteer, Password: pwd, PasswordConfirm: pwd},
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "admin cannot delete self", method: http.MethodDelete, path: "/v1/profiles/" + admin.ID, token: a.token(t, admin),
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "volunteers cannot read others' scores", path: "/v1/profiles/" + other.ID + "/scores", token: a.token(t, vol),
			wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{name: "own scores", path: "/v1/profiles/" + vol.ID + "/scores", token: a.token(t, vol), wantData: []byte(`[]`)},
		{name: "roles", path: "/v1/profiles/roles", token: a.token(t, vol), wantData: marshalObj(t, profile.Roles)},
	}
	a.run(t, tests)

	t.Run("deactivated token holder", func(t *testing.T) {
		token := a.token(t, other)
		rec := a.do(http.MethodPut, "/v1/profiles/"+other.ID, a.token(t, admin), map[string]interface{}{"is_active": false})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = a.do(http.MethodGet, "/v1/profiles/"+other.ID, token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func Test_profileApi_create(t *testing.T) {
	a := setup(t)
	admin := a.createProfile(t, "Admin", "admin", pwd, profile.RoleAdmin, true)
	token := a.token(t, admin)

	tests := []httpTest{
		{
			name: "username or email required", method: http.MethodPost, path: "/v1/profiles", token: token,
			body:     profile.NewProfile{Name: "Carla", Role: profile.RoleVolunteer, Password: pwd, PasswordConfirm: pwd},
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"username": "one of username or email is required",
				"email":    "one of username or email is required",
			}),
		},
		{
			name: "unknown role", method: http.MethodPost, path: "/v1/profiles", token: token,
			body:     profile.NewProfile{Name: "Carla", Username: "carla", Role: "lol", Password: pwd, PasswordConfirm: pwd},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "weak password", method: http.MethodPost, path: "/v1/profiles", token: token,
			body:     profile.NewProfile{Name: "Carla", Username: "carla", Role: profile.RoleVolunteer, Password: "12345678", PasswordConfirm: "12345678"},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "username taken", method: http.MethodPost, path: "/v1/profiles", token: token,
			body:     profile.NewProfile{Name: "Carla", Username: "admin", Role: profile.RoleVolunteer, Password: pwd, PasswordConfirm: pwd},
			wantCode: http.StatusBadRequest,
		},
	}
	a.run(t, tests)

	rec := a.do(http.MethodPost, "/v1/profiles", token, profile.NewProfile{
		Name: " Carla ", Username: "Carla", Email: "carla@apa.test", Role: profile.RoleVolunteer, Password: pwd, PasswordConfirm: pwd,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created profile.Profile
	decode(t, rec, &created)
	assert.Equal(t, "Carla", created.Name)
	assert.Equal(t, "carla", created.Username)
	assert.Equal(t, profile.RoleVolunteer, created.Role)
	assert.True(t, created.Active())

	rec = a.do(http.MethodDelete, "/v1/profiles?id="+created.ID, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodGet, "/v1/profiles/"+created.ID, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_profileApi_passwordReset(t *testing.T) {
	a := setup(t)
	ana := a.createProfile(t, "Ana", "ana", pwd, profile.RoleVolunteer, true)

	generic := http.StatusOK
	for _, email := range []string{"lol@apa.test", ana.Email} {
		rec := a.do(http.MethodPost, "/v1/profiles/password-reset", "", echoapi.PasswordResetRequest{Email: email})
		require.Equal(t, generic, rec.Code, rec.Body.String())
	}
	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, ana.Email, msg.To[0].Address)
	data, ok := msg.TemplateData.(map[string]string)
	require.True(t, ok)

	newPwd := "Cuaderno-Rojo-2468"
	tests := []httpTest{
		{
			name: "bad token", method: http.MethodPost, path: "/v1/profiles/password-reset-confirm",
			body:     profile.ResetPassword{UID: data["UID"], Token: "lol", Password: newPwd, PasswordConfirm: newPwd},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "weak password", method: http.MethodPost, path: "/v1/profiles/password-reset-confirm",
			body:     profile.ResetPassword{UID: data["UID"], Token: data["Token"], Password: "abc", PasswordConfirm: "abc"},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "reset", method: http.MethodPost, path: "/v1/profiles/password-reset-confirm",
			body: profile.ResetPassword{UID: data["UID"], Token: data["Token"], Password: newPwd, PasswordConfirm: newPwd},
		},
		{
			name: "token is single use", method: http.MethodPost, path: "/v1/profiles/password-reset-confirm",
			body:     profile.ResetPassword{UID: data["UID"], Token: data["Token"], Password: newPwd, PasswordConfirm: newPwd},
			wantCode: http.StatusBadRequest,
		},
	}
	a.run(t, tests)

	rec := a.do(http.MethodPost, "/v1/profiles/login", "", echoapi.LoginRequest{Username: "ana", Password: newPwd})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

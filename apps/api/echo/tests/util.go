package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/MorenaCaparros/plataformaAPA-sub001/apps/api/echo"
	"github.com/MorenaCaparros/plataformaAPA-sub001/apps/shared"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
	emailsvc "github.com/MorenaCaparros/plataformaAPA-sub001/services/email"
	sqlxrepos "github.com/MorenaCaparros/plataformaAPA-sub001/storage/database/sqlx"
	testutil "github.com/MorenaCaparros/plataformaAPA-sub001/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type app struct {
	srv         *echoapi.Server
	profileRepo profile.Repository
}

func setup(t *testing.T) *app {
	t.Helper()
	conf := core.NewTestConfig()
	logger := testutil.NopLogger{}
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	// set up DB & repos
	db := testutil.OpenDB(t)
	profileRepo := sqlxrepos.NewProfileRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	profileSvc := profile.NewService(profileRepo)
	trainingSvc := training.NewService(sqlxrepos.NewTrainingRepository(db))
	assessmentSvc := assessment.NewService(
		sqlxrepos.NewAssessmentRepository(db),
		nil, /* cache */
		profileSvc,
		trainingSvc,
		mailSvc,
		logger,
		conf,
	)

	// set up server
	validate, translator := shared.NewValidator()
	srv := echoapi.NewServer(conf, logger, validate, translator, &echoapi.Deps{
		ProfileSvc:    profileSvc,
		PasswordReset: profile.NewPasswordReset(profileSvc, mailSvc, conf),
		AssessmentSvc: assessmentSvc,
		TrainingSvc:   trainingSvc,
	})
	return &app{srv: srv, profileRepo: profileRepo}
}

func (a *app) createProfile(t *testing.T, name, uname, pwd, role string, isActive bool) profile.Profile {
	t.Helper()
	return testutil.CreateProfile(t, a.profileRepo, name, uname, uname+"@apa.test", pwd, role, isActive)
}

func (a *app) token(t *testing.T, p profile.Profile) string {
	t.Helper()
	token, err := a.srv.Auth().TokenFor(p)
	require.NoError(t, err)
	return token
}

// do runs the request against the server and returns the recorded response.
func (a *app) do(method, path, token string, body ...interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if len(body) > 0 {
		switch b := body[0].(type) {
		case []byte:
			buf.Write(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.srv.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
	wantData []byte
}

func (a *app) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			var rec *httptest.ResponseRecorder
			if tt.body != nil {
				rec = a.do(method, tt.path, tt.token, tt.body)
			} else {
				rec = a.do(method, tt.path, tt.token)
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorenaCaparros/plataformaAPA-sub001/apps/shared"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/storage/database"
	sqlxrepos "github.com/MorenaCaparros/plataformaAPA-sub001/storage/database/sqlx"
	testutil "github.com/MorenaCaparros/plataformaAPA-sub001/tests"
)

var profileRepo profile.Repository

const pwd = "Lapiz-Azul-7319"

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db := testutil.OpenDB(t)
	profileRepo = sqlxrepos.NewProfileRepository(db)

	// set up services
	validate, _ := shared.NewValidator()
	profileSvc := profile.NewService(profileRepo)
	assessmentSvc := assessment.NewService(
		sqlxrepos.NewAssessmentRepository(db),
		nil, /* cache */
		profileSvc,
		nil, /* training */
		nil, /* mail */
		testutil.NopLogger{},
		core.NewTestConfig(),
	)

	// start CLI
	return &commandLine{
		db:            db,
		profileSvc:    profileSvc,
		assessmentSvc: assessmentSvc,
		validate:      validate,
		logger:        testutil.NopLogger{},
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	orig := database.GooseRunFunc
	t.Cleanup(func() { database.GooseRunFunc = orig })
	database.GooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "volunteer_notes", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_addProfile(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	tests := []cliTest{
		{name: "no args", args: []string{"addprofile"}, wantErr: errHelp},
		{name: "unknown role", args: []string{"addprofile", "-username", "ana", "-role", "lol"}, wantErrStr: "role"},
		{name: "create", args: []string{"addprofile", "-name", "Ana", "-username", "ana", "-email", "ana@apa.test"}},
		{name: "update", args: []string{"addprofile", "-username", "ana", "-role", profile.RoleCoordinator}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	p, err := profileRepo.GetProfile(ctx, profile.GetFilter{Username: "ana"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, profile.RoleCoordinator, p.Role)
	assert.True(t, p.Active())
	assert.NoError(t, p.CheckPassword(pwd))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	p := testutil.CreateProfile(t, profileRepo, "Ana", "ana", "ana@apa.test", pwd, profile.RoleVolunteer, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "profile not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: profile.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", p.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", p.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			refreshed, err := profileRepo.GetProfile(context.Background(), profile.GetFilter{ID: p.ID})
			require.NoError(t, err)
			assert.False(t, bytes.Equal(refreshed.PasswordHash, p.PasswordHash), "failed to update new password")
		})
	}
}

func Test_commandLine_importQuestions(t *testing.T) {
	cli := setup(t)
	testutil.CreateProfile(t, profileRepo, "Coordinadora", "coord", "coord@apa.test", pwd, profile.RoleCoordinator, true)
	testutil.CreateProfile(t, profileRepo, "Voluntaria", "vol", "vol@apa.test", pwd, profile.RoleVolunteer, true)

	files := map[string]string{
		"ok.csv": "text,type,points,topic_area,correct_answer,options\n" +
			"¿Qué letra sigue a la A?,multiple_choice,10,Lectura,,C|*B\n" +
			"Ordená la frase,word_order,5,lectura,el|gato|duerme,\n" +
			"Contá una experiencia,free_text,10,escritura,,\n",
		"bad_points.csv": "text,type,points\nUna pregunta,free_text,diez\n",
		"bad_type.csv":   "text,type,points\nUna pregunta,lol,10\n",
		"no_header.csv":  "Una pregunta,free_text,10\n",
	}
	openFileFunc = func(name string) (io.ReadCloser, error) {
		content, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("open %s: no such file or directory", name)
		}
		return io.NopCloser(strings.NewReader(content)), nil
	}

	tests := []cliTest{
		{name: "no args", args: []string{"importquestions"}, wantErr: errHelp},
		{name: "missing file", args: []string{"importquestions", "-file", "lol.csv", "-as", "coord"}, wantErrStr: "no such file"},
		{name: "unknown actor", args: []string{"importquestions", "-file", "ok.csv", "-as", "lol"}, wantErrStr: "profile not found"},
		{name: "volunteers cannot import", args: []string{"importquestions", "-file", "ok.csv", "-as", "vol"}, wantErrStr: "permission denied"},
		{name: "bad points", args: []string{"importquestions", "-file", "bad_points.csv", "-as", "coord"}, wantErrStr: "line 2"},
		{name: "bad type", args: []string{"importquestions", "-file", "bad_type.csv", "-as", "coord"}, wantErrStr: "line 2"},
		{name: "no header", args: []string{"importquestions", "-file", "no_header.csv", "-as", "coord"}, wantErrStr: "missing \"text\" column"},
		{name: "import", args: []string{"importquestions", "-file", "ok.csv", "-as", "coord"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	coord, err := profileRepo.GetProfile(context.Background(), profile.GetFilter{Username: "coord"})
	require.NoError(t, err)
	questions, err := cli.assessmentSvc.QueryQuestions(context.Background(), coord, &assessment.QuestionFilter{TopicArea: "lectura"}, nil)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	for _, q := range questions {
		if q.Type == assessment.TypeMultipleChoice {
			assert.Equal(t, []assessment.Option{{Text: "C"}, {Text: "B", IsCorrect: true}}, q.Options)
		}
	}
}

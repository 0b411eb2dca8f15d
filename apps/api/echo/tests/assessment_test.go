package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

type assessmentFixture struct {
	*app
	admin, coord, vol, other profile.Profile
}

func setupAssessment(t *testing.T) *assessmentFixture {
	a := setup(t)
	return &assessmentFixture{
		app:   a,
		admin: a.createProfile(t, "Admin", "admin", pwd, profile.RoleAdmin, true),
		coord: a.createProfile(t, "Coordinadora", "coord", pwd, profile.RoleCoordinator, true),
		vol:   a.createProfile(t, "Voluntaria", "vol", pwd, profile.RoleVolunteer, true),
		other: a.createProfile(t, "Otro", "other", pwd, profile.RoleVolunteer, true),
	}
}

func (f *assessmentFixture) question(t *testing.T, nq assessment.NewQuestion) assessment.Question {
	t.Helper()
	rec := f.do(http.MethodPost, "/v1/questions", f.token(t, f.coord), nq)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var q assessment.Question
	decode(t, rec, &q)
	return q
}

func (f *assessmentFixture) template(t *testing.T, questions ...assessment.Question) assessment.TemplateDetail {
	t.Helper()
	nt := assessment.NewTemplate{Title: "Lectura inicial", TopicArea: "lectura"}
	for _, q := range questions {
		nt.QuestionIDs = append(nt.QuestionIDs, q.ID)
	}
	rec := f.do(http.MethodPost, "/v1/templates", f.token(t, f.coord), nt)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var td assessment.TemplateDetail
	decode(t, rec, &td)
	return td
}

var (
	mcNQ = assessment.NewQuestion{
		Text:      "¿Qué letra sigue a la A?",
		Type:      assessment.TypeMultipleChoice,
		Points:    10,
		TopicArea: "lectura",
		Options:   []assessment.Option{{Text: "C"}, {Text: "B", IsCorrect: true}},
	}
	freeNQ = assessment.NewQuestion{Text: "Contá una experiencia de lectura", Type: assessment.TypeFreeText, Points: 10, TopicArea: "lectura"}
)

func Test_settingsApi(t *testing.T) {
	f := setupAssessment(t)

	tests := []httpTest{
		{
			name: "admin required", method: http.MethodPut, path: "/v1/settings", token: f.token(t, f.coord),
			body: map[string]int{"cooldown_days": 3}, wantCode: http.StatusForbidden,
		},
		{
			name: "out of range", method: http.MethodPut, path: "/v1/settings", token: f.token(t, f.admin),
			body: map[string]int{"pass_threshold": 101}, wantCode: http.StatusBadRequest,
		},
		{
			name: "update", method: http.MethodPut, path: "/v1/settings", token: f.token(t, f.admin),
			body: map[string]int{"cooldown_days": 30},
		},
	}
	f.run(t, tests)

	rec := f.do(http.MethodGet, "/v1/settings", f.token(t, f.vol))
	require.Equal(t, http.StatusOK, rec.Code)
	var settings assessment.Settings
	decode(t, rec, &settings)
	assert.Equal(t, 30, settings.CooldownDays)
	assert.Equal(t, 70, settings.PassThreshold)
}

func Test_questionApi(t *testing.T) {
	f := setupAssessment(t)
	q := f.question(t, mcNQ)

	tests := []httpTest{
		{name: "reviewer required", path: "/v1/questions", token: f.token(t, f.vol), wantCode: http.StatusForbidden},
		{
			name: "invalid type", method: http.MethodPost, path: "/v1/questions", token: f.token(t, f.coord),
			body: assessment.NewQuestion{Text: "x", Type: "lol", Points: 1}, wantCode: http.StatusBadRequest,
		},
		{name: "not found", path: "/v1/questions/lol", token: f.token(t, f.coord), wantCode: http.StatusNotFound},
		{name: "detail", path: "/v1/questions/" + q.ID, token: f.token(t, f.coord)},
		{name: "list by unknown area", path: "/v1/questions?topic_area=lol", token: f.token(t, f.coord), wantData: []byte(`[]`)},
	}
	f.run(t, tests)

	rec := f.do(http.MethodGet, "/v1/questions?topic_area=LECTURA", f.token(t, f.coord))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var listed []assessment.Question
	decode(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, q.ID, listed[0].ID)

	upd := assessment.UpdateQuestion(freeNQ)
	rec = f.do(http.MethodPut, "/v1/questions/"+q.ID, f.token(t, f.coord), upd)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated assessment.Question
	decode(t, rec, &updated)
	assert.Equal(t, assessment.TypeFreeText, updated.Type)
	assert.Empty(t, updated.Options)

	rec = f.do(http.MethodDelete, "/v1/questions/"+q.ID, f.token(t, f.coord))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_submissionApi_flow(t *testing.T) {
	f := setupAssessment(t)
	mc := f.question(t, mcNQ)
	free := f.question(t, freeNQ)
	td := f.template(t, mc, free)

	rec := f.do(http.MethodPut, "/v1/settings", f.token(t, f.admin), map[string]int{"cooldown_days": 30})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	volToken := f.token(t, f.vol)
	coordToken := f.token(t, f.coord)

	t.Run("volunteers get templates without answers", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/templates/"+td.ID, volToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var pub assessment.TemplateDetail
		decode(t, rec, &pub)
		require.Len(t, pub.Questions, 2)
		for _, opt := range pub.Questions[0].Options {
			assert.False(t, opt.IsCorrect)
		}
	})

	rec = f.do(http.MethodPost, "/v1/submissions", volToken, assessment.StartSubmission{TemplateID: td.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sub assessment.Submission
	decode(t, rec, &sub)
	assert.Equal(t, assessment.StatusInProgress, sub.Status)
	assert.Equal(t, 20, sub.MaxScore)

	tests := []httpTest{
		{
			name: "no answers", method: http.MethodPut, path: "/v1/submissions/" + sub.ID + "/answers", token: volToken,
			body: AnswersRequestBody{}, wantCode: http.StatusBadRequest,
		},
		{
			name: "foreign question", method: http.MethodPut, path: "/v1/submissions/" + sub.ID + "/answers", token: volToken,
			body: AnswersRequestBody{Answers: []assessment.AnswerInput{{QuestionID: "lol", Response: "x"}}}, wantCode: http.StatusBadRequest,
		},
		{
			name: "only the owner answers", method: http.MethodPut, path: "/v1/submissions/" + sub.ID + "/answers", token: f.token(t, f.other),
			body:     AnswersRequestBody{Answers: []assessment.AnswerInput{{QuestionID: mc.ID, Response: "B"}}},
			wantCode: http.StatusForbidden,
		},
		{name: "others cannot read it", path: "/v1/submissions/" + sub.ID, token: f.token(t, f.other), wantCode: http.StatusForbidden},
		{
			name: "answer", method: http.MethodPut, path: "/v1/submissions/" + sub.ID + "/answers", token: volToken,
			body: AnswersRequestBody{Answers: []assessment.AnswerInput{{QuestionID: mc.ID, Response: " b "}, {QuestionID: free.ID, Response: "Leímos un cuento"}}},
		},
		{
			name: "volunteers do not review", method: http.MethodPost, path: "/v1/submissions/" + sub.ID + "/review", token: volToken,
			body: ReviewRequestBody{}, wantCode: http.StatusForbidden,
		},
	}
	f.run(t, tests)

	t.Run("answers stay ungraded while collecting", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/v1/submissions/"+sub.ID+"/answers", volToken,
			AnswersRequestBody{Answers: []assessment.AnswerInput{{QuestionID: mc.ID, Response: "B"}}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var answers []assessment.Answer
		decode(t, rec, &answers)
		require.Len(t, answers, 1)
		assert.Nil(t, answers[0].IsCorrect)
		assert.Zero(t, answers[0].PointsAwarded)

		rec = f.do(http.MethodGet, "/v1/submissions/"+sub.ID, volToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got assessment.Submission
		decode(t, rec, &got)
		require.Len(t, got.Answers, 2)
		for _, a := range got.Answers {
			assert.Nil(t, a.IsCorrect, a.QuestionID)
			assert.Zero(t, a.PointsAwarded, a.QuestionID)
		}
	})

	rec = f.do(http.MethodPost, "/v1/submissions/"+sub.ID+"/complete", volToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &sub)
	assert.Equal(t, assessment.StatusPending, sub.Status)
	assert.Equal(t, 1, sub.UngradedCount())

	rec = f.do(http.MethodGet, "/v1/review/queue", coordToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var queue []assessment.PendingReview
	decode(t, rec, &queue)
	require.Len(t, queue, 1)
	assert.Equal(t, free.ID, queue[0].QuestionID)

	yes := true
	rec = f.do(http.MethodPost, "/v1/submissions/"+sub.ID+"/review", coordToken, ReviewRequestBody{
		Items: []assessment.ReviewItem{{AnswerID: queue[0].ID, ReviewInput: assessment.ReviewInput{IsCorrect: &yes}}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &sub)
	assert.Equal(t, assessment.StatusApproved, sub.Status)
	assert.Equal(t, 100, sub.Percentage)
	assert.Equal(t, 20.0, sub.FinalScore)

	t.Run("cooldown", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/submissions", volToken, assessment.StartSubmission{TemplateID: td.ID})
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		var body map[string]string
		decode(t, rec, &body)
		assert.NotEmpty(t, body["retry_after"])
	})

	t.Run("scores", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/profiles/"+f.vol.ID+"/scores", coordToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var scores []assessment.AreaScore
		decode(t, rec, &scores)
		require.Len(t, scores, 1)
		assert.Equal(t, "lectura", scores[0].TopicArea)
		require.NotNil(t, scores[0].SelfAssessment)
		assert.Equal(t, 100, *scores[0].SelfAssessment)
		assert.Equal(t, 100, scores[0].Score)
	})

	t.Run("locked template", func(t *testing.T) {
		rec := f.do(http.MethodDelete, "/v1/templates/"+td.ID, coordToken)
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

		rec = f.do(http.MethodPut, "/v1/templates/"+td.ID, coordToken, map[string]interface{}{"title": "Otra", "active": false})
		assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})

	t.Run("toggle a locked template", func(t *testing.T) {
		tests := []httpTest{
			{name: "volunteers cannot", method: http.MethodPatch, path: "/v1/templates/" + td.ID, token: volToken, body: map[string]interface{}{"active": false}, wantCode: http.StatusForbidden},
			{name: "active is required", method: http.MethodPatch, path: "/v1/templates/" + td.ID, token: coordToken, body: map[string]interface{}{}, wantCode: http.StatusBadRequest},
			{name: "unknown template", method: http.MethodPatch, path: "/v1/templates/nope", token: coordToken, body: map[string]interface{}{"active": false}, wantCode: http.StatusNotFound},
		}
		f.run(t, tests)

		for _, active := range []bool{false, true} {
			rec := f.do(http.MethodPatch, "/v1/templates/"+td.ID, coordToken, map[string]interface{}{"active": active})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var got assessment.TemplateDetail
			decode(t, rec, &got)
			assert.Equal(t, active, got.Active)
			assert.Equal(t, td.Title, got.Title)
			assert.Len(t, got.Questions, 2)
		}
	})

	t.Run("reopen and aggregate", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/v1/submissions/"+sub.ID+"/reopen", coordToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &sub)
		assert.Equal(t, assessment.StatusCompleted, sub.Status)

		rec = f.do(http.MethodPost, "/v1/submissions/"+sub.ID+"/aggregate", coordToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &sub)
		assert.Equal(t, assessment.StatusApproved, sub.Status)
	})

	t.Run("listing", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/submissions?status=approved", coordToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var subs []assessment.Submission
		decode(t, rec, &subs)
		require.Len(t, subs, 1)
		assert.Equal(t, sub.ID, subs[0].ID)

		rec = f.do(http.MethodGet, "/v1/submissions", f.token(t, f.other))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func Test_trainingApi(t *testing.T) {
	f := setupAssessment(t)
	coordToken := f.token(t, f.coord)
	volToken := f.token(t, f.vol)

	rec := f.do(http.MethodPost, "/v1/training/modules", coordToken, training.NewModule{Title: "Lectura compartida", TopicArea: "Lectura"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var m training.Module
	decode(t, rec, &m)
	assert.Equal(t, "lectura", m.TopicArea)

	tests := []httpTest{
		{
			name: "reviewer required", method: http.MethodPost, path: "/v1/training/modules", token: volToken,
			body: training.NewModule{Title: "x", TopicArea: "y"}, wantCode: http.StatusForbidden,
		},
		{
			name: "unknown profile", method: http.MethodPost, path: "/v1/training/assignments", token: coordToken,
			body: training.NewAssignment{ModuleID: m.ID, ProfileID: "lol"}, wantCode: http.StatusBadRequest,
		},
		{
			name: "assign", method: http.MethodPost, path: "/v1/training/assignments", token: coordToken,
			body: training.NewAssignment{ModuleID: m.ID, ProfileID: f.vol.ID}, wantCode: http.StatusCreated,
		},
		{
			name: "not assigned", method: http.MethodPost, path: "/v1/training/modules/" + m.ID + "/complete", token: f.token(t, f.other),
			wantCode: http.StatusNotFound,
		},
		{name: "complete own module", method: http.MethodPost, path: "/v1/training/modules/" + m.ID + "/complete", token: volToken},
		{name: "modules by unknown area", path: "/v1/training/modules?topic_area=lol", token: volToken, wantData: []byte(`[]`)},
	}
	f.run(t, tests)

	rec = f.do(http.MethodGet, "/v1/profiles/"+f.vol.ID+"/training", volToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Progress []training.AreaProgress `json:"progress"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, []training.AreaProgress{{TopicArea: "lectura", Assigned: 1, Completed: 1}}, resp.Progress)
}

// request bodies, as clients send them
type (
	AnswersRequestBody struct {
		Answers []assessment.AnswerInput `json:"answers"`
	}

	ReviewRequestBody struct {
		Items []assessment.ReviewItem `json:"items"`
	}
)

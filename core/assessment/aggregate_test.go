package assessment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

var (
	testSettings = Settings{PassThreshold: 70, QuestionsPerArea: 5, TrainingWeight: 0.5, NeedsTrainingThreshold: 60}
	testNow      = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
)

func detailOf(questions ...Question) TemplateDetail {
	d := TemplateDetail{Template: Template{ID: "tmpl", Title: "Lectura", TopicArea: "lectura", Active: true}, Questions: questions}
	for _, q := range questions {
		d.QuestionIDs = append(d.QuestionIDs, q.ID)
	}
	return d
}

// answered builds a completed submission whose answers went through auto-grading.
func answered(detail TemplateDetail, responses ...string) Submission {
	sub := Submission{ID: "sub", TemplateID: detail.ID, VolunteerID: "vol", TopicArea: detail.TopicArea, Status: StatusInProgress}
	for i, q := range detail.Questions {
		a := Answer{ID: q.ID + "-answer", SubmissionID: sub.ID, QuestionID: q.ID, RawResponse: responses[i]}
		a.apply(AutoGrade(q, a.RawResponse))
		sub.Answers = append(sub.Answers, a)
	}
	_ = sub.complete()
	return sub
}

func TestAggregate_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		questions   []Question
		responses   []string
		wantFinal   float64
		wantMax     int
		wantPercent int
		wantStatus  Status
	}{
		{
			name:        "all correct is approved",
			questions:   []Question{scaleQ, mcQ},
			responses:   []string{"3", "B"},
			wantFinal:   20,
			wantMax:     20,
			wantPercent: 100,
			wantStatus:  StatusApproved,
		},
		{
			name:        "all wrong is rejected",
			questions:   []Question{scaleQ, mcQ},
			responses:   []string{"2", "A"},
			wantFinal:   0,
			wantMax:     20,
			wantPercent: 0,
			wantStatus:  StatusRejected,
		},
		{
			name:        "half correct is below threshold",
			questions:   []Question{scaleQ, mcQ},
			responses:   []string{"3", "C"},
			wantFinal:   10,
			wantMax:     20,
			wantPercent: 50,
			wantStatus:  StatusRejected,
		},
		{
			name:        "free text keeps it pending",
			questions:   []Question{freeQ, scaleQ},
			responses:   []string{"leo cuentos con los chicos", "3"},
			wantFinal:   10,
			wantMax:     20,
			wantPercent: 50,
			wantStatus:  StatusPending,
		},
		{
			name:        "empty free text is graded",
			questions:   []Question{freeQ, scaleQ},
			responses:   []string{"", "3"},
			wantFinal:   10,
			wantMax:     20,
			wantPercent: 50,
			wantStatus:  StatusRejected,
		},
		{
			name:        "no questions",
			wantFinal:   0,
			wantMax:     0,
			wantPercent: 0,
			wantStatus:  StatusRejected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := answered(detailOf(tt.questions...), tt.responses...)
			err := Aggregate(&sub, detailOf(tt.questions...), testSettings, testNow)
			require.NoError(t, err)

			assert.Equal(t, tt.wantFinal, sub.FinalScore)
			assert.Equal(t, tt.wantMax, sub.MaxScore)
			assert.Equal(t, tt.wantPercent, sub.Percentage)
			assert.Equal(t, tt.wantStatus, sub.Status)
			if tt.wantStatus.Resolved() {
				assert.Equal(t, testNow, sub.CompletedAt)
			} else {
				assert.True(t, sub.CompletedAt.IsZero())
			}
		})
	}
}

func TestAggregate_ManualReviewResolves(t *testing.T) {
	detail := detailOf(freeQ, scaleQ)
	sub := answered(detail, "leo cuentos con los chicos", "3")
	require.NoError(t, Aggregate(&sub, detail, testSettings, testNow))
	require.Equal(t, StatusPending, sub.Status)

	scaleAns, _ := sub.Answer(scaleQ.ID)
	assert.Equal(t, float64(10), scaleAns.PointsAwarded)

	require.NoError(t, sub.reviewable())
	sub.Answers[0].apply(ManualGrade(freeQ, ReviewInput{Points: floatPtr(7)}))

	later := testNow.Add(time.Hour)
	require.NoError(t, Aggregate(&sub, detail, testSettings, later))
	assert.Equal(t, float64(17), sub.FinalScore)
	assert.Equal(t, 85, sub.Percentage)
	assert.Equal(t, StatusApproved, sub.Status)
	assert.Equal(t, later, sub.CompletedAt)
}

func TestAggregate_ClampsOutOfRangePoints(t *testing.T) {
	detail := detailOf(freeQ)
	for _, tc := range []struct {
		points float64
		want   float64
	}{{-5, 0}, {999, 10}} {
		sub := answered(detail, "respuesta")
		sub.Answers[0].apply(ManualGrade(freeQ, ReviewInput{Points: floatPtr(tc.points)}))
		assert.Equal(t, tc.want, sub.Answers[0].PointsAwarded)

		// stored values that escaped clamping are clamped again
		sub.Answers[0].PointsAwarded = tc.points
		require.NoError(t, Aggregate(&sub, detail, testSettings, testNow))
		assert.Equal(t, tc.want, sub.Answers[0].PointsAwarded)
		assert.Equal(t, tc.want, sub.FinalScore)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	detail := detailOf(scaleQ, mcQ, wordQ)
	sub := answered(detail, "3", "A", "el|perro|ladra")
	require.NoError(t, Aggregate(&sub, detail, testSettings, testNow))
	first := sub

	require.NoError(t, Aggregate(&sub, detail, testSettings, testNow.Add(24*time.Hour)))
	assert.Equal(t, first.FinalScore, sub.FinalScore)
	assert.Equal(t, first.Percentage, sub.Percentage)
	assert.Equal(t, first.Status, sub.Status)
	assert.Equal(t, first.CompletedAt, sub.CompletedAt, "same outcome must not move the cooldown timestamp")
}

func TestAggregate_PendingIffUngraded(t *testing.T) {
	detail := detailOf(freeQ, scaleQ, mcQ)
	responses := [][]string{
		{"algo", "3", "B"},
		{"", "3", "B"},
		{"algo", "", ""},
		{"", "", ""},
	}
	for _, r := range responses {
		sub := answered(detail, r...)
		require.NoError(t, Aggregate(&sub, detail, testSettings, testNow))
		assert.Equal(t, sub.UngradedCount() > 0, sub.Status == StatusPending, "responses %q", r)
	}
}

func TestAggregate_RejectsCollecting(t *testing.T) {
	detail := detailOf(scaleQ)
	sub := Submission{Status: StatusInProgress, Answers: []Answer{{QuestionID: scaleQ.ID, IsCorrect: boolPtr(true), PointsAwarded: 10}}}
	err := Aggregate(&sub, detail, testSettings, testNow)
	assert.True(t, core.IsConflict(err))
	assert.Equal(t, StatusInProgress, sub.Status)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		final float64
		max   int
		want  int
	}{
		{20, 20, 100},
		{17, 20, 85},
		{1, 3, 33},
		{2, 3, 67},
		{0.5, 1, 50},
		{5, 0, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.final, tt.max), "Percentage(%v, %d)", tt.final, tt.max)
	}
}

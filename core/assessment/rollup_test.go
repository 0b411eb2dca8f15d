package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

func intPtr(i int) *int { return &i }

func TestScoreByArea(t *testing.T) {
	subs := []Submission{
		{ID: "old", TopicArea: "lectura", Status: StatusApproved, Percentage: 40, CompletedAt: testNow.AddDate(0, -2, 0)},
		{ID: "new", TopicArea: "lectura", Status: StatusApproved, Percentage: 90, CompletedAt: testNow},
		{ID: "rej", TopicArea: "lectura", Status: StatusRejected, Percentage: 10, CompletedAt: testNow.AddDate(0, 0, 1)},
		{ID: "pend", TopicArea: "escritura", Status: StatusPending, Percentage: 100},
		{ID: "oral", TopicArea: "oralidad", Status: StatusApproved, Percentage: 50, CompletedAt: testNow},
	}
	progress := []training.AreaProgress{
		{TopicArea: "lectura", Assigned: 4, Completed: 2},
		{TopicArea: "escritura", Assigned: 2, Completed: 1},
		{TopicArea: "matematica", Assigned: 0, Completed: 0},
	}

	half := 0.5
	want := []AreaScore{
		{TopicArea: "escritura", TrainingCompletion: &half, TrainingAssigned: 2, TrainingCompleted: 1, Score: 50, NeedsTraining: true},
		{TopicArea: "lectura", SelfAssessment: intPtr(90), SubmissionID: "new", TrainingCompletion: &half, TrainingAssigned: 4, TrainingCompleted: 2, Score: 70},
		{TopicArea: "oralidad", SelfAssessment: intPtr(50), SubmissionID: "oral", Score: 50, NeedsTraining: true},
	}
	assert.Equal(t, want, ScoreByArea(subs, progress, testSettings))
}

func TestScoreByArea_Weight(t *testing.T) {
	subs := []Submission{{ID: "s", TopicArea: "lectura", Status: StatusApproved, Percentage: 80, CompletedAt: testNow}}
	progress := []training.AreaProgress{{TopicArea: "lectura", Assigned: 2, Completed: 0}}

	for weight, want := range map[float64]int{0: 80, 0.25: 60, 0.5: 40, 1: 0} {
		s := testSettings
		s.TrainingWeight = weight
		got := ScoreByArea(subs, progress, s)
		if assert.Len(t, got, 1) {
			assert.Equal(t, want, got[0].Score, "weight %v", weight)
		}
	}
}

func TestScoreByArea_Empty(t *testing.T) {
	assert.Empty(t, ScoreByArea(nil, nil, testSettings))
}

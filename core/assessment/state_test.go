package assessment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

func TestStatus_Phase(t *testing.T) {
	tests := map[Status]Phase{
		StatusInProgress: PhaseCollecting,
		StatusCompleted:  PhaseAutoGraded,
		StatusPending:    PhaseAwaitingReview,
		StatusApproved:   PhaseResolved,
		StatusRejected:   PhaseResolved,
		"":               PhaseCollecting,
	}
	for status, want := range tests {
		assert.Equal(t, want, status.Phase(), "status %q", status)
	}
}

func TestSubmission_Transitions(t *testing.T) {
	graded := []Answer{{IsCorrect: boolPtr(true), PointsAwarded: 10}}
	ungraded := []Answer{{IsCorrect: boolPtr(true), PointsAwarded: 10}, {}}

	tests := []struct {
		name       string
		status     Status
		answers    []Answer
		transition func(s *Submission) error
		wantStatus Status
		wantErr    bool
	}{
		{name: "complete collecting", status: StatusInProgress, transition: (*Submission).complete, wantStatus: StatusCompleted},
		{name: "complete twice", status: StatusCompleted, transition: (*Submission).complete, wantErr: true},
		{name: "complete resolved", status: StatusApproved, transition: (*Submission).complete, wantErr: true},

		{name: "await review with ungraded", status: StatusCompleted, answers: ungraded, transition: (*Submission).awaitReview, wantStatus: StatusPending},
		{name: "await review again", status: StatusPending, answers: ungraded, transition: (*Submission).awaitReview, wantStatus: StatusPending},
		{name: "await review all graded", status: StatusCompleted, answers: graded, transition: (*Submission).awaitReview, wantErr: true},
		{name: "await review collecting", status: StatusInProgress, answers: ungraded, transition: (*Submission).awaitReview, wantErr: true},
		{name: "await review resolved", status: StatusRejected, answers: ungraded, transition: (*Submission).awaitReview, wantErr: true},

		{name: "resolve auto-graded", status: StatusCompleted, answers: graded, transition: resolveAt70, wantStatus: StatusApproved},
		{name: "resolve awaiting review", status: StatusPending, answers: graded, transition: resolveAt70, wantStatus: StatusApproved},
		{name: "resolve with ungraded", status: StatusPending, answers: ungraded, transition: resolveAt70, wantErr: true},
		{name: "resolve collecting", status: StatusInProgress, answers: graded, transition: resolveAt70, wantErr: true},

		{name: "reopen approved", status: StatusApproved, answers: graded, transition: (*Submission).reopen, wantStatus: StatusCompleted},
		{name: "reopen rejected", status: StatusRejected, answers: graded, transition: (*Submission).reopen, wantStatus: StatusCompleted},
		{name: "reopen pending", status: StatusPending, answers: ungraded, transition: (*Submission).reopen, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := Submission{Status: tt.status, Answers: tt.answers, Percentage: 100}
			err := tt.transition(&sub)
			if tt.wantErr {
				assert.True(t, core.IsConflict(err), "want conflict, got %v", err)
				assert.Equal(t, tt.status, sub.Status, "failed transitions must not change the status")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, sub.Status)
		})
	}
}

func resolveAt70(s *Submission) error {
	return s.resolve(70, testNow)
}

func TestSubmission_ResolveStampsCompletedAt(t *testing.T) {
	graded := []Answer{{IsCorrect: boolPtr(true), PointsAwarded: 10}}
	sub := Submission{Status: StatusCompleted, Answers: graded, Percentage: 100}

	assert.NoError(t, sub.resolve(70, testNow))
	assert.Equal(t, testNow, sub.CompletedAt)

	// same decision, no new stamp
	assert.NoError(t, sub.resolve(70, testNow.Add(time.Hour)))
	assert.Equal(t, testNow, sub.CompletedAt)

	// reopened and regraded to a different decision, new stamp
	assert.NoError(t, sub.reopen())
	sub.Percentage = 40
	later := testNow.Add(48 * time.Hour)
	assert.NoError(t, sub.resolve(70, later))
	assert.Equal(t, StatusRejected, sub.Status)
	assert.Equal(t, later, sub.CompletedAt)
}

func TestSubmission_Reviewable(t *testing.T) {
	for status, ok := range map[Status]bool{
		StatusInProgress: false,
		StatusCompleted:  true,
		StatusPending:    true,
		StatusApproved:   false,
		StatusRejected:   false,
	} {
		err := Submission{Status: status}.reviewable()
		if ok {
			assert.NoError(t, err, "status %q", status)
		} else {
			assert.True(t, core.IsConflict(err), "status %q", status)
		}
	}
}

func TestSubmission_PassThresholdBoundary(t *testing.T) {
	graded := []Answer{{IsCorrect: boolPtr(true)}}
	sub := Submission{Status: StatusCompleted, Answers: graded, Percentage: 70}
	assert.NoError(t, sub.resolve(70, testNow))
	assert.Equal(t, StatusApproved, sub.Status)

	sub = Submission{Status: StatusCompleted, Answers: graded, Percentage: 69}
	assert.NoError(t, sub.resolve(70, testNow))
	assert.Equal(t, StatusRejected, sub.Status)
}

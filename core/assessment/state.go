package assessment

import (
	"fmt"
	"time"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

// Phase is the state of a Submission in its grading lifecycle.
type Phase int

const (
	PhaseCollecting Phase = iota
	PhaseAutoGraded
	PhaseAwaitingReview
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseCollecting:
		return "collecting"
	case PhaseAutoGraded:
		return "auto-graded"
	case PhaseAwaitingReview:
		return "awaiting-manual-review"
	case PhaseResolved:
		return "resolved"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

func (s Status) Phase() Phase {
	switch s {
	case StatusCompleted:
		return PhaseAutoGraded
	case StatusPending:
		return PhaseAwaitingReview
	case StatusApproved, StatusRejected:
		return PhaseResolved
	default:
		return PhaseCollecting
	}
}

func invalidTransition(name string, s Status, why string) error {
	return core.NewConflictError(fmt.Sprintf("cannot %s a submission that is %s: %s", name, s.Phase(), why))
}

// complete closes answer collection once auto-grading ran over every answer.
func (s *Submission) complete() error {
	if s.Status.Phase() != PhaseCollecting {
		return invalidTransition("complete", s.Status, "answers are no longer being collected")
	}
	s.Status = StatusCompleted
	return nil
}

// awaitReview parks the submission until a reviewer grades the remaining answers.
func (s *Submission) awaitReview() error {
	switch s.Status.Phase() {
	case PhaseAutoGraded, PhaseAwaitingReview:
	default:
		return invalidTransition("queue for review", s.Status, "it is not graded yet or already resolved")
	}
	if s.UngradedCount() == 0 {
		return invalidTransition("queue for review", s.Status, "every answer is graded")
	}
	s.Status = StatusPending
	return nil
}

// resolve sets the final decision. CompletedAt is stamped whenever the decision changes.
func (s *Submission) resolve(passThreshold int, now time.Time) error {
	if s.Status.Phase() == PhaseCollecting {
		return invalidTransition("resolve", s.Status, "answers are still being collected")
	}
	if n := s.UngradedCount(); n > 0 {
		return invalidTransition("resolve", s.Status, fmt.Sprintf("%d answer(s) await manual review", n))
	}

	decision := StatusRejected
	if s.Percentage >= passThreshold {
		decision = StatusApproved
	}
	if s.Status != decision || s.CompletedAt.IsZero() {
		s.CompletedAt = now.UTC()
	}
	s.Status = decision
	return nil
}

// reopen takes a resolved submission back to auto-graded so reviewers can regrade its answers.
// The next aggregation resolves it again; scores stay as they are until then.
func (s *Submission) reopen() error {
	if s.Status.Phase() != PhaseResolved {
		return invalidTransition("reopen", s.Status, "only resolved submissions can be reopened")
	}
	s.Status = StatusCompleted
	return nil
}

// reviewable reports whether reviewers may grade answers of the submission.
func (s Submission) reviewable() error {
	switch s.Status.Phase() {
	case PhaseAutoGraded, PhaseAwaitingReview:
		return nil
	case PhaseResolved:
		return invalidTransition("review", s.Status, "reopen it first")
	default:
		return invalidTransition("review", s.Status, "answers are still being collected")
	}
}

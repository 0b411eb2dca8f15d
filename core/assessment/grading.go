package assessment

import (
	"math"
	"strings"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
)

// GradeResult is the outcome of grading one answer.
type GradeResult struct {
	IsCorrect     *bool
	PointsAwarded float64
}

func correct(q Question) GradeResult {
	t := true
	return GradeResult{IsCorrect: &t, PointsAwarded: float64(q.Points)}
}

func incorrect() GradeResult {
	f := false
	return GradeResult{IsCorrect: &f}
}

// AutoGrade grades `raw` against `q`. Objective types get full points or none; free text stays ungraded.
// An empty response is always incorrect, whatever the type.
func AutoGrade(q Question, raw string) GradeResult {
	if strings.TrimSpace(raw) == "" {
		return incorrect()
	}

	var ok bool
	switch q.Type {
	case TypeScale, TypeYesNo:
		ok = q.CorrectAnswer != "" && raw == q.CorrectAnswer
	case TypeMultipleChoice, TypeImageChoice:
		ref := core.CleanString(q.ReferenceAnswer(), true /* lower */)
		ok = ref != "" && core.CleanString(raw, true /* lower */) == ref
	case TypeWordOrder:
		ok = sameOrder(splitTokens(raw), splitTokens(q.CorrectAnswer))
	case TypeFreeText:
		return GradeResult{}
	}

	if ok {
		return correct(q)
	}
	return incorrect()
}

func sameOrder(got, want []string) bool {
	if len(want) == 0 || len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// ReviewInput is what a reviewer submits for one answer. At least one field must be set.
type ReviewInput struct {
	IsCorrect *bool    `json:"is_correct"`
	Points    *float64 `json:"points"`
}

func (ri ReviewInput) Empty() bool {
	return ri.IsCorrect == nil && ri.Points == nil
}

// ClampPoints forces `points` into [0, max]. NaN counts as 0.
func ClampPoints(points float64, max int) float64 {
	switch {
	case math.IsNaN(points), points < 0:
		return 0
	case points > float64(max):
		return float64(max)
	default:
		return points
	}
}

// ManualGrade turns a reviewer's input into a grade for `q`. Out-of-range points are clamped, never rejected.
// A missing point value follows the flag (full or none); a missing flag follows the points (any credit is correct).
func ManualGrade(q Question, in ReviewInput) GradeResult {
	var res GradeResult

	switch {
	case in.Points != nil:
		res.PointsAwarded = ClampPoints(*in.Points, q.Points)
	case in.IsCorrect != nil && *in.IsCorrect:
		res.PointsAwarded = float64(q.Points)
	}

	if in.IsCorrect != nil {
		flag := *in.IsCorrect
		res.IsCorrect = &flag
	} else {
		flag := res.PointsAwarded > 0
		res.IsCorrect = &flag
	}
	return res
}

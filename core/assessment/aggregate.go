package assessment

import (
	"math"
	"time"
)

// Aggregate recomputes the scores of `sub` from its answers and moves it to its next state:
// resolved when every answer is graded, awaiting review otherwise.
// Running it again over the same answers changes nothing.
func Aggregate(sub *Submission, detail TemplateDetail, settings Settings, now time.Time) error {
	var final float64
	for i := range sub.Answers {
		a := &sub.Answers[i]
		if q, ok := detail.Question(a.QuestionID); ok {
			a.PointsAwarded = ClampPoints(a.PointsAwarded, q.Points)
		}
		final += a.PointsAwarded
	}
	sub.FinalScore = final
	sub.MaxScore = detail.MaxScore()
	sub.Percentage = Percentage(final, sub.MaxScore)

	if sub.UngradedCount() > 0 {
		return sub.awaitReview()
	}
	return sub.resolve(settings.PassThreshold, now)
}

// Percentage is round(final / max * 100), 0 when max is 0.
func Percentage(final float64, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(final / float64(max) * 100))
}

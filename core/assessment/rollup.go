package assessment

import (
	"math"
	"sort"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/training"
)

// AreaScore is the blended competency of a volunteer in one topic area. It is computed on read, never stored.
type AreaScore struct {
	TopicArea          string   `json:"topic_area"`
	SelfAssessment     *int     `json:"self_assessment"` // percentage of the latest approved submission
	SubmissionID       string   `json:"submission_id,omitempty"`
	TrainingCompletion *float64 `json:"training_completion"` // completed / assigned modules
	TrainingAssigned   int      `json:"training_assigned"`
	TrainingCompleted  int      `json:"training_completed"`
	Score              int      `json:"score"`
	NeedsTraining      bool     `json:"needs_training"`
}

// ScoreByArea blends, per topic area, the latest approved submission percentage with the training completion ratio:
// (1-w)*self + w*training*100 where w is Settings.TrainingWeight. An area missing one side uses the other alone.
func ScoreByArea(submissions []Submission, progress []training.AreaProgress, settings Settings) []AreaScore {
	scores := make(map[string]*AreaScore)
	get := func(area string) *AreaScore {
		sc, ok := scores[area]
		if !ok {
			sc = &AreaScore{TopicArea: area}
			scores[area] = sc
		}
		return sc
	}

	latest := make(map[string]Submission)
	for _, sub := range submissions {
		if sub.Status != StatusApproved {
			continue
		}
		if prev, ok := latest[sub.TopicArea]; !ok || sub.CompletedAt.After(prev.CompletedAt) {
			latest[sub.TopicArea] = sub
		}
	}
	for area, sub := range latest {
		sc := get(area)
		pct := sub.Percentage
		sc.SelfAssessment = &pct
		sc.SubmissionID = sub.ID
	}

	for _, p := range progress {
		if p.Assigned == 0 {
			continue
		}
		sc := get(p.TopicArea)
		ratio := float64(p.Completed) / float64(p.Assigned)
		sc.TrainingCompletion = &ratio
		sc.TrainingAssigned = p.Assigned
		sc.TrainingCompleted = p.Completed
	}

	out := make([]AreaScore, 0, len(scores))
	for _, sc := range scores {
		sc.Score = blend(sc.SelfAssessment, sc.TrainingCompletion, settings.TrainingWeight)
		sc.NeedsTraining = sc.Score < settings.NeedsTrainingThreshold
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TopicArea < out[j].TopicArea })
	return out
}

func blend(self *int, trainingRatio *float64, weight float64) int {
	switch {
	case self != nil && trainingRatio != nil:
		return int(math.Round((1-weight)*float64(*self) + weight*(*trainingRatio)*100))
	case self != nil:
		return *self
	case trainingRatio != nil:
		return int(math.Round(*trainingRatio * 100))
	default:
		return 0
	}
}

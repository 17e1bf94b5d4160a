package inspect

import "github.com/RecoveryAshes/webqa-inspector/internal/model"

// scoreWeights deducts points from a page's hygiene score (spec §4.14).
// Deliberately distinct from model.SeverityWeights, which ranks issues
// rather than scoring a page.
var scoreWeights = map[model.Severity]float64{
	model.SeverityCritical: 20,
	model.SeverityHigh:     10,
	model.SeverityMedium:   5,
	model.SeverityLow:      2,
}

// Scorer computes per-page and global hygiene scores.
type Scorer struct {
	baseScore float64
}

// NewScorer builds a Scorer with the default 100-point base score.
func NewScorer() *Scorer {
	return &Scorer{baseScore: 100}
}

// ScorePage deducts scoreWeights for every issue from the base score,
// floored at zero.
func (s *Scorer) ScorePage(issues []model.Issue) float64 {
	score := s.baseScore
	for _, issue := range issues {
		weight, ok := scoreWeights[issue.Severity]
		if !ok {
			weight = 1
		}
		score -= weight
	}
	if score < 0 {
		return 0
	}
	return score
}

// GlobalScore is the mean of every page's score, 0 for an empty set.
func (s *Scorer) GlobalScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, sc := range scores {
		sum += sc
	}
	return sum / float64(len(scores))
}

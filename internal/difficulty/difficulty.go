// Package difficulty recommends the next difficulty tier from a score.
package difficulty

import (
	"fmt"

	"github.com/abhisek/quizcraft/internal/quiz"
)

// Thresholds bound the medium band. Scores below EasyBelow map to easy,
// scores above HardAbove map to hard, and both bounds are medium.
type Thresholds struct {
	EasyBelow float64
	HardAbove float64
}

// DefaultThresholds returns the standard 40/75 split.
func DefaultThresholds() Thresholds {
	return Thresholds{EasyBelow: 40, HardAbove: 75}
}

// Validate checks that both bounds are percentages and ordered.
func (t Thresholds) Validate() error {
	if t.EasyBelow < 0 || t.EasyBelow > 100 {
		return fmt.Errorf("easy threshold %v outside 0-100", t.EasyBelow)
	}
	if t.HardAbove < 0 || t.HardAbove > 100 {
		return fmt.Errorf("hard threshold %v outside 0-100", t.HardAbove)
	}
	if t.EasyBelow > t.HardAbove {
		return fmt.Errorf("easy threshold %v above hard threshold %v", t.EasyBelow, t.HardAbove)
	}
	return nil
}

// Adjuster maps attempt scores to a recommended tier.
type Adjuster struct {
	Thresholds Thresholds
}

// New creates an Adjuster.
func New(t Thresholds) *Adjuster {
	return &Adjuster{Thresholds: t}
}

// Adjust returns the tier to recommend after scoring scorePercent.
func (a *Adjuster) Adjust(scorePercent float64) quiz.Difficulty {
	switch {
	case scorePercent < a.Thresholds.EasyBelow:
		return quiz.Easy
	case scorePercent > a.Thresholds.HardAbove:
		return quiz.Hard
	default:
		return quiz.Medium
	}
}

// internal/app/matching/evaluator.go
package matching

import (
	"fmt"
	"math"

	"github.com/AntonioKOD/grounded-gems-matchmaker/internal/domain/models"
)

// Epsilon bounds floating-point comparisons so equal scores are not split by
// rounding, keeping tie-breaks order-independent.
const Epsilon = 1e-9

// ageDecayYears is how far outside the session's age range a participant can
// be before the age component bottoms out at zero.
const ageDecayYears = 20.0

// Weights distributes the soft-constraint components of a pair score. The
// components must sum to 1.0 so scores stay in [0,1].
type Weights struct {
	Skill        float64
	Age          float64
	Availability float64
}

// DefaultWeights is the documented default split: skill dominates, age and
// availability share the rest.
var DefaultWeights = Weights{Skill: 0.5, Age: 0.25, Availability: 0.25}

// Validate rejects weight sets that do not sum to 1.0 or carry negative
// components.
func (w Weights) Validate() error {
	if w.Skill < 0 || w.Age < 0 || w.Availability < 0 {
		return fmt.Errorf("weights must be non-negative: %+v", w)
	}
	if sum := w.Skill + w.Age + w.Availability; math.Abs(sum-1.0) > Epsilon {
		return fmt.Errorf("weights must sum to 1.0, got %g", sum)
	}
	return nil
}

// Evaluator scores participant pairs under a session's preferences.
type Evaluator struct {
	weights Weights
}

// NewEvaluator builds an evaluator with the given weights. Callers validate
// weights at config time; invalid weights fall back to the default split.
func NewEvaluator(w Weights) *Evaluator {
	if w.Validate() != nil {
		w = DefaultWeights
	}
	return &Evaluator{weights: w}
}

// Blocked reports whether a score marks a hard-constraint violation.
func Blocked(score float64) bool { return math.IsInf(score, -1) }

// Score computes the pairwise compatibility of a and b in [0,1], or negative
// infinity when a hard constraint is violated. Score is symmetric.
func (e *Evaluator) Score(a, b models.Participant, prefs models.Preferences) float64 {
	if genderBlocked(a, b, prefs) {
		return math.Inf(-1)
	}

	overlap := availabilityFraction(a, b)
	if prefs.AvailabilityRequired && overlap <= 0 {
		return math.Inf(-1)
	}

	score := e.weights.Skill*skillScore(a, b) +
		e.weights.Age*ageScore(a, b, prefs.AgeRange) +
		e.weights.Availability*overlap
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// genderBlocked applies the exclusive gender constraints: a session-wide
// same-gender preference, or either participant's own exclusive preference,
// rules out any cross-gender pairing.
func genderBlocked(a, b models.Participant, prefs models.Preferences) bool {
	if a.Gender == b.Gender {
		return false
	}
	if prefs.GenderPreference.Exclusive() {
		return true
	}
	return a.GenderPreference.Exclusive() || b.GenderPreference.Exclusive()
}

// skillScore is 1 for identical levels, decaying linearly across the full
// skill range.
func skillScore(a, b models.Participant) float64 {
	dist := math.Abs(float64(a.SkillLevel - b.SkillLevel))
	return 1.0 - dist/float64(models.SkillLevelRange)
}

// ageScore is 1 when both ages sit inside the session's range, decaying with
// the distance of the farthest outlier. Sessions without an age range treat
// every pair as a perfect age fit.
func ageScore(a, b models.Participant, r *models.AgeRange) float64 {
	if r == nil {
		return 1.0
	}
	dist := float64(ageDistance(a.Age, *r) + ageDistance(b.Age, *r))
	if dist <= 0 {
		return 1.0
	}
	score := 1.0 - dist/ageDecayYears
	if score < 0 {
		return 0
	}
	return score
}

func ageDistance(age int, r models.AgeRange) int {
	switch {
	case age < r.Min:
		return r.Min - age
	case age > r.Max:
		return age - r.Max
	default:
		return 0
	}
}

// availabilityFraction is the shared availability of a pair as a fraction of
// the smaller participant's total availability. Two participants who both
// declared nothing are treated as fully flexible.
func availabilityFraction(a, b models.Participant) float64 {
	totalA := slotMinutes(a.Availability)
	totalB := slotMinutes(b.Availability)
	if totalA == 0 && totalB == 0 {
		return 1.0
	}
	if totalA == 0 || totalB == 0 {
		return 0
	}

	shared := 0
	for _, sa := range a.Availability {
		for _, sb := range b.Availability {
			shared += sa.Overlap(sb)
		}
	}

	smaller := totalA
	if totalB < smaller {
		smaller = totalB
	}
	return float64(shared) / float64(smaller)
}

func slotMinutes(slots []models.AvailabilitySlot) int {
	total := 0
	for _, s := range slots {
		total += s.Minutes()
	}
	return total
}

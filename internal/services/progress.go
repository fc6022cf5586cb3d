package services

import (
	"math"

	"physioplan/internal/models"
)

// RecomputeProgress derives the aggregate completion percentage of a plan
// from its items: round(100 * completed sets / total sets), clamped to
// [0,100], and 0 for an empty item list. It is recomputed in full on every
// plan write; it is never adjusted incrementally from a delta, so the
// aggregate can never drift from the per-item truth.
func RecomputeProgress(items []models.ExerciseItem) int {
	totalSets := 0
	completedSets := 0
	for _, it := range items {
		totalSets += it.Sets
		completedSets += it.CompletedSets
	}
	if totalSets <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(completedSets) / float64(totalSets)))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

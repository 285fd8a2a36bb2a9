package fairness

import (
	"sort"

	"github.com/evenly-app/evenly/internal/model"
)

// Share-delta threshold beyond which a pair of adults is considered
// imbalanced enough to suggest a swap.
const swapThreshold = 0.10

// MaxSuggestions caps the number of swap proposals returned.
const MaxSuggestions = 3

// SwapSuggestion proposes moving one scheduled assignment each way between
// an overloaded and an underloaded adult. ProjectedScore is the fairness
// score recomputed with the swap applied, not an estimate.
type SwapSuggestion struct {
	FromPersonID     int64   `json:"from_person_id"`
	ToPersonID       int64   `json:"to_person_id"`
	FromOccurrenceID int64   `json:"from_occurrence_id"`
	ToOccurrenceID   int64   `json:"to_occurrence_id"`
	ProjectedScore   float64 `json:"projected_score"`
	ScoreGain        float64 `json:"score_gain"`
}

// SuggestSwaps is a best-effort heuristic, not an exact optimization. For
// each ordered pair where one adult sits more than swapThreshold above
// target and the other more than swapThreshold below, it swaps the
// overloaded adult's heaviest scheduled assignment with the underloaded
// adult's lightest and re-scores the whole split. Only swaps that improve
// the score make the list.
func SuggestSwaps(assignments []Assignment, people []model.Person, cfg Config) []SwapSuggestion {
	base := ComputeFairness(ComputeSplit(assignments, people), people, cfg)

	var suggestions []SwapSuggestion
	for overID, over := range base.Shares {
		if over.DeltaShare <= swapThreshold {
			continue
		}
		for underID, under := range base.Shares {
			if overID == underID || under.DeltaShare >= -swapThreshold {
				continue
			}

			give := pickAssignment(assignments, overID, true)
			take := pickAssignment(assignments, underID, false)
			if give == nil {
				continue
			}

			swapped := make([]Assignment, len(assignments))
			copy(swapped, assignments)
			for i := range swapped {
				if swapped[i].OccurrenceID == give.OccurrenceID {
					swapped[i].PersonID = underID
				} else if take != nil && swapped[i].OccurrenceID == take.OccurrenceID {
					swapped[i].PersonID = overID
				}
			}

			projected := ComputeFairness(ComputeSplit(swapped, people), people, cfg)
			gain := projected.Score - base.Score
			if gain <= 0 {
				continue
			}

			sug := SwapSuggestion{
				FromPersonID:     overID,
				ToPersonID:       underID,
				FromOccurrenceID: give.OccurrenceID,
				ProjectedScore:   projected.Score,
				ScoreGain:        gain,
			}
			if take != nil {
				sug.ToOccurrenceID = take.OccurrenceID
			}
			suggestions = append(suggestions, sug)
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].ScoreGain != suggestions[j].ScoreGain {
			return suggestions[i].ScoreGain > suggestions[j].ScoreGain
		}
		return suggestions[i].FromOccurrenceID < suggestions[j].FromOccurrenceID
	})
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions
}

// pickAssignment selects the heaviest (or lightest) scheduled assignment
// belonging to the person. Returns nil when they have none.
func pickAssignment(assignments []Assignment, personID int64, heaviest bool) *Assignment {
	var best *Assignment
	for i := range assignments {
		a := &assignments[i]
		if a.PersonID != personID || a.Status != model.StatusScheduled {
			continue
		}
		if best == nil {
			best = a
			continue
		}
		if heaviest && a.Points() > best.Points() {
			best = a
		}
		if !heaviest && a.Points() < best.Points() {
			best = a
		}
	}
	return best
}

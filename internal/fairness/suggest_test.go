package fairness

import (
	"testing"

	"github.com/evenly-app/evenly/internal/model"
)

func TestSuggestSwapsImbalanced(t *testing.T) {
	people := []model.Person{adult(1, 200), adult(2, 200)}
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 60, Difficulty: 3}, // 96 pts
		{OccurrenceID: 2, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 10, Difficulty: 1}, // 10 pts
		{OccurrenceID: 3, PersonID: 2, Status: model.StatusScheduled, Date: monday, DurationMinutes: 10, Difficulty: 1}, // 10 pts
	}

	base := ComputeFairness(ComputeSplit(assignments, people), people, DefaultConfig())
	suggestions := SuggestSwaps(assignments, people, DefaultConfig())

	if len(suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(suggestions))
	}
	s := suggestions[0]
	if s.FromPersonID != 1 || s.ToPersonID != 2 {
		t.Errorf("swap direction = %d -> %d, want 1 -> 2", s.FromPersonID, s.ToPersonID)
	}
	if s.FromOccurrenceID != 1 {
		t.Errorf("swap gives occurrence %d, want the heaviest (1)", s.FromOccurrenceID)
	}
	if s.ProjectedScore <= base.Score {
		t.Errorf("projected score %f should beat base %f", s.ProjectedScore, base.Score)
	}
	if s.ScoreGain <= 0 {
		t.Errorf("score gain = %f, want > 0", s.ScoreGain)
	}
}

func TestSuggestSwapsBalanced(t *testing.T) {
	people := []model.Person{adult(1, 200), adult(2, 200)}
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 30, Difficulty: 1},
		{OccurrenceID: 2, PersonID: 2, Status: model.StatusScheduled, Date: monday, DurationMinutes: 30, Difficulty: 1},
	}

	if got := SuggestSwaps(assignments, people, DefaultConfig()); len(got) != 0 {
		t.Errorf("suggestions = %d, want 0 for a balanced split", len(got))
	}
}

func TestSuggestSwapsCapped(t *testing.T) {
	// Four adults: two heavily over target, two with nothing.
	people := []model.Person{adult(1, 100), adult(2, 100), adult(3, 100), adult(4, 100)}
	assignments := []Assignment{
		{OccurrenceID: 1, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 60, Difficulty: 3},
		{OccurrenceID: 2, PersonID: 1, Status: model.StatusScheduled, Date: monday, DurationMinutes: 40, Difficulty: 2},
		{OccurrenceID: 3, PersonID: 2, Status: model.StatusScheduled, Date: monday, DurationMinutes: 60, Difficulty: 3},
		{OccurrenceID: 4, PersonID: 2, Status: model.StatusScheduled, Date: monday, DurationMinutes: 40, Difficulty: 2},
	}

	suggestions := SuggestSwaps(assignments, people, DefaultConfig())
	if len(suggestions) > MaxSuggestions {
		t.Errorf("suggestions = %d, want at most %d", len(suggestions), MaxSuggestions)
	}
	for _, s := range suggestions {
		if s.ScoreGain <= 0 {
			t.Errorf("suggestion with non-positive gain %f", s.ScoreGain)
		}
	}
}

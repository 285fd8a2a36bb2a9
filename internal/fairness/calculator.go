package fairness

import (
	"math"
	"time"

	"github.com/evenly-app/evenly/internal/model"
)

// Point weights by task difficulty.
const (
	weightLight  = 1.0
	weightMedium = 1.3
	weightHard   = 1.6
)

// Bucket thresholds on a single assignment's point value.
const (
	hardThreshold  = 35
	lightThreshold = 15
)

// DefaultEveningCap is the per-person weeknight point cap used when the
// household has not configured one.
const DefaultEveningCap = 25

// Config carries the tunables for fairness scoring. It is passed explicitly;
// nothing in this package reads ambient state.
type Config struct {
	EveningPointsCap int
}

func DefaultConfig() Config {
	return Config{EveningPointsCap: DefaultEveningCap}
}

// Assignment is one occurrence joined with the task fields fairness needs.
type Assignment struct {
	OccurrenceID    int64
	TaskID          int64
	PersonID        int64
	Status          model.OccurrenceStatus
	Date            time.Time
	DurationMinutes int
	Difficulty      int // 1..3
	CoopRole        string
	Disliked        bool
}

// Points returns the difficulty- and coop-weighted point value of the
// assignment, rounded to the nearest integer.
func (a Assignment) Points() int {
	weight := weightLight
	switch a.Difficulty {
	case 2:
		weight = weightMedium
	case 3:
		weight = weightHard
	}
	coop := 1.0
	if a.CoopRole == model.CoopRoleAssist {
		coop = 0.5
	}
	return int(math.Round(float64(a.DurationMinutes) * weight * coop))
}

// PersonStats accumulates one adult's workload totals.
type PersonStats struct {
	PersonID int64 `json:"person_id"`
	Minutes  int   `json:"minutes"`
	Points   int   `json:"points"`
	Hard     int   `json:"hard"`
	Medium   int   `json:"medium"`
	Light    int   `json:"light"`
	Disliked int   `json:"disliked"`

	// Monday..Friday weeknight slots. Weekend assignments count toward
	// Minutes and Points but not here.
	EveningPoints [5]int `json:"evening_points"`
	EveningCount  [5]int `json:"evening_count"`
}

// PersonShare is one adult's row in a fairness result.
type PersonShare struct {
	PersonID      int64   `json:"person_id"`
	ActualMinutes int     `json:"actual_minutes"`
	ActualPoints  int     `json:"actual_points"`
	TargetMinutes float64 `json:"target_minutes"`
	TargetPoints  float64 `json:"target_points"`
	ActualShare   float64 `json:"actual_share"`
	TargetShare   float64 `json:"target_share"`
	DeltaMinutes  float64 `json:"delta_minutes"`
	DeltaShare    float64 `json:"delta_share"` // actual − target
}

// Result is the fairness score plus per-adult shares and contributor
// counters.
type Result struct {
	Score               float64               `json:"score"`
	Shares              map[int64]PersonShare `json:"shares"`
	EveningsOverCap     map[int64]int         `json:"evenings_over_cap"`
	StackingViolations  map[int64]int         `json:"stacking_violations"`
	DislikedAssignments map[int64]int         `json:"disliked_assignments"`
}

// ComputeSplit aggregates scheduled assignments into per-adult stats. Only
// assignments with status "scheduled" count toward load, and only adults
// accumulate stats.
func ComputeSplit(assignments []Assignment, people []model.Person) map[int64]*PersonStats {
	adults := make(map[int64]bool, len(people))
	stats := make(map[int64]*PersonStats)
	for _, p := range people {
		if p.IsAdult() {
			adults[p.ID] = true
			stats[p.ID] = &PersonStats{PersonID: p.ID}
		}
	}

	for _, a := range assignments {
		if a.Status != model.StatusScheduled || !adults[a.PersonID] {
			continue
		}
		st := stats[a.PersonID]
		points := a.Points()

		st.Minutes += a.DurationMinutes
		st.Points += points
		switch {
		case points > hardThreshold:
			st.Hard++
		case points >= lightThreshold:
			st.Medium++
		default:
			st.Light++
		}
		if a.Disliked {
			st.Disliked++
		}
		if slot, ok := weeknightSlot(a.Date); ok {
			st.EveningPoints[slot] += points
			st.EveningCount[slot]++
		}
	}
	return stats
}

// weeknightSlot maps Monday..Friday to 0..4; weekend dates have no slot.
func weeknightSlot(date time.Time) (int, bool) {
	switch wd := date.Weekday(); wd {
	case time.Saturday, time.Sunday:
		return 0, false
	default:
		return int(wd) - 1, true
	}
}

// ComputeFairness turns per-adult stats into shares, deltas, contributor
// counters, and the 0..100 fairness score. Target shares come from weekly
// time budgets, with an equal split when no adult has a budget. With zero
// assignments all deltas are zero and the score is 100.
func ComputeFairness(stats map[int64]*PersonStats, people []model.Person, cfg Config) *Result {
	res := &Result{
		Shares:              make(map[int64]PersonShare),
		EveningsOverCap:     make(map[int64]int),
		StackingViolations:  make(map[int64]int),
		DislikedAssignments: make(map[int64]int),
	}

	var adults []model.Person
	for _, p := range people {
		if p.IsAdult() {
			adults = append(adults, p)
		}
	}
	if len(adults) == 0 {
		res.Score = 100
		return res
	}

	totalBudget := 0
	totalMinutes := 0
	totalPoints := 0
	for _, p := range adults {
		totalBudget += p.WeeklyTimeBudget
		if st := stats[p.ID]; st != nil {
			totalMinutes += st.Minutes
			totalPoints += st.Points
		}
	}

	pointCap := cfg.EveningPointsCap
	if pointCap <= 0 {
		pointCap = DefaultEveningCap
	}

	sumAbsDelta := 0.0
	for _, p := range adults {
		st := stats[p.ID]
		if st == nil {
			st = &PersonStats{PersonID: p.ID}
		}

		targetShare := 1.0 / float64(len(adults))
		if totalBudget > 0 {
			targetShare = float64(p.WeeklyTimeBudget) / float64(totalBudget)
		}

		share := PersonShare{
			PersonID:      p.ID,
			ActualMinutes: st.Minutes,
			ActualPoints:  st.Points,
			TargetShare:   targetShare,
			TargetMinutes: targetShare * float64(totalMinutes),
			TargetPoints:  targetShare * float64(totalPoints),
		}
		if totalPoints > 0 {
			share.ActualShare = float64(st.Points) / float64(totalPoints)
			share.DeltaShare = share.ActualShare - share.TargetShare
		}
		share.DeltaMinutes = float64(st.Minutes) - share.TargetMinutes
		if totalMinutes == 0 {
			share.DeltaMinutes = 0
		}
		sumAbsDelta += math.Abs(share.DeltaShare)
		res.Shares[p.ID] = share

		res.DislikedAssignments[p.ID] = st.Disliked
		for slot := range st.EveningPoints {
			if st.EveningPoints[slot] > pointCap {
				res.EveningsOverCap[p.ID]++
			}
			if st.EveningCount[slot] >= 3 {
				res.StackingViolations[p.ID]++
			}
		}
	}

	res.Score = ScoreFromDeltas(sumAbsDelta)
	return res
}

// ScoreFromDeltas maps the summed absolute share deltas onto the 0..100
// score: clamp(0, 100, 100 − 100·Σ|Δ|).
func ScoreFromDeltas(sumAbsDelta float64) float64 {
	score := 100 - 100*sumAbsDelta
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

package fairness

import (
	"math"

	"github.com/evenly-app/evenly/internal/model"
)

// Points credited per impacted night of a consented disruption.
const pointsPerNight = 5

// Adjustment records how much one person's over-target delta was softened
// by a disruption, expressed in points.
type Adjustment struct {
	DisruptionID int64   `json:"disruption_id"`
	PersonID     int64   `json:"person_id"`
	Points       float64 `json:"points"`
}

// Adjust softens over-target share deltas for people affected by consented
// disruptions and recomputes the score from the adjusted deltas. The input
// result is not mutated. Disruptions missing either consent flag are
// ignored here; callers surface them for display separately.
func Adjust(res *Result, disruptions []model.Disruption) (*Result, []Adjustment) {
	adjusted := cloneResult(res)
	var adjustments []Adjustment

	for _, d := range disruptions {
		if !d.Consented() {
			continue
		}
		totalAdjustment := float64(pointsPerNight * d.NightsImpacted)
		for _, personID := range d.AffectedPersonIDs {
			share, ok := adjusted.Shares[personID]
			if !ok || share.DeltaShare <= 0 {
				continue
			}
			reduction := math.Min(share.DeltaShare, totalAdjustment/100)
			share.DeltaShare -= reduction
			adjusted.Shares[personID] = share
			adjustments = append(adjustments, Adjustment{
				DisruptionID: d.ID,
				PersonID:     personID,
				Points:       reduction * 100,
			})
		}
	}

	sumAbsDelta := 0.0
	for _, share := range adjusted.Shares {
		sumAbsDelta += math.Abs(share.DeltaShare)
	}
	adjusted.Score = ScoreFromDeltas(sumAbsDelta)
	return adjusted, adjustments
}

func cloneResult(res *Result) *Result {
	out := &Result{
		Score:               res.Score,
		Shares:              make(map[int64]PersonShare, len(res.Shares)),
		EveningsOverCap:     make(map[int64]int, len(res.EveningsOverCap)),
		StackingViolations:  make(map[int64]int, len(res.StackingViolations)),
		DislikedAssignments: make(map[int64]int, len(res.DislikedAssignments)),
	}
	for k, v := range res.Shares {
		out.Shares[k] = v
	}
	for k, v := range res.EveningsOverCap {
		out.EveningsOverCap[k] = v
	}
	for k, v := range res.StackingViolations {
		out.StackingViolations[k] = v
	}
	for k, v := range res.DislikedAssignments {
		out.DislikedAssignments[k] = v
	}
	return out
}

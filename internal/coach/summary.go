package coach

import (
	"math"
	"time"

	"github.com/HendryAvila/liftcoach/internal/catalog"
	"github.com/HendryAvila/liftcoach/internal/store"
)

// RecentWindow is the trailing window for Summary.Recent7DaysVolume.
const RecentWindow = 7 * 24 * time.Hour

// ExerciseStat aggregates one exercise's sets.
type ExerciseStat struct {
	ExerciseID  catalog.ID `json:"exerciseId"`
	Name        string     `json:"name"`
	BodyPart    string     `json:"bodyPart"`
	Sets        int        `json:"sets"`
	BestWeight  float64    `json:"bestWeight"`
	TotalVolume float64    `json:"totalVolume"`
}

// Summary aggregates all of a user's sets.
type Summary struct {
	TotalSets         int            `json:"totalSets"`
	TotalVolume       float64        `json:"totalVolume"`
	Recent7DaysVolume float64        `json:"recent7DaysVolume"`
	ExerciseStats     []ExerciseStat `json:"exerciseStats"`
}

// Summarize computes totals over sets. Per-exercise stats are listed in the
// order each exercise was first logged; names are resolved against
// exercises. Totals are rounded to one decimal.
func Summarize(sets []store.LoggedSet, exercises []catalog.Exercise, now time.Time) Summary {
	idx := catalog.NewIndex(exercises)
	cutoff := now.Add(-RecentWindow)

	var (
		total, recent float64
		order         []string
		stats         = make(map[string]*ExerciseStat)
	)
	for _, s := range sets {
		volume := s.Volume()
		total += volume
		if !s.Time.Before(cutoff) {
			recent += volume
		}

		key := s.ExerciseID.Key()
		st, ok := stats[key]
		if !ok {
			name, part := idx.Describe(s.ExerciseID)
			st = &ExerciseStat{ExerciseID: s.ExerciseID, Name: name, BodyPart: part}
			stats[key] = st
			order = append(order, key)
		}
		st.Sets++
		st.TotalVolume += volume
		if s.Weight > st.BestWeight {
			st.BestWeight = s.Weight
		}
	}

	out := Summary{
		TotalSets:         len(sets),
		TotalVolume:       round1(total),
		Recent7DaysVolume: round1(recent),
		ExerciseStats:     make([]ExerciseStat, 0, len(order)),
	}
	for _, key := range order {
		out.ExerciseStats = append(out.ExerciseStats, *stats[key])
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// HistoryItem is one set as shown in the history list.
type HistoryItem struct {
	Time         time.Time  `json:"time"`
	ExerciseID   catalog.ID `json:"exerciseId"`
	ExerciseName string     `json:"exerciseName"`
	BodyPart     string     `json:"bodyPart"`
	Weight       float64    `json:"weight"`
	Reps         int        `json:"reps"`
	Difficulty   int        `json:"difficulty"`
}

// History lists sets newest first.
func History(sets []store.LoggedSet, exercises []catalog.Exercise) []HistoryItem {
	idx := catalog.NewIndex(exercises)
	sorted := newestFirst(sets)

	items := make([]HistoryItem, 0, len(sorted))
	for _, s := range sorted {
		name, part := idx.Describe(s.ExerciseID)
		items = append(items, HistoryItem{
			Time:         s.Time,
			ExerciseID:   s.ExerciseID,
			ExerciseName: name,
			BodyPart:     part,
			Weight:       s.Weight,
			Reps:         s.Reps,
			Difficulty:   s.Difficulty,
		})
	}
	return items
}

// DetectPR compares weight against the best prior weight for exerciseID.
// prior must not include the set being judged. A set is a PR when it is
// strictly heavier than every earlier set and heavier than zero.
func DetectPR(prior []store.LoggedSet, exerciseID catalog.ID, weight float64) (isPR bool, prevBest float64) {
	for _, s := range prior {
		if s.ExerciseID.Equal(exerciseID) && s.Weight > prevBest {
			prevBest = s.Weight
		}
	}
	return weight > prevBest && weight > 0, prevBest
}

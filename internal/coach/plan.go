package coach

import (
	"math"
	"sort"
	"time"

	"github.com/HendryAvila/liftcoach/internal/catalog"
	"github.com/HendryAvila/liftcoach/internal/store"
)

const (
	firstAttemptFactor = 0.90
	progressFactor     = 1.05
	regressFactor      = 0.95
	holdFactor         = 1.00

	// easyDifficulty and hardDifficulty bound the difficulty scale
	// (1 = easiest) for progressing and regressing the load.
	easyDifficulty = 2
	hardDifficulty = 4

	weightStep = 0.5
)

// PlanLine is the recommendation for one exercise. The Last* fields
// describe the reference set and are nil when the exercise was never logged.
type PlanLine struct {
	ID              catalog.ID `json:"id"`
	Name            string     `json:"name"`
	BodyPart        string     `json:"bodyPart"`
	MinReps         int        `json:"minReps"`
	MaxReps         int        `json:"maxReps"`
	SuggestedWeight float64    `json:"suggestedWeight"`
	LastWeight      *float64   `json:"lastWeight"`
	LastReps        *int       `json:"lastReps"`
	LastDifficulty  *int       `json:"lastDifficulty"`
}

// Plan is today's recommendation across the merged catalog.
type Plan struct {
	Score     int        `json:"fatigueScore"`
	Readiness Readiness  `json:"readiness"`
	Lines     []PlanLine `json:"plan"`
}

// BuildPlan produces one line per exercise, in catalog order.
//
// The suggestion starts from the latest set (or 90% of the base weight for
// a first attempt), moves ±5% depending on how that set went, applies the
// day's readiness factor unless the exercise was already trained on now's
// calendar date, and is rounded to the nearest 0.5.
func BuildPlan(exercises []catalog.Exercise, sets []store.LoggedSet, checkin *store.Checkin, now time.Time) Plan {
	score := DefaultScore
	if checkin != nil {
		score = checkin.Score
	}
	readiness := Band(score)

	byExercise := groupByExercise(sets)
	lines := make([]PlanLine, 0, len(exercises))
	for _, ex := range exercises {
		lines = append(lines, planLine(ex, byExercise[ex.ID.Key()], readiness, now))
	}

	return Plan{Score: score, Readiness: readiness, Lines: lines}
}

func planLine(ex catalog.Exercise, sets []store.LoggedSet, readiness Readiness, now time.Time) PlanLine {
	line := PlanLine{
		ID:       ex.ID,
		Name:     ex.Name,
		BodyPart: ex.BodyPart,
		MinReps:  ex.MinReps,
		MaxReps:  ex.MaxReps,
	}

	var suggested float64
	if ref, ok := latest(sets); ok {
		suggested = ref.Weight * adjustment(ref, ex.MaxReps)
		weight, reps, difficulty := ref.Weight, ref.Reps, ref.Difficulty
		line.LastWeight = &weight
		line.LastReps = &reps
		line.LastDifficulty = &difficulty
	} else {
		suggested = ex.BaseWeight * firstAttemptFactor
	}

	if !trainedOn(sets, now) {
		suggested *= readiness.Factor
	}
	line.SuggestedWeight = RoundWeight(suggested)
	return line
}

// adjustment is the progressive-overload factor for the reference set.
func adjustment(ref store.LoggedSet, maxReps int) float64 {
	switch {
	case ref.Difficulty <= easyDifficulty && ref.Reps >= maxReps:
		return progressFactor
	case ref.Difficulty >= hardDifficulty:
		return regressFactor
	default:
		return holdFactor
	}
}

// RoundWeight rounds w to the nearest 0.5, resolving ties to the even
// half-step.
func RoundWeight(w float64) float64 {
	return math.RoundToEven(w/weightStep) * weightStep
}

// latest returns the most recent set by timestamp. Among sets with the same
// timestamp the earliest logged wins.
func latest(sets []store.LoggedSet) (store.LoggedSet, bool) {
	if len(sets) == 0 {
		return store.LoggedSet{}, false
	}
	sorted := newestFirst(sets)
	return sorted[0], true
}

// newestFirst returns a sorted copy; the input is left untouched.
func newestFirst(sets []store.LoggedSet) []store.LoggedSet {
	sorted := make([]store.LoggedSet, len(sets))
	copy(sorted, sets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.After(sorted[j].Time)
	})
	return sorted
}

// trainedOn reports whether any set falls on now's calendar date in now's
// location.
func trainedOn(sets []store.LoggedSet, now time.Time) bool {
	y, m, d := now.Date()
	for _, s := range sets {
		sy, sm, sd := s.Time.In(now.Location()).Date()
		if sy == y && sm == m && sd == d {
			return true
		}
	}
	return false
}

func groupByExercise(sets []store.LoggedSet) map[string][]store.LoggedSet {
	out := make(map[string][]store.LoggedSet)
	for _, s := range sets {
		key := s.ExerciseID.Key()
		out[key] = append(out[key], s)
	}
	return out
}

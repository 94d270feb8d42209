// Package coach turns training history and readiness into recommendations.
//
// Everything here is pure: results depend only on the exercises, sets,
// check-in and clock value passed in. Callers take a consistent snapshot
// from the store first.
package coach

// Level is the qualitative band of a readiness score.
type Level string

const (
	LevelGood     Level = "good"
	LevelModerate Level = "moderate"
	LevelPoor     Level = "poor"
)

const (
	// DefaultScore is assumed when the user has never checked in.
	DefaultScore = 10

	// DefaultRating is used for any check-in rating the client leaves out.
	DefaultRating = 3

	goodMaxScore     = 8
	moderateMaxScore = 13
)

// Readiness is the band a score falls into together with the weight
// multiplier it implies for the day.
type Readiness struct {
	Level  Level   `json:"level"`
	Factor float64 `json:"factor"`
}

// Band classifies a readiness score. Lower scores mean better recovery.
// It is the only place the band thresholds live; plan factors, plan notes
// and check-in suggestions all derive from it.
func Band(score int) Readiness {
	switch {
	case score <= goodMaxScore:
		return Readiness{Level: LevelGood, Factor: 1.00}
	case score <= moderateMaxScore:
		return Readiness{Level: LevelModerate, Factor: 0.95}
	default:
		return Readiness{Level: LevelPoor, Factor: 0.90}
	}
}

// ScoreCheckin sums the four ratings and bands the result.
func ScoreCheckin(sleep, fatigue, soreness, stress int) (int, Readiness) {
	score := sleep + fatigue + soreness + stress
	return score, Band(score)
}

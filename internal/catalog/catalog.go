// Package catalog holds exercise definitions: the built-in exercises shared
// by every user, and the merge of those with one user's custom exercises.
package catalog

const (
	// UnknownName is shown for sets whose exercise is no longer in the catalog.
	UnknownName = "Unknown"

	// Defaults for exercises imported from the external exercise database.
	CustomBaseWeight = 20.0
	CustomMinReps    = 8
	CustomMaxReps    = 12
)

// Exercise is one catalog entry.
type Exercise struct {
	ID         ID      `json:"id"`
	Name       string  `json:"name"`
	BodyPart   string  `json:"bodyPart"`
	Target     string  `json:"target,omitempty"`
	Equipment  string  `json:"equipment,omitempty"`
	BaseWeight float64 `json:"baseWeight"`
	MinReps    int     `json:"minReps"`
	MaxReps    int     `json:"maxReps"`
}

var builtins = []Exercise{
	{ID: IntID(1), Name: "深蹲", BodyPart: "legs", BaseWeight: 40, MinReps: 8, MaxReps: 10},
	{ID: IntID(2), Name: "臥推", BodyPart: "chest", BaseWeight: 30, MinReps: 8, MaxReps: 10},
	{ID: IntID(3), Name: "硬舉", BodyPart: "back", BaseWeight: 50, MinReps: 5, MaxReps: 8},
}

// Builtins returns a copy of the built-in exercises.
func Builtins() []Exercise {
	out := make([]Exercise, len(builtins))
	copy(out, builtins)
	return out
}

// NewCustom builds a user exercise from externally sourced metadata,
// filling in the conservative defaults used for first attempts.
func NewCustom(id ID, name, bodyPart, target, equipment string) Exercise {
	if name == "" {
		name = id.String()
	}
	return Exercise{
		ID:         id,
		Name:       name,
		BodyPart:   bodyPart,
		Target:     target,
		Equipment:  equipment,
		BaseWeight: CustomBaseWeight,
		MinReps:    CustomMinReps,
		MaxReps:    CustomMaxReps,
	}
}

// Merge returns the built-ins followed by custom in the given order.
// Colliding ids are kept; both entries appear.
func Merge(custom []Exercise) []Exercise {
	out := make([]Exercise, 0, len(builtins)+len(custom))
	out = append(out, builtins...)
	return append(out, custom...)
}

// Index is a lookup table over a list of exercises. On id collisions the
// first entry in the list wins.
type Index map[string]Exercise

// NewIndex builds an Index from exercises.
func NewIndex(exercises []Exercise) Index {
	idx := make(Index, len(exercises))
	for _, ex := range exercises {
		if _, ok := idx[ex.ID.Key()]; !ok {
			idx[ex.ID.Key()] = ex
		}
	}
	return idx
}

// Lookup returns the exercise for id.
func (idx Index) Lookup(id ID) (Exercise, bool) {
	ex, ok := idx[id.Key()]
	return ex, ok
}

// Describe returns the display name and body part for id, falling back to
// UnknownName and an empty body part for ids not in the index.
func (idx Index) Describe(id ID) (name, bodyPart string) {
	if ex, ok := idx.Lookup(id); ok {
		return ex.Name, ex.BodyPart
	}
	return UnknownName, ""
}

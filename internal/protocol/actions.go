package protocol

import (
	"context"

	"github.com/HendryAvila/liftcoach/internal/catalog"
	"github.com/HendryAvila/liftcoach/internal/coach"
	"github.com/HendryAvila/liftcoach/internal/exercisedb"
	"github.com/HendryAvila/liftcoach/internal/i18n"
	"github.com/HendryAvila/liftcoach/internal/store"
)

var (
	suggestionKeys = map[coach.Level]string{
		coach.LevelGood:     i18n.KeySuggestionGood,
		coach.LevelModerate: i18n.KeySuggestionModerate,
		coach.LevelPoor:     i18n.KeySuggestionPoor,
	}
	noteKeys = map[coach.Level]string{
		coach.LevelGood:     i18n.KeyNoteGood,
		coach.LevelModerate: i18n.KeyNoteModerate,
		coach.LevelPoor:     i18n.KeyNotePoor,
	}
)

func (h *Handler) ping(_ context.Context, _ *Request) (Response, error) {
	return pingResponse{Envelope: Envelope{Status: StatusOK}, Echo: "pong"}, nil
}

// login only checks that a username was sent. The password is ignored.
func (h *Handler) login(_ context.Context, req *Request) (Response, error) {
	username := req.String("username")
	if req.Blank("username") || username == "" {
		return nil, h.actionError(ActionLogin, i18n.KeyUsernameRequired, nil)
	}
	return loginResponse{Envelope: ok(ActionLogin), UserID: loginUserID, Username: username}, nil
}

func (h *Handler) checkin(ctx context.Context, req *Request) (Response, error) {
	user, err := req.ID("userId")
	if err != nil {
		return nil, err
	}
	var ratings [4]int
	for i, key := range []string{"sleep", "fatigue", "soreness", "stress"} {
		if ratings[i], err = req.Int(key, coach.DefaultRating); err != nil {
			return nil, err
		}
	}

	score, readiness := coach.ScoreCheckin(ratings[0], ratings[1], ratings[2], ratings[3])
	c := store.Checkin{
		Time:     h.now(),
		Sleep:    ratings[0],
		Fatigue:  ratings[1],
		Soreness: ratings[2],
		Stress:   ratings[3],
		Score:    score,
	}
	if err := h.store.SetCheckin(ctx, user, c); err != nil {
		return nil, err
	}

	return checkinResponse{
		Envelope:     ok(ActionCheckin),
		FatigueScore: score,
		Suggestion:   h.tr.T(suggestionKeys[readiness.Level]),
	}, nil
}

func (h *Handler) todayPlan(ctx context.Context, req *Request) (Response, error) {
	user, err := req.ID("userId")
	if err != nil {
		return nil, err
	}
	exercises, err := h.exercisesFor(ctx, user)
	if err != nil {
		return nil, err
	}
	sets, err := h.store.Sets(ctx, user)
	if err != nil {
		return nil, err
	}
	var checkin *store.Checkin
	if c, found, err := h.store.Checkin(ctx, user); err != nil {
		return nil, err
	} else if found {
		checkin = &c
	}

	plan := coach.BuildPlan(exercises, sets, checkin, h.now())
	return planResponse{
		Envelope:     ok(ActionTodayPlan),
		FatigueScore: plan.Score,
		Note:         h.tr.T(noteKeys[plan.Readiness.Level]),
		Plan:         plan.Lines,
	}, nil
}

// logSet appends the set and judges it against the sets logged before it.
// Both happen under the store's per-user write lock, so concurrent sets for
// the same exercise are ranked in the order they were stored.
func (h *Handler) logSet(ctx context.Context, req *Request) (Response, error) {
	user, err := req.ID("userId")
	if err != nil {
		return nil, err
	}
	exerciseID, err := req.ID("exerciseId")
	if err != nil {
		return nil, err
	}
	weight, err := req.Float("weight", 0)
	if err != nil {
		return nil, err
	}
	if weight < 0 {
		return nil, fieldError("weight")
	}
	reps, err := req.Int("reps", 0)
	if err != nil {
		return nil, err
	}
	if reps < 0 {
		return nil, fieldError("reps")
	}
	difficulty, err := req.Int("difficulty", coach.DefaultRating)
	if err != nil {
		return nil, err
	}

	set := store.LoggedSet{
		ExerciseID: exerciseID,
		Time:       h.now(),
		Weight:     weight,
		Reps:       reps,
		Difficulty: difficulty,
	}
	var (
		isPR     bool
		prevBest float64
	)
	err = h.store.AppendSet(ctx, user, set, func(prior []store.LoggedSet) {
		isPR, prevBest = coach.DetectPR(prior, exerciseID, weight)
	})
	if err != nil {
		return nil, err
	}

	env := ok(ActionLogSet)
	env.Message = h.tr.T(i18n.KeySetLogged)
	return logSetResponse{Envelope: env, IsPR: isPR, PrevBest: prevBest}, nil
}

func (h *Handler) history(ctx context.Context, req *Request) (Response, error) {
	user, err := req.ID("userId")
	if err != nil {
		return nil, err
	}
	exercises, err := h.exercisesFor(ctx, user)
	if err != nil {
		return nil, err
	}
	sets, err := h.store.Sets(ctx, user)
	if err != nil {
		return nil, err
	}
	return historyResponse{Envelope: ok(ActionHistory), Items: coach.History(sets, exercises)}, nil
}

func (h *Handler) summary(ctx context.Context, req *Request) (Response, error) {
	user, err := req.ID("userId")
	if err != nil {
		return nil, err
	}
	exercises, err := h.exercisesFor(ctx, user)
	if err != nil {
		return nil, err
	}
	sets, err := h.store.Sets(ctx, user)
	if err != nil {
		return nil, err
	}
	return summaryResponse{Envelope: ok(ActionSummary), Summary: coach.Summarize(sets, exercises, h.now())}, nil
}

// search asks the external catalog. Any failure is logged and reported to
// the client with the generic search-failed message.
func (h *Handler) search(ctx context.Context, req *Request) (Response, error) {
	q := exercisedb.Query{Name: req.String("query"), BodyPart: req.String("bodyPart")}
	results, err := h.searcher.Search(ctx, q)
	if err != nil {
		h.log.ErrorContext(ctx, "exercise search failed",
			"action", ActionSearch,
			"query", q.Name,
			"body_part", q.BodyPart,
			"error", err,
		)
		return nil, h.actionError(ActionSearch, i18n.KeySearchFailed, err)
	}
	if results == nil {
		results = []exercisedb.Result{}
	}
	return searchResponse{Envelope: ok(ActionSearch), Results: results}, nil
}

// addFromCatalog stores an exercise picked from search results as one of
// the user's custom exercises.
func (h *Handler) addFromCatalog(ctx context.Context, req *Request) (Response, error) {
	user, err := req.ID("userId")
	if err != nil {
		return nil, err
	}
	if user.IsZero() {
		return nil, h.actionError(ActionAddFromCatalog, i18n.KeyNotLoggedIn, nil)
	}
	id, err := req.ID("id")
	if err != nil {
		return nil, err
	}
	name := req.String("name")
	if id.IsZero() || name == "" {
		return nil, h.actionError(ActionAddFromCatalog, i18n.KeyMissingIDOrName, nil)
	}

	ex := catalog.NewCustom(id, name, req.String("bodyPart"), req.String("target"), req.String("equipment"))
	if err := h.store.AddCustomExercise(ctx, user, ex); err != nil {
		return nil, err
	}
	return addExerciseResponse{Envelope: ok(ActionAddFromCatalog), ExerciseID: id, Name: name}, nil
}

// exercisesFor returns the merged catalog for user.
func (h *Handler) exercisesFor(ctx context.Context, user catalog.ID) ([]catalog.Exercise, error) {
	custom, err := h.store.CustomExercises(ctx, user)
	if err != nil {
		return nil, err
	}
	return catalog.Merge(custom), nil
}

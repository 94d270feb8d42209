// Package protocol maps client requests to actions and builds the responses.
//
// A Handler is shared by every connection. It holds no per-connection state;
// all user state goes through the store, so concurrent calls are safe.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/HendryAvila/liftcoach/internal/exercisedb"
	"github.com/HendryAvila/liftcoach/internal/i18n"
	"github.com/HendryAvila/liftcoach/internal/store"
)

// Action names.
const (
	ActionPing           = "ping"
	ActionLogin          = "login"
	ActionCheckin        = "checkin"
	ActionTodayPlan      = "get_today_plan"
	ActionLogSet         = "log_set"
	ActionHistory        = "get_history"
	ActionSummary        = "get_summary"
	ActionSearch         = "search_exercises"
	ActionAddFromCatalog = "add_exercise_from_api"
)

// Actions lists every action in the order they are documented.
var Actions = []string{
	ActionPing, ActionLogin, ActionCheckin, ActionTodayPlan, ActionLogSet,
	ActionHistory, ActionSummary, ActionSearch, ActionAddFromCatalog,
}

// loginUserID is returned by every successful login. Clients pick their own
// user ids for the stateful actions.
const loginUserID = 1

type actionFunc func(ctx context.Context, req *Request) (Response, error)

// Options configures a Handler.
type Options struct {
	Store      store.Store
	Searcher   exercisedb.Searcher
	Translator *i18n.Translator
	Logger     *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler dispatches decoded requests.
type Handler struct {
	store    store.Store
	searcher exercisedb.Searcher
	tr       *i18n.Translator
	log      *slog.Logger
	now      func() time.Time
	actions  map[string]actionFunc
}

// NewHandler creates a Handler. Store and Searcher are required.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		store:    opts.Store,
		searcher: opts.Searcher,
		tr:       opts.Translator,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if h.tr == nil {
		h.tr = i18n.MustNew(i18n.DefaultLang)
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}

	h.actions = map[string]actionFunc{
		ActionPing:           h.ping,
		ActionLogin:          h.login,
		ActionCheckin:        h.checkin,
		ActionTodayPlan:      h.todayPlan,
		ActionLogSet:         h.logSet,
		ActionHistory:        h.history,
		ActionSummary:        h.summary,
		ActionSearch:         h.search,
		ActionAddFromCatalog: h.addFromCatalog,
	}
	return h
}

// HandleLine decodes one framed message and handles it. Undecodable input
// gets the generic invalid-json envelope.
func (h *Handler) HandleLine(ctx context.Context, line []byte) Response {
	req, err := Decode(line)
	if err != nil {
		h.log.DebugContext(ctx, "undecodable message", "error", err)
		return invalidJSON
	}
	return h.Handle(ctx, req)
}

// Handle runs the action named by req. It always returns a response:
// action failures, including panics, become error envelopes naming the
// action.
func (h *Handler) Handle(ctx context.Context, req *Request) (resp Response) {
	fn, ok := h.actions[req.Action]
	if !ok {
		return unknownAction(req.Action)
	}

	defer func() {
		if r := recover(); r != nil {
			h.log.ErrorContext(ctx, "action panicked",
				"action", req.Action,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			resp = h.failure(req.Action, i18n.KeyInternal)
		}
	}()

	resp, err := fn(ctx, req)
	if err != nil {
		return h.errorResponse(ctx, req.Action, err)
	}
	return resp
}

// errorResponse converts an action error into its envelope. Errors that
// carry no client message are logged and reported as internal.
func (h *Handler) errorResponse(ctx context.Context, action string, err error) Response {
	if ae, ok := asActionError(err); ok {
		return Envelope{Status: StatusError, Action: action, Message: ae.Message}
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return Envelope{Status: StatusError, Action: action, Message: h.tr.Tf(i18n.KeyInvalidField, fe.Field)}
	}
	h.log.ErrorContext(ctx, "action failed", "action", action, "error", err)
	return h.failure(action, i18n.KeyInternal)
}

func (h *Handler) failure(action, key string) Envelope {
	return Envelope{Status: StatusError, Action: action, Message: h.tr.T(key)}
}

func (h *Handler) actionError(action, key string, cause error) *ActionError {
	return &ActionError{Action: action, Message: h.tr.T(key), Err: cause}
}

package protocol

import (
	"errors"
	"fmt"

	"github.com/HendryAvila/liftcoach/internal/catalog"
	"github.com/HendryAvila/liftcoach/internal/coach"
	"github.com/HendryAvila/liftcoach/internal/exercisedb"
)

// Response statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Response is anything written back to the client as one JSON line.
type Response interface {
	Head() Envelope
}

// Envelope is the part shared by every response. Action is omitted on
// framing errors and unknown actions.
type Envelope struct {
	Status  string `json:"status"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

// Head returns the envelope itself.
func (e Envelope) Head() Envelope { return e }

// OK reports whether the response is a success.
func (e Envelope) OK() bool { return e.Status == StatusOK }

func ok(action string) Envelope { return Envelope{Status: StatusOK, Action: action} }

// invalidJSON is sent for lines that do not decode as a JSON object.
var invalidJSON = Envelope{Status: StatusError, Message: "invalid json"}

func unknownAction(name string) Envelope {
	return Envelope{Status: StatusError, Message: "unknown action: " + name}
}

// ActionError is a recoverable failure scoped to one action. Message is
// already localized.
type ActionError struct {
	Action  string
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Action, e.Message, e.Err)
	}
	return e.Action + ": " + e.Message
}

func (e *ActionError) Unwrap() error { return e.Err }

// asActionError reports whether err carries a client-facing message.
func asActionError(err error) (*ActionError, bool) {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ─── Per-action payloads ─────────────────────────────────────────────────────

type pingResponse struct {
	Envelope
	Echo string `json:"echo"`
}

type loginResponse struct {
	Envelope
	UserID   int    `json:"userId"`
	Username string `json:"username"`
}

type checkinResponse struct {
	Envelope
	FatigueScore int    `json:"fatigueScore"`
	Suggestion   string `json:"suggestion"`
}

type planResponse struct {
	Envelope
	FatigueScore int              `json:"fatigueScore"`
	Note         string           `json:"note"`
	Plan         []coach.PlanLine `json:"plan"`
}

type logSetResponse struct {
	Envelope
	IsPR     bool    `json:"isPr"`
	PrevBest float64 `json:"prevBest"`
}

type historyResponse struct {
	Envelope
	Items []coach.HistoryItem `json:"items"`
}

type summaryResponse struct {
	Envelope
	coach.Summary
}

type searchResponse struct {
	Envelope
	Results []exercisedb.Result `json:"results"`
}

type addExerciseResponse struct {
	Envelope
	ExerciseID catalog.ID `json:"exerciseId"`
	Name       string     `json:"name"`
}

// Package i18n holds the user-facing strings sent to clients.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
)

// Language is a supported locale tag.
type Language string

const (
	LangTraditionalChinese Language = "zh-TW"
	LangEnglish            Language = "en"
	DefaultLang            Language = LangTraditionalChinese
)

// Message keys.
const (
	KeySuggestionGood     = "checkin.suggestion.good"
	KeySuggestionModerate = "checkin.suggestion.moderate"
	KeySuggestionPoor     = "checkin.suggestion.poor"
	KeyNoteGood           = "plan.note.good"
	KeyNoteModerate       = "plan.note.moderate"
	KeyNotePoor           = "plan.note.poor"
	KeySetLogged          = "log_set.logged"
	KeyUsernameRequired   = "error.username_required"
	KeyNotLoggedIn        = "error.not_logged_in"
	KeyMissingIDOrName    = "error.missing_id_or_name"
	KeySearchFailed       = "error.search_failed"
	KeyInvalidField       = "error.invalid_field"
	KeyInternal           = "error.internal"
)

//go:embed locales/*.json
var localesFS embed.FS

var supported = []Language{LangTraditionalChinese, LangEnglish}

// Translator resolves message keys for one language, falling back to
// DefaultLang and finally to the key itself.
type Translator struct {
	lang Language
	data map[Language]map[string]string
}

// New loads the embedded locales and returns a Translator for lang.
// Unsupported languages use DefaultLang.
func New(lang Language) (*Translator, error) {
	t := &Translator{lang: DefaultLang, data: make(map[Language]map[string]string, len(supported))}
	for _, l := range supported {
		raw, err := localesFS.ReadFile(path.Join("locales", string(l)+".json"))
		if err != nil {
			return nil, fmt.Errorf("i18n: read locale %s: %w", l, err)
		}
		var messages map[string]string
		if err := json.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("i18n: parse locale %s: %w", l, err)
		}
		t.data[l] = messages
		if l == lang {
			t.lang = lang
		}
	}
	return t, nil
}

// MustNew is New for the embedded locales, which are known to be valid.
func MustNew(lang Language) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

// Language returns the language in use.
func (t *Translator) Language() Language { return t.lang }

// T returns the message for key.
func (t *Translator) T(key string) string {
	if text, ok := t.data[t.lang][key]; ok {
		return text
	}
	if text, ok := t.data[DefaultLang][key]; ok {
		return text
	}
	return key
}

// Tf formats the message for key with args.
func (t *Translator) Tf(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

package i18n

import (
	"testing"
)

var allKeys = []string{
	KeySuggestionGood, KeySuggestionModerate, KeySuggestionPoor,
	KeyNoteGood, KeyNoteModerate, KeyNotePoor,
	KeySetLogged, KeyUsernameRequired, KeyNotLoggedIn, KeyMissingIDOrName,
	KeySearchFailed, KeyInvalidField, KeyInternal,
}

func TestLocales_CoverEveryKey(t *testing.T) {
	for _, lang := range supported {
		tr := MustNew(lang)
		for _, key := range allKeys {
			if _, ok := tr.data[lang][key]; !ok {
				t.Errorf("%s: missing key %q", lang, key)
			}
		}
	}
}

func TestNew_UnsupportedFallsBack(t *testing.T) {
	tr := MustNew("fr")
	if tr.Language() != DefaultLang {
		t.Errorf("Language() = %q, want %q", tr.Language(), DefaultLang)
	}
	if got := tr.T(KeyNotLoggedIn); got != "尚未登入" {
		t.Errorf("T = %q", got)
	}
}

func TestT_UnknownKeyReturnsKey(t *testing.T) {
	tr := MustNew(LangEnglish)
	if got := tr.T("no.such.key"); got != "no.such.key" {
		t.Errorf("T = %q", got)
	}
}

func TestTf(t *testing.T) {
	tr := MustNew(LangEnglish)
	if got := tr.Tf(KeyInvalidField, "weight"); got != "invalid weight" {
		t.Errorf("Tf = %q", got)
	}
}

package i18n

import (
	"net/http"
	"time"

	"golang.org/x/text/language"
)

// CookieName is the name of the language preference cookie
const CookieName = "lang"

var matcher = language.NewMatcher([]language.Tag{
	language.English, // default, index 0
	language.Turkish,
})

var matchOrder = []Lang{EN, TR}

// Negotiate picks the language for a request. An explicit choice wins, then
// the stored preference, then the best Accept-Language match. Anything
// unsupported falls through to the next source and finally to fallback.
func Negotiate(explicit, stored, acceptLanguage string, fallback Lang) Lang {
	if lang, err := Parse(explicit); err == nil {
		return lang
	}
	if lang, err := Parse(stored); err == nil {
		return lang
	}
	return MatchAcceptLanguage(acceptLanguage, fallback)
}

// MatchAcceptLanguage matches an Accept-Language header against the
// supported languages, returning fallback when nothing matches
func MatchAcceptLanguage(header string, fallback Lang) Lang {
	if _, err := Parse(string(fallback)); err != nil {
		fallback = Default
	}
	if header == "" {
		return fallback
	}

	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}

	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(matchOrder) {
		return fallback
	}
	return matchOrder[idx]
}

// PreferenceStore persists a visitor's language choice between requests
type PreferenceStore interface {
	Load(r *http.Request) (Lang, bool)
	Save(w http.ResponseWriter, lang Lang)
}

// CookieStore keeps the preference in a cookie
type CookieStore struct {
	MaxAge time.Duration
	Secure bool
}

// NewCookieStore creates a store whose cookie lives for a year
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{MaxAge: 365 * 24 * time.Hour, Secure: secure}
}

// Load returns the stored language. Unsupported values are ignored.
func (s *CookieStore) Load(r *http.Request) (Lang, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	lang, err := Parse(c.Value)
	if err != nil {
		return "", false
	}
	return lang, true
}

// Save writes the preference cookie
func (s *CookieStore) Save(w http.ResponseWriter, lang Lang) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   int(s.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest negotiates the language of r using the "lang" query parameter
// as the explicit choice
func FromRequest(r *http.Request, store PreferenceStore, fallback Lang) Lang {
	var stored string
	if store != nil {
		if lang, ok := store.Load(r); ok {
			stored = string(lang)
		}
	}
	return Negotiate(r.URL.Query().Get("lang"), stored, r.Header.Get("Accept-Language"), fallback)
}

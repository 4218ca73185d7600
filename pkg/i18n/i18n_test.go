package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrings(t *testing.T) {
	assert.Equal(t, "About Us", Strings(EN).T("nav.about"))
	assert.Equal(t, "Hakkımızda", Strings(TR).T("nav.about"))
	assert.Equal(t, EN, Strings(Lang("de")).Lang())
	assert.Equal(t, "About Us", Strings(Lang("de")).T("nav.about"))
}

func TestDictionariesShareKeys(t *testing.T) {
	assert.Equal(t, Strings(EN).Keys(), Strings(TR).Keys())
	assert.NotEmpty(t, Strings(EN).Keys())
}

func TestLookupFallbacks(t *testing.T) {
	d := &Dictionary{lang: TR, entries: map[string]string{}, fallback: Strings(EN)}

	_, ok := d.Lookup("nav.about")
	assert.False(t, ok)
	assert.Equal(t, "About Us", d.T("nav.about"))
	assert.Equal(t, "no.such.key", d.T("no.such.key"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Open media 3", Strings(EN).Format("works.openMedia", map[string]any{"n": 3}))
	assert.Equal(t, "3. medyayı aç", Strings(TR).Format("works.openMedia", map[string]any{"n": 3}))
	assert.Equal(t, "Thumbnail {n}", Strings(EN).Format("works.lightbox.thumb", nil))
}

func TestTree(t *testing.T) {
	nav, ok := Strings(TR).Tree()["nav"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Kurucu", nav["founder"])
}

func TestParse(t *testing.T) {
	lang, err := Parse(" TR ")
	require.NoError(t, err)
	assert.Equal(t, TR, lang)

	_, err = Parse("fr")
	assert.ErrorIs(t, err, ErrUnknownLang)

	assert.True(t, IsLang("en"))
	assert.False(t, IsLang(""))
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		stored   string
		accept   string
		want     Lang
	}{
		{name: "nothing", want: EN},
		{name: "explicit wins", explicit: "tr", stored: "en", accept: "en-US", want: TR},
		{name: "stored over header", stored: "tr", accept: "en-US,en;q=0.9", want: TR},
		{name: "invalid explicit ignored", explicit: "xx", stored: "tr", want: TR},
		{name: "header match", accept: "tr-TR,tr;q=0.9,en;q=0.5", want: TR},
		{name: "header no match", accept: "ja-JP", want: EN},
		{name: "header garbage", accept: ";;;", want: EN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Negotiate(tt.explicit, tt.stored, tt.accept, EN))
		})
	}
}

func TestCookieStore(t *testing.T) {
	store := NewCookieStore(false)

	rec := httptest.NewRecorder()
	store.Save(rec, TR)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "tr", cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	lang, ok := store.Load(req)
	require.True(t, ok)
	assert.Equal(t, TR, lang)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "klingon"})
	_, ok = store.Load(req)
	assert.False(t, ok)
}

func TestFromRequest(t *testing.T) {
	store := NewCookieStore(false)

	req := httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tr"})
	assert.Equal(t, EN, FromRequest(req, store, TR))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tr"})
	assert.Equal(t, TR, FromRequest(req, store, EN))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "tr")
	assert.Equal(t, TR, FromRequest(req, nil, EN))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, TR, FromRequest(req, nil, TR))
}

func TestMatchAcceptLanguageFallback(t *testing.T) {
	assert.Equal(t, TR, MatchAcceptLanguage("", TR))
	assert.Equal(t, TR, MatchAcceptLanguage("ja", TR))
	assert.Equal(t, EN, MatchAcceptLanguage("ja", Lang("xx")))
	assert.Equal(t, EN, MatchAcceptLanguage("en-GB", TR))
}

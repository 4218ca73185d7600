package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dpformance-site/pkg/catalog"
	"dpformance-site/pkg/i18n"
	"dpformance-site/pkg/logging"
	"dpformance-site/pkg/models"
	"dpformance-site/pkg/services"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []services.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg services.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeRenderer struct {
	name string
	data any
	err  error
}

func (f *fakeRenderer) Render(w io.Writer, name string, data any) error {
	if f.err != nil {
		return f.err
	}
	f.name = name
	f.data = data
	_, err := io.WriteString(w, "<html>"+name+"</html>")
	return err
}

type testSite struct {
	router   http.Handler
	mailer   *fakeMailer
	renderer *fakeRenderer
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
}

func newTestSite(t *testing.T, limit int) *testSite {
	t.Helper()

	public := t.TempDir()
	root := filepath.Join(public, "gallery")
	writeFiles(t, root, "Overview.png")
	writeFiles(t, filepath.Join(root, "FIFA_IMAGES"), "10.png", "2.png", "1.png", "notes.txt", "report.pdf")
	writeFiles(t, filepath.Join(root, "FIFA_IMAGES", "drafts"), "secret.txt", "draft.png")
	writeFiles(t, public, "styles.css")
	writeFiles(t, filepath.Join(public, "fonts"), "inter.woff2")

	cat, err := catalog.Default()
	require.NoError(t, err)

	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	gallery := services.NewGalleryService(services.NewLocalSource(root), "/gallery", logging.Nop())
	contact := services.NewContactService(mailer, "owner@example.com", limit, time.Minute, logging.Nop())

	h := New(gallery, contact, cat, renderer, i18n.NewCookieStore(false), i18n.EN, logging.Nop())
	router := NewRouter(h, RouterOptions{
		StaticDir:    public,
		PublicPrefix: "/gallery",
		CORSOrigins:  []string{"http://localhost:3000"},
		Logger:       logging.Nop(),
	})

	return &testSite{router: router, mailer: mailer, renderer: renderer}
}

func (s *testSite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func postContact(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGalleryListHandler(t *testing.T) {
	site := newTestSite(t, 0)

	rec := site.do(httptest.NewRequest(http.MethodGet, "/api/gallery/FIFA_IMAGES", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var listing models.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, []string{
		"/gallery/FIFA_IMAGES/1.png",
		"/gallery/FIFA_IMAGES/2.png",
		"/gallery/FIFA_IMAGES/10.png",
	}, listing.Images)
	assert.Equal(t, []string{"/gallery/FIFA_IMAGES/report.pdf"}, listing.PDFs)
}

func TestGalleryListHandlerAlwaysOK(t *testing.T) {
	site := newTestSite(t, 0)

	for _, path := range []string{
		"/api/gallery/MISSING",
		"/api/gallery/%2e%2e",
		"/api/gallery/..%2Fgallery",
		"/api/gallery/FIFA_IMAGES%2F..",
		"/api/gallery",
		"/api/gallery/",
	} {
		t.Run(path, func(t *testing.T) {
			rec := site.do(httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"images":[],"pdfs":[]}`, rec.Body.String())
		})
	}
}

func TestGalleryListHandlerExtraSegments(t *testing.T) {
	site := newTestSite(t, 0)

	want := site.do(httptest.NewRequest(http.MethodGet, "/api/gallery/FIFA_IMAGES", nil)).Body.String()
	require.Contains(t, want, "/gallery/FIFA_IMAGES/1.png")

	for _, path := range []string{
		"/api/gallery/FIFA_IMAGES/",
		"/api/gallery/FIFA_IMAGES/extra",
		"/api/gallery/FIFA_IMAGES/extra/more",
	} {
		t.Run(path, func(t *testing.T) {
			rec := site.do(httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, want, rec.Body.String())
		})
	}
}

func TestContactHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mailerErr  error
		wantStatus int
		wantBody   string
		wantSent   int
	}{
		{
			name:       "success",
			body:       `{"name":"Ada","email":"ada@example.com","message":"Hello"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"success":true}`,
			wantSent:   1,
		},
		{
			name:       "missing email",
			body:       `{"name":"Ada","message":"Hello"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"error":"Missing required fields"}`,
		},
		{
			name:       "blank message",
			body:       `{"name":"Ada","email":"ada@example.com","message":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"error":"Missing required fields"}`,
		},
		{
			name:       "not json",
			body:       `name=Ada`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"error":"Invalid request body"}`,
		},
		{
			name:       "transport failure",
			body:       `{"name":"Ada","email":"ada@example.com","message":"Hello"}`,
			mailerErr:  errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"success":false,"error":"Failed to send email"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := newTestSite(t, 0)
			site.mailer.err = tt.mailerErr

			rec := site.do(postContact(tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.wantSent, site.mailer.count())
		})
	}
}

func TestContactHandlerMalformedEmail(t *testing.T) {
	site := newTestSite(t, 0)

	rec := site.do(postContact(`{"name":"Ada","email":"not-an-address","message":"Hello"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ContactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "email")
	assert.Zero(t, site.mailer.count())
}

func TestContactHandlerThrottle(t *testing.T) {
	site := newTestSite(t, 1)
	body := `{"name":"Ada","email":"ada@example.com","message":"Hello"}`

	rec := site.do(postContact(body))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = site.do(postContact(body))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, site.mailer.count())
}

func TestMediaHandler(t *testing.T) {
	site := newTestSite(t, 0)

	rec := site.do(httptest.NewRequest(http.MethodGet, "/gallery/FIFA_IMAGES/2.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2.png", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	for _, path := range []string{
		"/gallery/FIFA_IMAGES/notes.txt",
		"/gallery/FIFA_IMAGES/missing.png",
		"/gallery/FIFA_IMAGES/..%2F..%2Fsecret.png",
	} {
		rec := site.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestStaticFiles(t *testing.T) {
	site := newTestSite(t, 0)

	rec := site.do(httptest.NewRequest(http.MethodGet, "/gallery/Overview.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Overview.png", rec.Body.String())

	rec = site.do(httptest.NewRequest(http.MethodGet, "/styles.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "styles.css", rec.Body.String())
}

func TestGalleryPrefixOnlyServesMedia(t *testing.T) {
	site := newTestSite(t, 0)

	for _, path := range []string{
		"/gallery",
		"/gallery/",
		"/gallery/FIFA_IMAGES",
		"/gallery/FIFA_IMAGES/",
		"/gallery/FIFA_IMAGES/drafts/secret.txt",
		"/gallery/FIFA_IMAGES/drafts/draft.png",
		"/gallery/FIFA_IMAGES/drafts/",
		"/gallery/.gitkeep",
	} {
		t.Run(path, func(t *testing.T) {
			rec := site.do(httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.NotContains(t, rec.Body.String(), "secret")
			assert.NotContains(t, rec.Body.String(), "notes.txt")
		})
	}
}

func TestStaticFilesNoDirectoryListing(t *testing.T) {
	site := newTestSite(t, 0)

	rec := site.do(httptest.NewRequest(http.MethodGet, "/fonts/inter.woff2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = site.do(httptest.NewRequest(http.MethodGet, "/fonts/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "inter.woff2")
}

func TestIndexHandler(t *testing.T) {
	site := newTestSite(t, 0)

	rec := site.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index", site.renderer.name)

	page, ok := site.renderer.data.(PageData)
	require.True(t, ok)
	assert.Equal(t, "en", page.Lang)
	assert.Equal(t, "tr", page.OtherLang)
	require.Len(t, page.Tabs, 3)

	org := page.Tabs[0]
	assert.Equal(t, "UEFA & FIFA", org.Label)
	require.Len(t, org.Groups, 2)

	fifa := org.Groups[1]
	assert.Equal(t, "FIFA", fifa.Org)
	require.Len(t, fifa.Works, 1)
	work := fifa.Works[0]
	assert.True(t, work.HasMedia)
	require.Len(t, work.Thumbs, 3)
	assert.Equal(t, "/gallery/FIFA_IMAGES/1.png", work.Thumbs[0].Path)
	assert.Equal(t, "/works/fifa.efi/view?i=0", work.Thumbs[0].Href)
	assert.Equal(t, "Open media 1", work.Thumbs[0].Label)
	assert.Equal(t, 0, work.More)
	assert.Equal(t, "/gallery/FIFA_IMAGES/report.pdf", work.PDF)

	uefa := org.Groups[0]
	for _, w := range uefa.Works {
		assert.False(t, w.HasMedia, "missing folders render no gallery")
	}

	assert.Len(t, page.Product.Thumbs, 6)
	assert.Equal(t, "/gallery/scouting_report.pdf", page.Product.PDF)
}

func TestIndexHandlerLanguage(t *testing.T) {
	site := newTestSite(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: i18n.CookieName, Value: "tr"})
	rec := site.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	page := site.renderer.data.(PageData)
	assert.Equal(t, "tr", page.Lang)
	nav := page.T["nav"].(map[string]any)
	assert.Equal(t, "Hakkımızda", nav["about"])
}

func TestIndexHandlerTemplateError(t *testing.T) {
	site := newTestSite(t, 0)
	site.renderer.err = errors.New("boom")

	rec := site.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestViewerHandler(t *testing.T) {
	site := newTestSite(t, 0)

	rec := site.do(httptest.NewRequest(http.MethodGet, "/works/FIFA_IMAGES/view?i=99", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "viewer", site.renderer.name)

	data := site.renderer.data.(ViewerData)
	assert.Equal(t, 3, data.Position)
	assert.Equal(t, 3, data.Total)
	assert.Equal(t, "/gallery/FIFA_IMAGES/10.png", data.Current.Path)
	assert.Equal(t, "/works/FIFA_IMAGES/view?i=0", data.NextURL)
	assert.Equal(t, "/works/FIFA_IMAGES/view?i=1", data.PrevURL)
	require.Len(t, data.Thumbs, 3)
	assert.True(t, data.Thumbs[2].Active)
	assert.Equal(t, "Thumbnail 3", data.Thumbs[2].Label)
}

func TestViewerHandlerProduct(t *testing.T) {
	site := newTestSite(t, 0)

	rec := site.do(httptest.NewRequest(http.MethodGet, "/works/scoutwise/view?i=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	data := site.renderer.data.(ViewerData)
	assert.Equal(t, "/gallery/Team_Strategy_Area_Ex.png", data.Current.Path)
	assert.Equal(t, 6, data.Total)
}

func TestViewerHandlerKeys(t *testing.T) {
	site := newTestSite(t, 0)

	tests := []struct {
		query string
		want  string
	}{
		{"i=0&key=ArrowLeft", "/works/FIFA_IMAGES/view?i=2"},
		{"i=2&key=ArrowRight", "/works/FIFA_IMAGES/view?i=0"},
		{"i=1&key=Escape", "/#works"},
		{"i=1&key=Tab", "/works/FIFA_IMAGES/view?i=1"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := site.do(httptest.NewRequest(http.MethodGet, "/works/FIFA_IMAGES/view?"+tt.query, nil))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestViewerHandlerNotFound(t *testing.T) {
	site := newTestSite(t, 0)

	for _, path := range []string{
		"/works/academic.clustering/view",
		"/works/MISSING/view",
		"/works/..%2Fetc/view",
	} {
		rec := site.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestLanguageHandler(t *testing.T) {
	site := newTestSite(t, 0)

	form := url.Values{"lang": {"tr"}, "redirect": {"/#works"}}
	req := httptest.NewRequest(http.MethodPost, "/lang", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := site.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/#works", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "tr", cookies[0].Value)

	form = url.Values{"lang": {"de"}}
	req = httptest.NewRequest(http.MethodPost, "/lang", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = site.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/works", safeRedirect("/works"))
	assert.Equal(t, "/", safeRedirect(""))
	assert.Equal(t, "/", safeRedirect("https://evil.example"))
	assert.Equal(t, "/", safeRedirect("//evil.example"))
	assert.Equal(t, "/", safeRedirect(`/\evil.example`))
}

func TestHealthHandler(t *testing.T) {
	site := newTestSite(t, 0)

	rec := site.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	site := newTestSite(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := site.do(req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec = site.do(req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

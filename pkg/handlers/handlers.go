package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"dpformance-site/pkg/catalog"
	"dpformance-site/pkg/i18n"
	"dpformance-site/pkg/lightbox"
	"dpformance-site/pkg/models"
	"dpformance-site/pkg/services"
)

// ContactSubmitter relays contact form submissions
type ContactSubmitter interface {
	Submit(ctx context.Context, clientKey string, sub models.ContactSubmission) (string, error)
}

// Handler serves the site pages and API endpoints
type Handler struct {
	gallery  *services.GalleryService
	contact  ContactSubmitter
	catalog  *catalog.Catalog
	renderer Renderer
	prefs    i18n.PreferenceStore
	lang     i18n.Lang
	logger   zerolog.Logger
}

// New creates a Handler
func New(
	gallery *services.GalleryService,
	contact ContactSubmitter,
	cat *catalog.Catalog,
	renderer Renderer,
	prefs i18n.PreferenceStore,
	defaultLang i18n.Lang,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		gallery:  gallery,
		contact:  contact,
		catalog:  cat,
		renderer: renderer,
		prefs:    prefs,
		lang:     defaultLang,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// IndexHandler renders the single-page site in the negotiated language
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	lang := h.language(r)
	h.logger.Debug().Str("lang", string(lang)).Msg("generating index")

	h.render(w, "index", h.buildPage(r.Context(), lang))
}

// GalleryListHandler returns the images and PDFs of one folder. It always
// answers 200; unreadable or invalid folders produce empty arrays.
func (h *Handler) GalleryListHandler(w http.ResponseWriter, r *http.Request) {
	folder, err := url.PathUnescape(chi.URLParam(r, "folder"))
	if err != nil {
		h.logger.Warn().Err(err).Msg("undecodable folder key")
		RespondJSON(w, http.StatusOK, models.EmptyListing())
		return
	}

	RespondJSON(w, http.StatusOK, h.gallery.List(r.Context(), folder))
}

// ViewerHandler renders the lightbox for a work, the product gallery or a
// bare gallery folder. The i query parameter selects the item; a key
// parameter (ArrowLeft, ArrowRight, Escape) navigates from it.
func (h *Handler) ViewerHandler(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	lang := h.language(r)
	src, title, ok := h.lookupSource(key, lang)
	if !ok {
		http.NotFound(w, r)
		return
	}

	lb := lightbox.New(h.items(r.Context(), src, title))
	index, _ := strconv.Atoi(r.URL.Query().Get("i"))
	lb.OpenAt(index)
	if !lb.IsOpen() {
		h.logger.Debug().Str("key", key).Msg("viewer has no items")
		http.NotFound(w, r)
		return
	}

	if k := r.URL.Query().Get("key"); k != "" {
		lb.HandleKey(k)
		target := viewerURL(key, lb.Index())
		if !lb.IsOpen() {
			target = "/#works"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	h.render(w, "viewer", h.buildViewer(lang, key, title, lb))
}

// lookupSource resolves a viewer key through the catalog, falling back to a
// bare gallery folder
func (h *Handler) lookupSource(key string, lang i18n.Lang) (catalog.Source, string, bool) {
	dict := i18n.Strings(lang)

	if src, ok := h.catalog.Lookup(key); ok {
		title := key
		for _, w := range h.catalog.Works() {
			if w.Key == key || (w.Source.Kind == catalog.FolderRef && w.Source.Folder == key) {
				title = dict.T(w.TitleKey())
				break
			}
		}
		if key == h.catalog.Product().Key {
			title = dict.T("scoutwise.title")
		}
		return src, title, true
	}

	if services.ValidateName(key) != nil {
		return catalog.Source{}, "", false
	}
	return catalog.Source{Kind: catalog.FolderRef, Folder: key}, key, true
}

// MediaHandler serves one gallery file from the media source. Without a
// folder parameter the file is looked up directly under the media root.
func (h *Handler) MediaHandler(w http.ResponseWriter, r *http.Request) {
	folder, err1 := url.PathUnescape(chi.URLParam(r, "folder"))
	name, err2 := url.PathUnescape(chi.URLParam(r, "file"))
	if err1 != nil || err2 != nil {
		http.NotFound(w, r)
		return
	}

	var (
		rc   io.ReadCloser
		info services.ObjectInfo
		err  error
	)
	if folder == "" {
		rc, info, err = h.gallery.OpenShared(r.Context(), name)
	} else {
		rc, info, err = h.gallery.Open(r.Context(), folder, name)
	}
	switch {
	case errors.Is(err, services.ErrOutsideRoot), errors.Is(err, os.ErrNotExist):
		h.logger.Debug().Err(err).Str("folder", folder).Str("file", name).Msg("media not found")
		http.NotFound(w, r)
		return
	case err != nil:
		h.logger.Error().Err(err).Str("folder", folder).Str("file", name).Msg("media open error")
		RespondError(w, http.StatusInternalServerError, "failed to read media")
		return
	}
	defer rc.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}

	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, info.Name, info.ModTime, rs)
		return
	}

	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Debug().Err(err).Str("file", name).Msg("media copy interrupted")
	}
}

// LanguageHandler stores the posted language preference and redirects back
func (h *Handler) LanguageHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid form")
		return
	}

	lang, err := i18n.Parse(r.PostForm.Get("lang"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.prefs.Save(w, lang)
	http.Redirect(w, r, safeRedirect(r.PostForm.Get("redirect")), http.StatusSeeOther)
}

// HealthHandler reports liveness
func (h *Handler) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) language(r *http.Request) i18n.Lang {
	return i18n.FromRequest(r, h.prefs, h.lang)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("template error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// safeRedirect only allows local absolute paths
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, `/\`) {
		return "/"
	}
	return target
}

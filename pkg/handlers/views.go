package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"dpformance-site/pkg/catalog"
	"dpformance-site/pkg/i18n"
	"dpformance-site/pkg/lightbox"
	"dpformance-site/pkg/models"
)

// previewLimit is the number of thumbnails shown on a card
const previewLimit = 3

// Thumb is one thumbnail linking into the viewer
type Thumb struct {
	Path   string
	Alt    string
	Href   string
	Label  string
	Active bool
}

// LinkView is an external link with translated label
type LinkView struct {
	Href  string
	Label string
}

// WorkView is a work card ready for rendering
type WorkView struct {
	Key        string
	Org        string
	Title      string
	Paragraphs []string
	Link       *LinkView
	PDF        string
	Thumbs     []Thumb
	More       int
	HasMedia   bool
}

// GroupView is a run of works under an optional organization heading
type GroupView struct {
	Org   string
	Works []WorkView
}

// TabView is one portfolio tab
type TabView struct {
	Key    string
	Label  string
	Groups []GroupView
	Empty  string
}

// ProductView is the product gallery
type ProductView struct {
	Link   string
	PDF    string
	Thumbs []Thumb
	More   int
}

// PageData is passed to the index template
type PageData struct {
	Lang      string
	OtherLang string
	T         map[string]any
	Tabs      []TabView
	Product   ProductView
	Year      int
}

// ViewerData is passed to the viewer template
type ViewerData struct {
	Lang     string
	T        map[string]any
	Title    string
	Current  models.MediaItem
	Position int
	Total    int
	PrevURL  string
	NextURL  string
	CloseURL string
	Thumbs   []Thumb
}

var tabLabelKeys = map[string]string{
	"academic":    "works.tabs.academic",
	"independent": "works.tabs.independent",
}

// items resolves a catalog source into media items. Folder sources are
// listed on every call.
func (h *Handler) items(ctx context.Context, src catalog.Source, alt string) []models.MediaItem {
	switch src.Kind {
	case catalog.Inline:
		return src.Items
	case catalog.FolderRef:
		return h.gallery.List(ctx, src.Folder).Items(alt)
	default:
		return nil
	}
}

func viewerURL(key string, i int) string {
	return fmt.Sprintf("/works/%s/view?i=%d", url.PathEscape(key), i)
}

func thumbs(dict *i18n.Dictionary, key string, items []models.MediaItem) []Thumb {
	out := make([]Thumb, len(items))
	for i, item := range items {
		out[i] = Thumb{
			Path:  item.Path,
			Alt:   item.AltText,
			Href:  viewerURL(key, i),
			Label: dict.Format("works.openMedia", map[string]any{"n": i + 1}),
		}
	}
	return out
}

func (h *Handler) buildWork(ctx context.Context, dict *i18n.Dictionary, w catalog.Work) WorkView {
	title := dict.T(w.TitleKey())
	view := WorkView{
		Key:   w.Key,
		Org:   w.Org,
		Title: title,
	}
	for _, key := range w.ParagraphKeys() {
		view.Paragraphs = append(view.Paragraphs, dict.T(key))
	}
	if w.Link != nil {
		view.Link = &LinkView{Href: w.Link.Href, Label: dict.T(w.Link.Label)}
	}

	var items []models.MediaItem
	if w.Source.Kind == catalog.FolderRef {
		listing := h.gallery.List(ctx, w.Source.Folder)
		items = listing.Items(title)
		if len(listing.PDFs) > 0 {
			view.PDF = listing.PDFs[0]
		}
	} else {
		items = h.items(ctx, w.Source, title)
	}

	lb := lightbox.New(items)
	shown, more := lb.Preview(previewLimit)
	view.Thumbs = thumbs(dict, w.Key, shown)
	view.More = more
	view.HasMedia = lb.Len() > 0
	return view
}

func (h *Handler) buildTabs(ctx context.Context, dict *i18n.Dictionary) []TabView {
	var tabs []TabView
	for _, tab := range h.catalog.Tabs() {
		view := TabView{Key: tab.Key, Empty: dict.T("works.empty.default")}
		if tab.Key == "independent" {
			view.Empty = dict.T("works.empty.independent")
		}

		if orgs := tab.Orgs(); len(orgs) > 0 {
			for _, org := range orgs {
				group := GroupView{Org: org}
				for _, w := range tab.ByOrg(org) {
					group.Works = append(group.Works, h.buildWork(ctx, dict, w))
				}
				view.Groups = append(view.Groups, group)
			}
			view.Label = strings.Join(orgs, " & ")
		} else {
			group := GroupView{}
			for _, w := range tab.Works {
				group.Works = append(group.Works, h.buildWork(ctx, dict, w))
			}
			view.Groups = append(view.Groups, group)
			view.Label = dict.T(tabLabelKeys[tab.Key])
		}
		tabs = append(tabs, view)
	}
	return tabs
}

func (h *Handler) buildPage(ctx context.Context, lang i18n.Lang) PageData {
	dict := i18n.Strings(lang)

	other := i18n.TR
	if lang == i18n.TR {
		other = i18n.EN
	}

	product := h.catalog.Product()
	lb := lightbox.New(product.Source.Items)
	shown, more := lb.Preview(len(product.Source.Items))

	return PageData{
		Lang:      string(lang),
		OtherLang: string(other),
		T:         dict.Tree(),
		Tabs:      h.buildTabs(ctx, dict),
		Product: ProductView{
			Link:   product.Link,
			PDF:    product.PDF,
			Thumbs: thumbs(dict, product.Key, shown),
			More:   more,
		},
		Year: time.Now().Year(),
	}
}

func (h *Handler) buildViewer(lang i18n.Lang, key, title string, lb *lightbox.Lightbox) ViewerData {
	dict := i18n.Strings(lang)
	current, _ := lb.Current()

	data := ViewerData{
		Lang:     string(lang),
		T:        dict.Tree(),
		Title:    title,
		Current:  current,
		Position: lb.Index() + 1,
		Total:    lb.Len(),
		PrevURL:  viewerURL(key, lb.PreviousIndex()),
		NextURL:  viewerURL(key, lb.NextIndex()),
		CloseURL: "/#works",
	}

	for i, item := range lb.Items() {
		data.Thumbs = append(data.Thumbs, Thumb{
			Path:   item.Path,
			Alt:    item.AltText,
			Href:   viewerURL(key, i),
			Label:  dict.Format("works.lightbox.thumb", map[string]any{"n": i + 1}),
			Active: i == lb.Index(),
		})
	}
	return data
}

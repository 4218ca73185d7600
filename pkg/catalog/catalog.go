// Package catalog describes the portfolio: the works shown under each tab and
// the product gallery. Each work's media source is resolved once, when the
// catalog is loaded.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"dpformance-site/pkg/models"
	"dpformance-site/pkg/services"
)

//go:embed works.yaml
var defaultData []byte

// ErrInvalidCatalog is returned when catalog data fails to load
var ErrInvalidCatalog = errors.New("invalid catalog")

// SourceKind tells where a work's media comes from
type SourceKind int

const (
	// Empty works have no media and show no gallery
	Empty SourceKind = iota
	// Inline works carry a fixed item list
	Inline
	// FolderRef works list a gallery folder at request time
	FolderRef
)

func (k SourceKind) String() string {
	switch k {
	case Inline:
		return "inline"
	case FolderRef:
		return "folder"
	default:
		return "empty"
	}
}

// Source is the media source of a work. Only the field matching Kind is set.
type Source struct {
	Kind   SourceKind
	Items  []models.MediaItem
	Folder string
}

// Link is an external reference shown on a work card. Label is a dictionary key.
type Link struct {
	Href  string `json:"href" yaml:"href"`
	Label string `json:"label" yaml:"label"`
}

// Tab groups works on the portfolio section
type Tab struct {
	Key   string
	Works []Work
}

// Orgs returns the distinct organizations of the tab's works in order of
// first appearance. Tabs without organizations return nil.
func (t Tab) Orgs() []string {
	var orgs []string
	seen := map[string]bool{}
	for _, w := range t.Works {
		if w.Org == "" || seen[w.Org] {
			continue
		}
		seen[w.Org] = true
		orgs = append(orgs, w.Org)
	}
	return orgs
}

// ByOrg returns the works of the tab belonging to org
func (t Tab) ByOrg(org string) []Work {
	var out []Work
	for _, w := range t.Works {
		if w.Org == org {
			out = append(out, w)
		}
	}
	return out
}

// Work is one portfolio entry. Its text lives in the i18n dictionaries under
// works.items.<Key>.
type Work struct {
	Key        string
	Tab        string
	Org        string
	Paragraphs []string
	Source     Source
	Link       *Link
}

// TitleKey is the dictionary key of the work's title
func (w Work) TitleKey() string {
	return "works.items." + w.Key + ".title"
}

// ParagraphKeys are the dictionary keys of the work's body paragraphs
func (w Work) ParagraphKeys() []string {
	keys := make([]string, len(w.Paragraphs))
	for i, p := range w.Paragraphs {
		keys[i] = "works.items." + w.Key + "." + p
	}
	return keys
}

// Product is the product gallery: inline screenshots plus a sample report
type Product struct {
	Key    string
	Link   string
	PDF    string
	Source Source
}

// Catalog is the loaded, immutable portfolio
type Catalog struct {
	tabs    []Tab
	product Product
}

// Tabs returns the tabs in display order
func (c *Catalog) Tabs() []Tab {
	return c.tabs
}

// Tab returns the tab named key
func (c *Catalog) Tab(key string) (Tab, bool) {
	for _, t := range c.tabs {
		if t.Key == key {
			return t, true
		}
	}
	return Tab{}, false
}

// Works returns every work of every tab
func (c *Catalog) Works() []Work {
	var out []Work
	for _, t := range c.tabs {
		out = append(out, t.Works...)
	}
	return out
}

// Product returns the product gallery
func (c *Catalog) Product() Product {
	return c.product
}

// Folders returns the folder keys referenced by works, in catalog order
func (c *Catalog) Folders() []string {
	var out []string
	seen := map[string]bool{}
	for _, w := range c.Works() {
		if w.Source.Kind != FolderRef || seen[w.Source.Folder] {
			continue
		}
		seen[w.Source.Folder] = true
		out = append(out, w.Source.Folder)
	}
	return out
}

// Lookup finds the media source published under key: the product key, a work
// key, or a folder referenced by a work.
func (c *Catalog) Lookup(key string) (Source, bool) {
	if key == c.product.Key {
		return c.product.Source, true
	}
	for _, w := range c.Works() {
		if w.Key == key {
			return w.Source, true
		}
		if w.Source.Kind == FolderRef && w.Source.Folder == key {
			return w.Source, true
		}
	}
	return Source{}, false
}

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	return Parse(defaultData)
}

// Load reads a catalog from r
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

type rawImage struct {
	Src string `yaml:"src"`
	Alt string `yaml:"alt"`
}

type rawWork struct {
	Key        string     `yaml:"key"`
	Org        string     `yaml:"org"`
	Paragraphs []string   `yaml:"paragraphs"`
	Folder     string     `yaml:"folder"`
	Images     []rawImage `yaml:"images"`
	Link       *Link      `yaml:"link"`
}

type rawTab struct {
	Key   string    `yaml:"key"`
	Works []rawWork `yaml:"works"`
}

type rawCatalog struct {
	Tabs    []rawTab `yaml:"tabs"`
	Product struct {
		Key    string     `yaml:"key"`
		Link   string     `yaml:"link"`
		PDF    string     `yaml:"pdf"`
		Images []rawImage `yaml:"images"`
	} `yaml:"product"`
}

var knownOrgs = map[string]bool{"": true, "UEFA": true, "FIFA": true}

// Parse decodes and resolves catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	c := &Catalog{}
	keys := map[string]bool{}
	for _, rt := range raw.Tabs {
		if rt.Key == "" {
			return nil, fmt.Errorf("%w: tab without key", ErrInvalidCatalog)
		}
		tab := Tab{Key: rt.Key}
		for _, rw := range rt.Works {
			w, err := resolveWork(rt.Key, rw)
			if err != nil {
				return nil, err
			}
			if keys[w.Key] {
				return nil, fmt.Errorf("%w: duplicate work %q", ErrInvalidCatalog, w.Key)
			}
			keys[w.Key] = true
			tab.Works = append(tab.Works, w)
		}
		c.tabs = append(c.tabs, tab)
	}

	items, err := resolveImages(raw.Product.Images)
	if err != nil {
		return nil, fmt.Errorf("product: %w", err)
	}
	c.product = Product{
		Key:    raw.Product.Key,
		Link:   raw.Product.Link,
		PDF:    raw.Product.PDF,
		Source: inlineOrEmpty(items),
	}
	return c, nil
}

func resolveWork(tab string, rw rawWork) (Work, error) {
	if rw.Key == "" {
		return Work{}, fmt.Errorf("%w: work without key in tab %q", ErrInvalidCatalog, tab)
	}
	if !knownOrgs[rw.Org] {
		return Work{}, fmt.Errorf("%w: work %q has unknown org %q", ErrInvalidCatalog, rw.Key, rw.Org)
	}

	w := Work{
		Key:        rw.Key,
		Tab:        tab,
		Org:        rw.Org,
		Paragraphs: rw.Paragraphs,
		Link:       rw.Link,
	}
	if len(w.Paragraphs) == 0 {
		w.Paragraphs = []string{"p1"}
	}

	items, err := resolveImages(rw.Images)
	if err != nil {
		return Work{}, fmt.Errorf("work %q: %w", rw.Key, err)
	}

	switch {
	case len(items) > 0:
		w.Source = Source{Kind: Inline, Items: items}
	case rw.Folder != "":
		if err := services.ValidateName(rw.Folder); err != nil {
			return Work{}, fmt.Errorf("%w: work %q: %v", ErrInvalidCatalog, rw.Key, err)
		}
		w.Source = Source{Kind: FolderRef, Folder: rw.Folder}
	default:
		w.Source = Source{Kind: Empty}
	}
	return w, nil
}

func resolveImages(raw []rawImage) ([]models.MediaItem, error) {
	items := make([]models.MediaItem, 0, len(raw))
	for _, img := range raw {
		if !strings.HasPrefix(img.Src, "/") {
			return nil, fmt.Errorf("%w: image %q is not an absolute public path", ErrInvalidCatalog, img.Src)
		}
		items = append(items, models.MediaItem{Path: img.Src, Kind: models.Image, AltText: img.Alt})
	}
	return items, nil
}

func inlineOrEmpty(items []models.MediaItem) Source {
	if len(items) == 0 {
		return Source{Kind: Empty}
	}
	return Source{Kind: Inline, Items: items}
}

// Package i18n holds the site's English and Turkish dictionaries.
//
// Dictionaries are embedded YAML files parsed once at package init and never
// mutated afterwards, so they are safe to share between requests.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lang is a supported language code
type Lang string

const (
	EN Lang = "en"
	TR Lang = "tr"

	// Default is used when no preference is known
	Default = EN
)

// ErrUnknownLang is returned by Parse for unsupported codes
var ErrUnknownLang = errors.New("unknown language")

//go:embed locales/*.yaml
var localeFS embed.FS

var dictionaries map[Lang]*Dictionary

func init() {
	var err error
	dictionaries, err = loadAll()
	if err != nil {
		panic(fmt.Sprintf("i18n: %v", err))
	}
}

// Supported returns the supported languages, default first
func Supported() []Lang {
	return []Lang{EN, TR}
}

// IsLang reports whether s names a supported language
func IsLang(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse converts a language code to a Lang. It is case-insensitive.
func Parse(s string) (Lang, error) {
	switch Lang(strings.ToLower(strings.TrimSpace(s))) {
	case EN:
		return EN, nil
	case TR:
		return TR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLang, s)
}

// Dictionary is the string table of one language
type Dictionary struct {
	lang     Lang
	tree     map[string]any
	entries  map[string]string
	fallback *Dictionary
}

// Strings returns the dictionary for lang. Unknown languages get English.
func Strings(lang Lang) *Dictionary {
	if d, ok := dictionaries[lang]; ok {
		return d
	}
	return dictionaries[Default]
}

// Lang returns the language of the dictionary
func (d *Dictionary) Lang() Lang {
	return d.lang
}

// Lookup returns the string stored under a dotted key such as "nav.about".
// It does not fall back to another language.
func (d *Dictionary) Lookup(key string) (string, bool) {
	s, ok := d.entries[key]
	return s, ok
}

// T returns the string for key, falling back to English and then to the key
// itself.
func (d *Dictionary) T(key string) string {
	if s, ok := d.entries[key]; ok {
		return s
	}
	if d.fallback != nil {
		if s, ok := d.fallback.entries[key]; ok {
			return s
		}
	}
	return key
}

// Format returns T(key) with every {name} placeholder replaced by the
// matching value in vars. Unmatched placeholders are left as they are.
func (d *Dictionary) Format(key string, vars map[string]any) string {
	s := d.T(key)
	if len(vars) == 0 {
		return s
	}

	pairs := make([]string, 0, 2*len(vars))
	for name, v := range vars {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Tree returns the nested dictionary as parsed, with English entries filling
// any gaps. Templates address it with field chains like .T.nav.about.
func (d *Dictionary) Tree() map[string]any {
	return d.tree
}

// Keys returns every dotted key of the dictionary in sorted order
func (d *Dictionary) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func loadAll() (map[Lang]*Dictionary, error) {
	out := make(map[Lang]*Dictionary, 2)
	for _, lang := range Supported() {
		tree, err := loadTree(lang)
		if err != nil {
			return nil, err
		}
		entries := make(map[string]string)
		flatten("", tree, entries)
		out[lang] = &Dictionary{lang: lang, tree: tree, entries: entries}
	}

	en := out[Default]
	for lang, d := range out {
		if lang == Default {
			continue
		}
		d.fallback = en
		d.tree = merge(en.tree, d.tree)
	}
	return out, nil
}

func loadTree(lang Lang) (map[string]any, error) {
	data, err := localeFS.ReadFile("locales/" + string(lang) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("read %s locale: %w", lang, err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("parse %s locale: %w", lang, err)
	}
	return tree, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// merge returns a copy of base overlaid with override
func merge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		bm, bok := out[k].(map[string]any)
		om, ook := v.(map[string]any)
		if bok && ook {
			out[k] = merge(bm, om)
			continue
		}
		out[k] = v
	}
	return out
}

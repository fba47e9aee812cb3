// Package i18n holds the message catalogue for operator-facing text: boot
// diagnostics, reporter findings, and CLI output.
//
// Messages are looked up by key. Until Init runs, English is used.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

//go:embed locales/*.json
var locales embed.FS

// DefaultLocale is the catalogue every other locale falls back to.
const DefaultLocale = "en"

type bundle struct {
	catalog catalog.Catalog
	tags    []language.Tag
	keys    []string
}

type active struct {
	tag     language.Tag
	catalog catalog.Catalog
}

var (
	loadOnce   sync.Once
	loaded     *bundle
	loadErr    error
	activeLang atomic.Pointer[active]
)

// Translator selects the locale used by T.
type Translator struct {
	locale string
	tag    language.Tag
}

// New returns a translator for locale. Empty means DefaultLocale.
func New(locale string) *Translator {
	return &Translator{locale: strings.TrimSpace(locale)}
}

// Init loads the catalogue and makes the best supported match for the
// configured locale current. A malformed locale is an error; a well-formed
// but unsupported one falls back to English.
func (t *Translator) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := load()
	if err != nil {
		return err
	}
	want := language.English
	if t.locale != "" {
		want, err = language.Parse(t.locale)
		if err != nil {
			return fmt.Errorf("parse locale %q: %w", t.locale, err)
		}
	}
	_, index, _ := language.NewMatcher(b.tags).Match(want)
	t.tag = b.tags[index]
	activeLang.Store(&active{tag: t.tag, catalog: b.catalog})
	return nil
}

// Tag is the locale chosen by the last Init.
func (t *Translator) Tag() language.Tag { return t.tag }

// T formats the message stored under key. Unknown keys are formatted as-is.
func T(key string, args ...any) string {
	return printer().Sprintf(key, args...)
}

// Keys lists every key of the default catalogue.
func Keys() []string {
	b, err := load()
	if err != nil {
		return nil
	}
	return append([]string(nil), b.keys...)
}

func printer() *message.Printer {
	if cur := activeLang.Load(); cur != nil {
		return message.NewPrinter(cur.tag, message.Catalog(cur.catalog))
	}
	b, err := load()
	if err != nil {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(language.English, message.Catalog(b.catalog))
}

func load() (*bundle, error) {
	loadOnce.Do(func() {
		loaded, loadErr = buildBundle()
	})
	return loaded, loadErr
}

func buildBundle() (*bundle, error) {
	base, err := readLocale(DefaultLocale)
	if err != nil {
		return nil, err
	}
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	b := &bundle{catalog: builder, tags: []language.Tag{language.English}}
	for key, msg := range base {
		if err := builder.SetString(language.English, key, msg); err != nil {
			return nil, fmt.Errorf("catalogue %s: %s: %w", DefaultLocale, key, err)
		}
		b.keys = append(b.keys, key)
	}
	sort.Strings(b.keys)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".json")
		if name == DefaultLocale {
			continue
		}
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("locale file %s: %w", entry.Name(), err)
		}
		messages, err := readLocale(name)
		if err != nil {
			return nil, err
		}
		// Keys missing from a translation keep their English text.
		for key, msg := range base {
			if translated, ok := messages[key]; ok {
				msg = translated
			}
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("catalogue %s: %s: %w", name, key, err)
			}
		}
		b.tags = append(b.tags, tag)
	}
	return b, nil
}

func readLocale(name string) (map[string]string, error) {
	data, err := locales.ReadFile(path.Join("locales", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", name, err)
	}
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode locale %s: %w", name, err)
	}
	return messages, nil
}

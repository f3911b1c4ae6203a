// Package i18n loads the UI message catalogs and picks a language per request.
//
// Catalogs are YAML files keyed by message id. Turkish is the source language:
// notices built in Go code are Turkish sentences and the English catalog maps
// them to translations, so a missing entry still prints the Turkish text.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

// Bundle holds the compiled catalogs.
type Bundle struct {
	catalog   *catalog.Builder
	fallback  language.Tag
	supported []language.Tag
	matcher   language.Matcher
	printers  map[string]*message.Printer
}

type catalogFile struct {
	Messages map[string]string `yaml:"messages"`
	Notices  map[string]string `yaml:"notices"`
}

// Default loads the embedded catalogs with fallback as the default language.
func Default(fallback string) (*Bundle, error) {
	return Load(embedded, "locales", fallback)
}

// Load reads every <lang>.yaml under dir. The fallback language must be present.
func Load(fsys fs.FS, dir, fallback string) (*Bundle, error) {
	fallbackTag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("i18n: fallback %q: %w", fallback, err)
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}

	builder := catalog.NewBuilder(catalog.Fallback(fallbackTag))
	var tags []language.Tag
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("i18n: locale file %s: %w", name, err)
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", name, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("i18n: decode %s: %w", name, err)
		}
		for key, msg := range file.Messages {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("i18n: %s %s: %w", name, key, err)
			}
		}
		for key, msg := range file.Notices {
			if err := builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("i18n: %s %s: %w", name, key, err)
			}
		}
		tags = append(tags, tag)
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i] == fallbackTag && tags[j] != fallbackTag })
	if len(tags) == 0 || tags[0] != fallbackTag {
		return nil, fmt.Errorf("i18n: fallback locale %s not loaded", fallback)
	}

	b := &Bundle{
		catalog:   builder,
		fallback:  fallbackTag,
		supported: tags,
		matcher:   language.NewMatcher(tags),
		printers:  make(map[string]*message.Printer, len(tags)),
	}
	for _, tag := range tags {
		b.printers[tag.String()] = message.NewPrinter(tag, message.Catalog(builder))
	}
	return b, nil
}

// Supported lists the loaded languages, fallback first.
func (b *Bundle) Supported() []string {
	out := make([]string, len(b.supported))
	for i, t := range b.supported {
		out[i] = t.String()
	}
	return out
}

// Fallback returns the default language.
func (b *Bundle) Fallback() string { return b.fallback.String() }

// Printer returns the printer for lang, or the fallback printer.
func (b *Bundle) Printer(lang string) *message.Printer {
	if p, ok := b.printers[lang]; ok {
		return p
	}
	return b.printers[b.fallback.String()]
}

// T translates key for lang, formatting args into it. Unknown keys are printed as is.
func (b *Bundle) T(lang, key string, args ...any) string {
	return b.Printer(lang).Sprintf(key, args...)
}

// Resolve chooses the best supported language for an Accept-Language header.
func (b *Bundle) Resolve(acceptLanguage string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return b.fallback.String()
	}
	_, index, confidence := b.matcher.Match(prefs...)
	if confidence == language.No {
		return b.fallback.String()
	}
	return b.supported[index].String()
}

// Normalize maps a user supplied language code to a supported one, or "".
func (b *Bundle) Normalize(lang string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	for _, t := range b.supported {
		if tb, _ := t.Base(); tb == base {
			return t.String()
		}
	}
	return ""
}

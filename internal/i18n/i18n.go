// Package i18n renders localizable audit descriptions and catalog labels.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	builderOnce sync.Once
	builder     *catalog.Builder
)

// Supported lists the locales with a translation catalog.
var Supported = []language.Tag{language.English, language.Indonesian}

// Printer formats message keys for a single locale.
type Printer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewPrinter returns a printer for the given BCP 47 locale. Unknown locales fall back to English.
func NewPrinter(locale string) *Printer {
	tag := match(locale)
	return &Printer{tag: tag, printer: message.NewPrinter(tag, message.Catalog(catalogBuilder()))}
}

// Sprintf renders key with positional arguments.
func (p *Printer) Sprintf(key string, args ...any) string {
	if p == nil {
		return message.NewPrinter(language.English).Sprintf(key, args...)
	}
	return p.printer.Sprintf(key, args...)
}

// Language returns the resolved locale tag.
func (p *Printer) Language() language.Tag {
	if p == nil {
		return language.English
	}
	return p.tag
}

func match(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	desired, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(desired) == 0 {
		return language.English
	}
	matcher := language.NewMatcher(Supported)
	_, idx, conf := matcher.Match(desired...)
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

func catalogBuilder() *catalog.Builder {
	builderOnce.Do(func() {
		builder = catalog.NewBuilder(catalog.Fallback(language.English))
		for key, value := range indonesian {
			_ = builder.SetString(language.Indonesian, key, value)
		}
	})
	return builder
}

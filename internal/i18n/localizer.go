package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Localizer turns catalog keys into display strings
type Localizer interface {
	// Localize returns the message for key, or key itself when it is unknown
	Localize(key string) string
	// Format fills the message's positional verbs (%[1]s ...) with args
	Format(key string, args ...any) string
}

type printerLocalizer struct {
	bundle  *Bundle
	locale  string
	printer *message.Printer
}

// NewLocalizer registers the bundle and returns a localizer for locale.
// Unknown locales fall back to the base locale.
func NewLocalizer(bundle *Bundle, locale string) (Localizer, error) {
	if bundle == nil {
		return nil, fmt.Errorf("bundle is required")
	}
	if err := bundle.Register(); err != nil {
		return nil, err
	}

	if !bundle.HasLocale(locale) {
		locale = BaseLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale tag %q: %w", locale, err)
	}

	return &printerLocalizer{
		bundle:  bundle,
		locale:  locale,
		printer: message.NewPrinter(tag),
	}, nil
}

// NewDefaultLocalizer loads the embedded catalogs
func NewDefaultLocalizer(locale string) (Localizer, error) {
	bundle, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	return NewLocalizer(bundle, locale)
}

func (l *printerLocalizer) Localize(key string) string {
	value, ok := l.bundle.Message(l.locale, key)
	if !ok {
		return key
	}
	return value
}

func (l *printerLocalizer) Format(key string, args ...any) string {
	if _, ok := l.bundle.locales[l.locale][key]; ok {
		return l.printer.Sprintf(key, args...)
	}
	if value, ok := l.bundle.Message(BaseLocale, key); ok {
		return fmt.Sprintf(value, args...)
	}
	return key
}

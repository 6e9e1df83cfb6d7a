// Package i18n translates UI messages. Spanish is the default language;
// English is also shipped.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

// Translator holds the message bundle and picks a language per request.
type Translator struct {
	bundle  *goi18n.Bundle
	matcher language.Matcher
	logger  *slog.Logger
}

// New loads the embedded message files. defaultLocale is preferred when the
// request expresses no usable preference.
func New(defaultLocale string, logger *slog.Logger) (*Translator, error) {
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("parse default locale: %w", err)
	}

	bundle := goi18n.NewBundle(def)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(locales, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
	}

	// The first tag is the matcher's fallback.
	tags := []language.Tag{def}
	for _, tag := range bundle.LanguageTags() {
		if tag != def {
			tags = append(tags, tag)
		}
	}

	return &Translator{
		bundle:  bundle,
		matcher: language.NewMatcher(tags),
		logger:  logger,
	}, nil
}

// Localizer returns a localizer for an Accept-Language header value.
func (t *Translator) Localizer(acceptLanguage string) *Localizer {
	tag, _ := language.MatchStrings(t.matcher, acceptLanguage)
	base, _ := tag.Base()
	return &Localizer{
		l:      goi18n.NewLocalizer(t.bundle, base.String()),
		Lang:   base.String(),
		logger: t.logger,
	}
}

// Middleware stores a Localizer for the request's language in the context.
func (t *Translator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := t.Localizer(r.Header.Get("Accept-Language"))
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r.WithContext(WithLocalizer(r.Context(), l)))
	})
}

// Localizer translates message ids into one language.
type Localizer struct {
	l      *goi18n.Localizer
	Lang   string
	logger *slog.Logger
}

// T translates a message id. Unknown ids come back unchanged.
func (l *Localizer) T(id string) string {
	return l.localize(&goi18n.LocalizeConfig{MessageID: id})
}

// TData translates a message id with template data.
func (l *Localizer) TData(id string, data map[string]any) string {
	return l.localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
}

// TPlural translates a message id choosing the plural form for count.
func (l *Localizer) TPlural(id string, count int) string {
	return l.localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (l *Localizer) localize(cfg *goi18n.LocalizeConfig) string {
	if l == nil || l.l == nil {
		return cfg.MessageID
	}
	msg, err := l.l.Localize(cfg)
	if err != nil {
		if l.logger != nil {
			l.logger.Debug("translation missing", "message_id", cfg.MessageID, "lang", l.Lang, "error", err)
		}
		return cfg.MessageID
	}
	return msg
}

type ctxKey struct{}

// WithLocalizer stores l in ctx.
func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request's Localizer. A nil *Localizer is still
// usable and echoes message ids.
func FromContext(ctx context.Context) *Localizer {
	l, _ := ctx.Value(ctxKey{}).(*Localizer)
	return l
}

package i18n

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := New("es", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return tr
}

func TestLocalizer_LanguageMatching(t *testing.T) {
	tr := newTestTranslator(t)

	tests := []struct {
		accept string
		lang   string
		next   string
	}{
		{"", "es", "Siguiente"},
		{"en-US,en;q=0.9", "en", "Next"},
		{"es-PE", "es", "Siguiente"},
		{"ja", "es", "Siguiente"},
		{"fr;q=0.9, en;q=0.5", "en", "Next"},
	}

	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			l := tr.Localizer(tt.accept)
			assert.Equal(t, tt.lang, l.Lang)
			assert.Equal(t, tt.next, l.T("pagination_next"))
		})
	}
}

func TestLocalizer_TemplateDataAndPlural(t *testing.T) {
	l := newTestTranslator(t).Localizer("es")

	assert.Equal(t, "Página 3 de 5", l.TData("pagination_page_of", map[string]any{"Current": 3, "Total": 5}))
	assert.Equal(t, "1 registro", l.TPlural("list_records", 1))
	assert.Equal(t, "23 registros", l.TPlural("list_records", 23))
}

func TestLocalizer_UnknownID(t *testing.T) {
	l := newTestTranslator(t).Localizer("en")
	assert.Equal(t, "no_such_message", l.T("no_such_message"))

	var nilLocalizer *Localizer
	assert.Equal(t, "list_empty", nilLocalizer.T("list_empty"))
}

func TestMiddleware(t *testing.T) {
	tr := newTestTranslator(t)

	var got *Localizer
	h := tr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
	req.Header.Set("Accept-Language", "en")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.Equal(t, "en", got.Lang)
	assert.Equal(t, "Accept-Language", rec.Header().Get("Vary"))
	assert.Nil(t, FromContext(context.Background()))
}

func TestNew_BadLocale(t *testing.T) {
	_, err := New("not a locale!", nil)
	assert.Error(t, err)
}

func TestLocales_SameMessageIDs(t *testing.T) {
	ids := func(name string) []string {
		data, err := locales.ReadFile("locales/" + name)
		require.NoError(t, err)
		var messages map[string]any
		_, err = toml.Decode(string(data), &messages)
		require.NoError(t, err)
		out := make([]string, 0, len(messages))
		for id := range messages {
			out = append(out, id)
		}
		sort.Strings(out)
		return out
	}

	assert.Equal(t, ids("active.es.toml"), ids("active.en.toml"))
}

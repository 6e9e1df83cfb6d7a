package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
)

// Renderer manages template parsing and rendering with isolated template sets.
// It supports two layouts:
//   - "auth" layout for unauthenticated pages (login)
//   - "app" layout for authenticated pages (dashboard, lists)
//
// Templates are organized as:
//   - layouts/auth.html, layouts/app.html - base layouts
//   - components/*.html - reusable components (shared across layouts)
//   - partials/*.html - small fragments shared by pages and components
//   - pages/auth/*.html - auth pages (use auth layout)
//   - pages/*.html, pages/lists/*.html - app pages (use app layout)
type Renderer struct {
	fsys      fs.FS
	templates map[string]*template.Template
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	// FS is rooted at the templates directory: the embedded web.Templates()
	// in production, os.DirFS("web/templates") for hot reload in development.
	FS     fs.FS
	Logger *slog.Logger
	IsDev  bool
}

// pageGroup is a set of pages parsed on top of one layout.
type pageGroup struct {
	layout  string
	pattern string
	prefix  string
}

var pageGroups = []pageGroup{
	{layout: "auth", pattern: "pages/auth/*.html", prefix: "auth/"},
	{layout: "app", pattern: "pages/*.html", prefix: ""},
	{layout: "app", pattern: "pages/lists/*.html", prefix: "lists/"},
}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	r := &Renderer{
		fsys:      cfg.FS,
		templates: make(map[string]*template.Template),
		logger:    cfg.Logger,
		isDev:     cfg.IsDev,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	components, err := fs.Glob(r.fsys, "components/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob components: %w", err)
	}

	partials, err := fs.Glob(r.fsys, "partials/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob partials: %w", err)
	}

	templates := make(map[string]*template.Template)

	layouts := make(map[string]*template.Template)
	for _, name := range []string{"auth", "app"} {
		patterns := append([]string{"layouts/" + name + ".html"}, components...)
		patterns = append(patterns, partials...)

		tmpl, err := template.New(name).Funcs(TemplateFuncs()).ParseFS(r.fsys, patterns...)
		if err != nil {
			return fmt.Errorf("failed to parse %s layout: %w", name, err)
		}
		layouts[name] = tmpl
	}

	for _, group := range pageGroups {
		pages, err := fs.Glob(r.fsys, group.pattern)
		if err != nil {
			return fmt.Errorf("failed to glob %s: %w", group.pattern, err)
		}

		for _, page := range pages {
			tmpl, err := layouts[group.layout].Clone()
			if err != nil {
				return fmt.Errorf("failed to clone %s layout for %s: %w", group.layout, page, err)
			}

			tmpl, err = tmpl.ParseFS(r.fsys, page)
			if err != nil {
				return fmt.Errorf("failed to parse page %s: %w", page, err)
			}

			// Stored as "auth/login", "dashboard", "lists/reviews"
			templates[group.prefix+baseName(page)] = tmpl
		}
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()

	r.logger.Debug("templates loaded", "count", len(templates))
	return nil
}

func baseName(p string) string {
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

// Reload reloads all templates. Useful for development.
func (r *Renderer) Reload() error {
	return r.loadTemplates()
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	if r.isDev {
		if err := r.Reload(); err != nil {
			return nil, fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return tmpl, nil
}

// Render renders a page inside its layout to an io.Writer.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	tmpl, err := r.lookup(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, r.getBaseTemplateName(name), data)
}

// RenderBlock renders a single named block of a page, without the layout.
// List pages define a "list" block that htmx swaps in place.
func (r *Renderer) RenderBlock(w io.Writer, name, block string, data any) error {
	tmpl, err := r.lookup(name)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, block, data)
}

// RenderHTTP renders a page directly to an http.ResponseWriter.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data any) {
	r.renderHTTP(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return r.Render(buf, name, data)
	}, name)
}

// RenderHTTPStatus is RenderHTTP with an explicit status code.
func (r *Renderer) RenderHTTPStatus(w http.ResponseWriter, status int, name string, data any) {
	r.renderHTTP(w, status, func(buf *bytes.Buffer) error {
		return r.Render(buf, name, data)
	}, name)
}

// RenderBlockHTTP renders a page block as an htmx fragment.
func (r *Renderer) RenderBlockHTTP(w http.ResponseWriter, name, block string, data any) {
	r.renderHTTP(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return r.RenderBlock(buf, name, block, data)
	}, name+"#"+block)
}

// renderHTTP renders to a buffer first so a template error never leaves a
// half-written page behind.
func (r *Renderer) renderHTTP(w http.ResponseWriter, status int, render func(*bytes.Buffer) error, name string) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// getBaseTemplateName determines which layout template to execute.
func (r *Renderer) getBaseTemplateName(name string) string {
	if strings.HasPrefix(name, "auth/") {
		return "auth"
	}
	return "app"
}

// ListTemplates returns a list of all loaded template names.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

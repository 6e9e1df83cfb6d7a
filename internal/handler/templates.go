package handler

import (
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	twmerge "github.com/Oudwins/tailwind-merge-go"

	"github.com/DukeRupert/tesis/internal/csrf"
	"github.com/DukeRupert/tesis/internal/domain"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

// badgeClasses colours review and proposal status pills.
var badgeClasses = map[string]string{
	string(domain.ProposalStatusDraft):     "bg-gray-100 text-gray-700",
	string(domain.ReviewStatusPending):     "bg-gray-100 text-gray-700",
	string(domain.ProposalStatusSubmitted): "bg-blue-100 text-blue-800",
	string(domain.ReviewStatusObserved):    "bg-yellow-100 text-yellow-800",
	string(domain.ReviewStatusApproved):    "bg-green-100 text-green-800",
	string(domain.ReviewStatusRejected):    "bg-red-100 text-red-800",
}

// TemplateFuncs returns the helpers available to every page and component.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"cn":             twmerge.Merge,
		"ternary":        ternary,
		"formatDate":     func(t time.Time) string { return formatTime(t, dateLayout) },
		"formatDateTime": func(t time.Time) string { return formatTime(t, dateTimeLayout) },
		"truncate":       truncate,
		"initials":       initials,
		"statusColor":    statusColor,
		"csrfField":      csrfField,
		// Review bodies are run through bluemonday by the list service.
		"sanitized": func(s string) template.HTML { return template.HTML(s) },
	}
}

func ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// truncate cuts s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

// initials takes up to two leading letters from a display name, which may be
// written "Apellido, Nombre".
func initials(name string) string {
	var out []rune
	for _, word := range strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == ',' }) {
		r, _ := utf8.DecodeRuneInString(word)
		out = append(out, r)
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

func statusColor(status any) string {
	if c, ok := badgeClasses[fmt.Sprint(status)]; ok {
		return c
	}
	return "bg-gray-100 text-gray-600"
}

func csrfField(token string) template.HTML {
	return template.HTML(`<input type="hidden" name="` + csrf.FormFieldName +
		`" value="` + template.HTMLEscapeString(token) + `">`)
}

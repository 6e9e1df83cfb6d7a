package service

import (
	"strings"
	"unicode"

	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/paginate"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sort keys accepted by the list queries.
const (
	SortDate    = "date"
	SortName    = "name"
	SortStudent = "student"
	SortCode    = "code"
	SortStatus  = "status"
)

// ListParams is the search and ordering a user asked for.
type ListParams struct {
	Search string
	Sort   string
	Desc   bool
}

// fold lowercases s and strips diacritics, so "Núñez" matches "nunez".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

func containsFold(search string, fields ...string) bool {
	needle := fold(search)
	for _, f := range fields {
		if strings.Contains(fold(f), needle) {
			return true
		}
	}
	return false
}

// spanishLess orders strings the way a Spanish reader expects ("ñ" after
// "n", accents ignored at the primary level). Each query gets its own
// collator; a Collator is not safe for concurrent use.
func spanishLess[T any](key func(T) string) func(a, b T) bool {
	c := collate.New(language.Spanish, collate.IgnoreCase)
	return func(a, b T) bool {
		return c.CompareString(key(a), key(b)) < 0
	}
}

// build assembles a query, keeping Sort only when a Less exists for it.
func build[T any](p ListParams, match func(T, string) bool, sorts map[string]func(a, b T) bool) paginate.Query[T] {
	q := paginate.Query[T]{Search: p.Search, Match: match, Normalize: fold}
	if less, ok := sorts[p.Sort]; ok {
		q.Sort = p.Sort
		q.Less = less
		q.Desc = p.Desc
	}
	return q
}

// LogQuery filters log entries by user or action, ordered by date.
func LogQuery(p ListParams) paginate.Query[domain.LogEntry] {
	return build(p,
		func(l domain.LogEntry, s string) bool {
			return containsFold(s, l.UserName, l.Action, l.Detail)
		},
		map[string]func(a, b domain.LogEntry) bool{
			SortDate: func(a, b domain.LogEntry) bool { return a.CreatedAt.Before(b.CreatedAt) },
			SortName: spanishLess(func(l domain.LogEntry) string { return l.UserName }),
		})
}

func ProfessorQuery(p ListParams) paginate.Query[domain.Professor] {
	return build(p,
		func(r domain.Professor, s string) bool {
			return containsFold(s, r.FirstName, r.LastName, r.Email, r.Specialty, r.SedeName)
		},
		map[string]func(a, b domain.Professor) bool{
			SortName: spanishLess(domain.Professor.FullName),
		})
}

func CoordinatorQuery(p ListParams) paginate.Query[domain.Coordinator] {
	return build(p,
		func(r domain.Coordinator, s string) bool {
			return containsFold(s, r.FirstName, r.LastName, r.Email, r.Program, r.SedeName)
		},
		map[string]func(a, b domain.Coordinator) bool{
			SortName: spanishLess(domain.Coordinator.FullName),
		})
}

// ReviewQuery filters reviews by student code prefix, student name or
// thesis title.
func ReviewQuery(p ListParams) paginate.Query[domain.Review] {
	return build(p,
		func(r domain.Review, s string) bool {
			return strings.HasPrefix(fold(r.StudentCode), fold(s)) ||
				containsFold(s, r.StudentName, r.Title)
		},
		map[string]func(a, b domain.Review) bool{
			SortDate:    func(a, b domain.Review) bool { return a.SubmittedAt.Before(b.SubmittedAt) },
			SortStudent: spanishLess(func(r domain.Review) string { return r.StudentName }),
			SortStatus:  func(a, b domain.Review) bool { return a.Status < b.Status },
		})
}

func ProposalQuery(p ListParams) paginate.Query[domain.Proposal] {
	return build(p,
		func(r domain.Proposal, s string) bool {
			return strings.HasPrefix(fold(r.StudentCode), fold(s)) ||
				containsFold(s, r.StudentName, r.Title, r.AdvisorName)
		},
		map[string]func(a, b domain.Proposal) bool{
			SortDate:    func(a, b domain.Proposal) bool { return a.SubmittedAt.Before(b.SubmittedAt) },
			SortStudent: spanishLess(func(r domain.Proposal) string { return r.StudentName }),
			SortStatus:  func(a, b domain.Proposal) bool { return a.Status < b.Status },
		})
}

func SedeQuery(p ListParams) paginate.Query[domain.Sede] {
	return build(p,
		func(r domain.Sede, s string) bool {
			return containsFold(s, r.Name, r.City)
		},
		map[string]func(a, b domain.Sede) bool{
			SortName: spanishLess(func(r domain.Sede) string { return r.Name }),
		})
}

// CommissionQuery also matches on the names of the seated members.
func CommissionQuery(p ListParams) paginate.Query[domain.Commission] {
	return build(p,
		func(r domain.Commission, s string) bool {
			if containsFold(s, r.Name, r.SedeName) {
				return true
			}
			for _, m := range r.Members {
				if containsFold(s, m.ProfessorName) {
					return true
				}
			}
			return false
		},
		map[string]func(a, b domain.Commission) bool{
			SortDate: func(a, b domain.Commission) bool { return a.CreatedAt.Before(b.CreatedAt) },
			SortName: spanishLess(func(r domain.Commission) string { return r.Name }),
		})
}

func StudentQuery(p ListParams) paginate.Query[domain.Student] {
	return build(p,
		func(r domain.Student, s string) bool {
			return strings.HasPrefix(fold(r.Code), fold(s)) ||
				containsFold(s, r.FirstName, r.LastName, r.Email, r.Program)
		},
		map[string]func(a, b domain.Student) bool{
			SortCode: func(a, b domain.Student) bool { return a.Code < b.Code },
			SortName: spanishLess(domain.Student.FullName),
		})
}

package handler

import (
	"net/http"
	"strings"

	"github.com/DukeRupert/tesis/internal/auth"
	"github.com/DukeRupert/tesis/internal/csrf"
	"github.com/DukeRupert/tesis/internal/domain"
	"github.com/DukeRupert/tesis/internal/i18n"
)

// PageData is the common data every app-layout page receives.
type PageData struct {
	Title       string
	CurrentPath string
	Session     *domain.Session
	L           *i18n.Localizer
	CSRFToken   string
	Nav         []NavItem
	Flash       *Flash
	Data        any
}

// Flash represents a flash message to display.
type Flash struct {
	Type    string // success, error, warning, info
	Message string
}

// NavItem is one link of the sidebar.
type NavItem struct {
	Path   string
	Label  string
	Active bool
}

// listRoles gates each list, in navigation order.
var listRoles = []struct {
	name  string
	roles []domain.Role
}{
	{"logs", []domain.Role{domain.RoleAdmin}},
	{"professors", []domain.Role{domain.RoleAdmin, domain.RoleCoordinator}},
	{"coordinators", []domain.Role{domain.RoleAdmin}},
	{"reviews", []domain.Role{domain.RoleAdmin, domain.RoleCoordinator, domain.RoleProfessor, domain.RoleReviewer}},
	{"proposals", []domain.Role{domain.RoleAdmin, domain.RoleCoordinator, domain.RoleProfessor, domain.RoleStudent}},
	{"sedes", []domain.Role{domain.RoleAdmin}},
	{"commissions", []domain.Role{domain.RoleAdmin, domain.RoleCoordinator}},
	{"students", []domain.Role{domain.RoleAdmin, domain.RoleCoordinator, domain.RoleProfessor}},
}

// RolesFor returns the roles allowed to open the named list.
func RolesFor(name string) []domain.Role {
	for _, lr := range listRoles {
		if lr.name == name {
			return lr.roles
		}
	}
	return nil
}

// navFor builds the sidebar for a session, showing only the lists its role
// may open.
func navFor(sess *domain.Session, l *i18n.Localizer, currentPath string) []NavItem {
	items := []NavItem{{Path: "/dashboard", Label: l.T("nav_dashboard"), Active: currentPath == "/dashboard"}}
	if sess == nil {
		return items
	}
	for _, lr := range listRoles {
		if !sess.Role.In(lr.roles...) {
			continue
		}
		path := "/" + lr.name
		items = append(items, NavItem{
			Path:   path,
			Label:  l.T("nav_" + lr.name),
			Active: currentPath == path || strings.HasPrefix(currentPath, path+"/"),
		})
	}
	return items
}

// newPageData fills the layout fields from the request. The layout carries
// the logout form, so a CSRF token is issued when the client has none.
func newPageData(w http.ResponseWriter, r *http.Request, isSecure bool, title string, data any) PageData {
	sess := auth.GetSessionFromRequest(r)
	l := i18n.FromContext(r.Context())
	token, err := csrf.EnsureToken(w, r, isSecure)
	if err != nil {
		token = ""
	}
	return PageData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Session:     sess,
		L:           l,
		CSRFToken:   token,
		Nav:         navFor(sess, l, r.URL.Path),
		Data:        data,
	}
}

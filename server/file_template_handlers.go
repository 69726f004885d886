package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/jrsteele09/mentor-portal/identity"
	"github.com/jrsteele09/mentor-portal/internal/validation"
	"github.com/jrsteele09/mentor-portal/notify"
	"github.com/jrsteele09/mentor-portal/session"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	layoutTemplate  = "layout.html"
	contentTypeHTML = "text/html; charset=utf-8"
)

var pageTemplates = []string{
	"index.html",
	"learn_more.html",
	"signup.html",
	"confirm.html",
	"login.html",
	"loading.html",
	"profile_setup.html",
	"dashboard.html",
	"opportunity.html",
}

var templateFuncs = template.FuncMap{
	"title": func(r identity.Role) string {
		if r == identity.RoleNone {
			return ""
		}
		s := r.String()
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// PageData is the model every page template receives
type PageData struct {
	AppName       string
	Title         string
	State         session.State
	Notifications []notify.Notification
	Errors        validation.FieldErrors
	Form          map[string]string
	From          string
	Section       string
	Opportunity   string
	DegreeLevels  []string
}

type templateSet struct {
	pages map[string]*template.Template
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

func parseTemplates() (*templateSet, error) {
	set := &templateSet{pages: make(map[string]*template.Template, len(pageTemplates))}
	for _, name := range pageTemplates {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, err
		}
		set.pages[name] = tmpl
	}
	return set, nil
}

// page builds the model for the current browser session. Pending
// notifications are drained so each is shown once.
func (s *Server) page(r *http.Request, title string) PageData {
	data := PageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Form:    map[string]string{},
	}
	if entry := entryFrom(r.Context()); entry != nil {
		data.State = entry.Store.State()
		data.Notifications = entry.Notifications.Drain()
	}
	return data
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data PageData) {
	tmpl, ok := s.templates.pages[name]
	if !ok {
		log.Error().Str("template", name).Msg("Unknown template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		log.Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

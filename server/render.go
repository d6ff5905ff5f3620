package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/fioncat/gbrowse/browse"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"href":       href,
	"formatTime": browse.FormatTime,
	"relTime":    browse.RelativeTime,
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

type crumb struct {
	Name string
	Href string
}

type page struct {
	Title  string
	Path   string
	Crumbs []crumb
}

type listingPage struct {
	page

	Entries []*browse.Entry

	Ascending bool
	DirsFirst bool
}

type viewPage struct {
	page

	Size string

	Payload string
	HTML    template.HTML
}

func newPage(ent *browse.Entity) page {
	p := page{
		Title:  "/" + ent.RelPath,
		Path:   ent.RelPath,
		Crumbs: []crumb{{Name: "~", Href: "/"}},
	}
	if ent.RelPath == "" {
		return p
	}

	parts := strings.Split(ent.RelPath, "/")
	for i, part := range parts {
		p.Crumbs = append(p.Crumbs, crumb{
			Name: part,
			Href: href("", path.Join(parts[:i+1]...)),
		})
	}
	return p
}

// href builds a link under the route prefix, escaping every segment of rel.
func href(prefix, rel string) string {
	var b strings.Builder
	if prefix != "" {
		b.WriteString("/")
		b.WriteString(prefix)
	}
	b.WriteString("/")
	if rel == "" {
		return b.String()
	}
	for i, part := range strings.Split(rel, "/") {
		if i > 0 {
			b.WriteString("/")
		}
		b.WriteString(url.PathEscape(part))
	}
	return b.String()
}

// Pages carry no scripts, rendered markdown included.
const pageCSP = "script-src 'none'; object-src 'none'; base-uri 'none'"

// render executes into a buffer first, so a template error still produces a
// clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	err := s.templates.ExecuteTemplate(&buf, name, data)
	if err != nil {
		logrus.WithField("Template", name).Errorf("Render page for %q: %v", r.URL.Path, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", pageCSP)
	_, _ = buf.WriteTo(w)
}

package server

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fioncat/gbrowse/browse"
	"github.com/fioncat/gbrowse/handler"
	"github.com/fioncat/gbrowse/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	Config *types.Config

	Resolver   *browse.Resolver
	Dispatcher *handler.Dispatcher

	// Stats is optional, nil disables access statistics.
	Stats types.AccessStats
}

type Server struct {
	cfg *types.Config

	resolver   *browse.Resolver
	lister     *browse.Lister
	dispatcher *handler.Dispatcher
	registry   *handler.Registry
	stats      types.AccessStats

	templates *template.Template

	thumbDir string
}

func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg.Auth.Enabled() {
		_, err := bcrypt.Cost([]byte(cfg.Auth.Password))
		if err != nil {
			return nil, fmt.Errorf("auth password should be a bcrypt hash, generate one with the passwd command: %w", err)
		}
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:        cfg,
		resolver:   opts.Resolver,
		lister:     browse.NewLister(opts.Resolver.BrowseRoot()),
		dispatcher: opts.Dispatcher,
		registry:   opts.Dispatcher.Registry(),
		stats:      opts.Stats,
		templates:  tmpl,
		thumbDir:   filepath.Join(cfg.BaseDir, "thumbs"),
	}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	if s.cfg.MetricsListen == "" {
		mux.Handle("GET /metrics", MetricsHandler())
	}

	mux.Handle("GET /{path...}", s.requireAuth(http.HandlerFunc(s.handleBrowse)))
	mux.Handle("GET /download/{path...}", s.requireAuth(http.HandlerFunc(s.handleDownload)))
	mux.Handle("GET /raw/{path...}", s.requireAuth(http.HandlerFunc(s.handleRaw)))
	mux.Handle("GET /thumb/{path...}", s.requireAuth(http.HandlerFunc(s.handleThumb)))

	var h http.Handler = mux
	if s.cfg.Zstd {
		h = compressMiddleware(h)
	}
	h = metricsMiddleware(h)
	h = accessLogMiddleware(h)
	return withHeaders(h)
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	ent, ok := s.resolve(w, r)
	if !ok {
		return
	}

	if ent.Kind == browse.KindDirectory {
		s.serveListing(w, r, ent)
		return
	}
	s.serveFile(w, r, ent)
}

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, dir *browse.Entity) {
	entries, err := s.lister.List(dir)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recordListing(len(entries))

	query := r.URL.Query()
	ascending := query.Get("sort") != "desc"
	dirsFirst := query.Get("dirs") != "last"

	entries = browse.Sort(entries, dirsFirst, ascending)
	s.registry.Annotate(entries)

	s.render(w, r, "index.html", &listingPage{
		page:      newPage(dir),
		Entries:   entries,
		Ascending: ascending,
		DirsFirst: dirsFirst,
	})
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, file *browse.Entity) {
	content := s.dispatcher.Dispatch(r.Context(), file)
	defer content.Close()
	recordDispatch(s.registry.Lookup(file.Name()), content)

	switch content.Kind {
	case handler.ContentEmpty:
		w.WriteHeader(http.StatusNoContent)

	case handler.ContentRaw:
		s.recordAccess(file, types.AccessDownload)
		setAttachment(w, content.Filename)
		w.Header().Set("Content-Type", content.ContentType)
		http.ServeContent(w, r, content.Filename, content.ModTime, content.Body)

	case handler.ContentRender:
		s.recordAccess(file, types.AccessView)
		view := &viewPage{
			page:    newPage(file),
			Size:    humanize.IBytes(uint64(file.Size)),
			Payload: content.Payload,
		}
		if content.View == handler.ViewMarkdown {
			view.HTML = template.HTML(content.Payload)
		}
		s.render(w, r, string(content.View)+".html", view)

	default:
		s.writeError(w, r, content.Err)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	file, ok := s.resolveFile(w, r)
	if !ok {
		return
	}

	f, err := os.Open(file.Path)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("open %q: %w", file.RelPath, openError(err)))
		return
	}
	defer f.Close()

	s.recordAccess(file, types.AccessDownload)
	setAttachment(w, file.Name())
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, file.Name(), file.ModTime, f)
}

// handleRaw serves file bytes inline, used as the source of image views.
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	file, ok := s.resolveFile(w, r)
	if !ok {
		return
	}

	f, err := os.Open(file.Path)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("open %q: %w", file.RelPath, openError(err)))
		return
	}
	defer f.Close()

	ct := mime.TypeByExtension(handler.Ext(file.Name()))
	if ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	// Raw bytes must never run as a page of this site.
	w.Header().Set("Content-Security-Policy", "sandbox")
	http.ServeContent(w, r, file.Name(), file.ModTime, f)
}

func (s *Server) handleThumb(w http.ResponseWriter, r *http.Request) {
	file, ok := s.resolveFile(w, r)
	if !ok {
		return
	}
	if s.registry.Lookup(file.Name()) != handler.KindImage {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	data, err := s.thumbnail(file)
	if err != nil {
		if errors.Is(err, browse.ErrPermissionDenied) {
			s.writeError(w, r, err)
			return
		}
		logrus.Debugf("Make thumbnail for %q: %v", file.RelPath, err)
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(data)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (*browse.Entity, bool) {
	ent, err := s.resolver.Resolve(r.PathValue("path"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	if !ent.Found() {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil, false
	}
	return ent, true
}

func (s *Server) resolveFile(w http.ResponseWriter, r *http.Request) (*browse.Entity, bool) {
	ent, ok := s.resolve(w, r)
	if !ok {
		return nil, false
	}
	if ent.Kind != browse.KindFile {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil, false
	}
	return ent, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, browse.ErrPermissionDenied) {
		logrus.WithField("Path", r.URL.Path).Warnf("Permission denied: %v", err)
		http.Error(w, "permission denied", http.StatusForbidden)
		return
	}
	logrus.WithFields(logrus.Fields{
		"Path":   r.URL.Path,
		"Method": r.Method,
	}).Errorf("Handle request failed: %v", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (s *Server) recordAccess(file *browse.Entity, kind types.AccessKind) {
	if s.stats == nil {
		return
	}
	err := s.stats.Record(file.RelPath, kind, time.Now())
	if err != nil {
		logrus.Warnf("Record access for %q: %v", file.RelPath, err)
	}
}

func setAttachment(w http.ResponseWriter, name string) {
	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": name,
	})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
}

func openError(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return browse.ErrPermissionDenied
	}
	return err
}

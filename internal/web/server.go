// Package web serves a read-only browser view of the document list. It is a
// thin consumer of the render package: every request re-fetches from the
// backend and re-renders from scratch. Mutations stay in the TUI/CLI.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"doctrack-cli/internal/api"
	"doctrack-cli/internal/expiry"
	"doctrack-cli/internal/render"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

type Config struct {
	Addr   string
	Client *api.Client
	Log    *zap.Logger
}

type Server struct {
	cfg  Config
	tmpl *template.Template
	log  *zap.Logger
}

func NewServer(cfg Config) (*Server, error) {
	tmpl, err := template.ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, tmpl: tmpl, log: log}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /documents/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /{$}", s.handleHome)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.log.Info("web view listening", zap.String("addr", s.cfg.Addr))
	return http.ListenAndServe(s.cfg.Addr, s.Handler())
}

type homePage struct {
	Summary template.HTML
	Cards   template.HTML
	Filter  string
	Query   string
	APIDown bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	filter, err := expiry.ParseStatus(r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	query := r.URL.Query().Get("q")

	page := homePage{Filter: string(filter), Query: query}

	docs, err := s.cfg.Client.List(r.Context())
	if err != nil {
		s.log.Warn("list documents failed", zap.Error(err))
		page.APIDown = true
	}

	now := time.Now()
	page.Summary = template.HTML(render.SummaryBar(expiry.Count(docs, now), filter))
	page.Cards = template.HTML(render.DocumentCards(expiry.Filter(docs, filter, query, now), now))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "home.html", page); err != nil {
		s.log.Error("render home", zap.Error(err))
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "некорректный идентификатор документа", http.StatusBadRequest)
		return
	}

	entries, err := s.cfg.Client.History(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		msg := err.Error()
		if re, ok := err.(*api.RequestError); ok {
			status = re.Status
			msg = re.Detail
		}
		http.Error(w, msg, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, render.HistoryList(entries))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.cfg.Client.Health(r.Context()); err != nil {
		http.Error(w, "недоступно", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "доступно")
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(b)
}

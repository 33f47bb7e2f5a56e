// Package web serves the course finder page and its JSON API.
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"

	"coursefinder/internal/finder"
	"coursefinder/internal/umdio"
)

//go:embed templates/*.html
var templateFS embed.FS

// Finder is the search backend the handlers call.
type Finder interface {
	Resolve(ctx context.Context, criteria finder.Criteria) (*finder.Result, error)
	Semesters(ctx context.Context) ([]finder.Semester, error)
	Departments(ctx context.Context) ([]umdio.Department, error)
}

type Server struct {
	finder   Finder
	sessions sessions.Store
	origins  []string
	tmpl     *template.Template
}

func NewServer(f Finder, store sessions.Store, origins []string) *Server {
	tmpl := template.Must(template.New("index.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.html"))

	return &Server{
		finder:   f,
		sessions: store,
		origins:  origins,
		tmpl:     tmpl,
	}
}

// Handler returns the router wrapped in the access log, panic recovery, CORS and
// compression middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.indexHandler).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.searchHandler).Methods(http.MethodGet)
	api.HandleFunc("/semesters", s.semestersHandler).Methods(http.MethodGet)
	api.HandleFunc("/departments", s.departmentsHandler).Methods(http.MethodGet)

	var handler http.Handler = r
	handler = handlers.CompressHandler(handler)
	handler = handlers.CORS(
		handlers.AllowedOrigins(s.origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
	)(handler)
	handler = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(handler)
	return accessLog(handler)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

// accessLog logs one line per request, at a level picked from the status code.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		event := log.Info()
		switch {
		case metrics.Code >= 500:
			event = log.Error()
		case metrics.Code >= 400:
			event = log.Warn()
		}
		event.Str("method", r.Method).Str("path", r.URL.Path).Int("code", metrics.Code).
			Int64("written", metrics.Written).Str("duration", metrics.Duration.String()).Msg("Handled")
	})
}

// recoveryLogger routes recovered panics into zerolog.
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	log.Error().Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}

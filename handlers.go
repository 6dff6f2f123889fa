package vstore

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vstore/internal/errors"
)

// ScopeInfo describes a live scope in GET /_vstore/scopes.
type ScopeInfo struct {
	ID        string    `json:"id"`
	Stores    []string  `json:"stores"`
	CreatedAt time.Time `json:"createdAt"`
}

// Handler returns the App's HTTP handler:
//
//	GET /_vstore/scopes                  live scopes and their stores
//	GET /_vstore/scopes/{id}/hydration   hydration export of one scope
//	GET <Devtools.Path>                  devtools WebSocket (when enabled)
//	GET <Metrics.Path>                   Prometheus metrics (when enabled)
//
// The handler can be mounted on an existing chi router.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Route("/_vstore/scopes", func(r chi.Router) {
		r.Get("/", a.handleScopes)
		r.Get("/{id}/hydration", a.handleHydration)
	})

	if a.hub != nil {
		r.Get(a.config.Devtools.Path, a.hub.ServeHTTP)
	}
	if a.gatherer != nil {
		r.Method(http.MethodGet, a.config.Metrics.Path, promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (a *App) handleScopes(w http.ResponseWriter, r *http.Request) {
	scopes := a.Scopes()
	out := make([]ScopeInfo, len(scopes))
	for i, s := range scopes {
		out[i] = ScopeInfo{ID: s.ID(), Stores: s.Stores(), CreatedAt: s.Created()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) handleHydration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := a.Scope(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, err := s.Export()
	if err != nil {
		a.logger.Error("hydration export failed", "scope", id, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		e = errors.FromError(err, "E222")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(e.FormatJSON()))
}

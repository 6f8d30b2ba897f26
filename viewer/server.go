// ABOUTME: Local HTTP viewer for a run directory: live status, descriptions, and the HTML report.
// ABOUTME: Read-only over the run's files behind a chi router; refreshing the browser picks up new state.
package viewer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mediascribe/mediascribe/describe"
	"github.com/mediascribe/mediascribe/workflow"
)

// Server serves a run directory over HTTP. It holds no state of its own; every
// request reads the current files, so an in-flight run is viewable live.
type Server struct {
	rd     *workflow.RunDir
	router chi.Router
}

// NewServer creates a viewer over the given run directory.
func NewServer(rd *workflow.RunDir) *Server {
	s := &Server{rd: rd}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleReport)
	r.Get("/api/live", s.handleLive)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/descriptions", s.handleDescriptions)
	r.Get("/api/manifest", s.handleManifest)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	fmt.Fprintf(os.Stderr, "viewer listening on http://%s\n", addr)
	return http.ListenAndServe(addr, s)
}

// handleReport serves the generated HTML report, or a hint when the html step
// has not run yet.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	path := s.rd.ReportPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<p>No report yet. Run the html step to generate one.</p>")
		return
	}
	http.ServeFile(w, r, path)
}

// handleLive serves the live.json snapshot as-is.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.rd.LivePath())
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "not started"})
			return
		}
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleStatus serves the human status snapshot as plain text.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.rd.StatusPath())
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "no status yet", http.StatusNotFound)
			return
		}
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}

// handleDescriptions serves description entries as JSON, optionally filtered
// with ?q= substring matching on path and text. The sqlite index answers the
// query when present; a run that never built one falls back to parsing the
// descriptions file.
func (s *Server) handleDescriptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	entries, err := s.searchEntries(q)
	if err != nil {
		httpError(w, err)
		return
	}

	type jsonEntry struct {
		ID       string `json:"id"`
		Path     string `json:"path"`
		Provider string `json:"provider"`
		Model    string `json:"model"`
		Style    string `json:"style"`
		Time     string `json:"time"`
		Text     string `json:"text"`
	}
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, jsonEntry{
			ID: e.ID, Path: e.Path, Provider: e.Provider, Model: e.Model,
			Style: e.Style, Time: e.Time.Format("2006-01-02T15:04:05Z07:00"), Text: e.Text,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// searchEntries answers a description query from the sqlite index when one
// exists on disk. Index errors degrade to the file parse rather than failing
// the request; the descriptions file is the source of truth either way.
func (s *Server) searchEntries(q string) ([]describe.Entry, error) {
	if _, err := os.Stat(s.rd.IndexPath()); err == nil {
		if ix, err := describe.OpenIndex(s.rd.IndexPath()); err == nil {
			entries, searchErr := ix.Search(q)
			ix.Close()
			if searchErr == nil {
				return entries, nil
			}
		}
	}

	entries, err := describe.ReadEntries(s.rd.DescriptionsPath())
	if err != nil {
		return nil, err
	}
	if q == "" {
		return entries, nil
	}
	filtered := entries[:0]
	for _, e := range entries {
		if containsFold(e.Path, q) || containsFold(e.Text, q) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// handleManifest serves the structured run manifest.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	m, err := workflow.LoadManifest(s.rd.ManifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "no manifest yet", http.StatusNotFound)
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// containsFold is a case-insensitive substring check.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

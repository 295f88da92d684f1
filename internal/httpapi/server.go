package httpapi

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/pinger/internal/domain"
	apimw "github.com/hamed0406/pinger/internal/httpapi/middleware"
	"github.com/hamed0406/pinger/internal/logging"
	"github.com/hamed0406/pinger/internal/repo"
	"github.com/hamed0406/pinger/internal/repo/logfile"
)

// Server is the read-only dashboard API: live state plus the raw log files.
type Server struct {
	Logger    *zap.Logger
	AccessLog *zap.Logger
	States    repo.StateReader
	LogDir    string

	RateLimitRPM   int
	RateLimitBurst int
}

type Options struct {
	AccessLog      *zap.Logger // request log; nil disables it
	RateLimitRPM   int         // per client IP, 0 disables
	RateLimitBurst int
}

func NewServer(l *zap.Logger, states repo.StateReader, logDir string, opts Options) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{
		Logger:         l,
		AccessLog:      opts.AccessLog,
		States:         states,
		LogDir:         logDir,
		RateLimitRPM:   opts.RateLimitRPM,
		RateLimitBurst: opts.RateLimitBurst,
	}
}

type statusResponse struct {
	Monitors []domain.MonitorState `json:"monitors"`
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if s.AccessLog != nil {
		r.Use(apimw.AccessLog(s.AccessLog))
	}
	r.Use(apimw.RateLimit(s.RateLimitRPM, s.RateLimitBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type"},
		OptionsPassthrough: true,
	}))
	r.Use(noContentOnOptions)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/status", s.handleStatus)
	r.Get("/logs", s.handleLogs)
	r.Get("/logs/*", s.handleLogs)

	r.Get("/up", s.logFile(logfile.UpLogName))
	r.Get("/down", s.logFile(logfile.DownLogName))
	r.Get("/pinger", s.logFile(logging.PingerLogName))
	r.Get("/app", s.logFile(logging.AppLogName))

	return r
}

// noContentOnOptions answers every OPTIONS request, preflight or not, with
// an empty 204 once the CORS headers are set.
func noContentOnOptions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not found"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	states, err := s.States.Snapshot(r.Context())
	if err != nil {
		s.Logger.Error("status_snapshot_failed", zap.Error(err))
		http.Error(w, "status unavailable", http.StatusInternalServerError)
		return
	}
	if states == nil {
		states = []domain.MonitorState{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statusResponse{Monitors: states})
}

// handleLogs lists a directory under LogDir as a JSON array of names, or
// streams a single file as plain text.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	full, ok := resolveLogPath(s.LogDir, strings.TrimPrefix(r.URL.Path, "/logs"))
	if !ok {
		notFound(w, r)
		return
	}

	info, err := os.Stat(full)
	if err != nil {
		s.fileError(w, r, full, err)
		return
	}
	if !info.IsDir() {
		s.serveFile(w, r, full)
		return
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		s.fileError(w, r, full, err)
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(names)
}

func (s *Server) logFile(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.serveFile(w, r, filepath.Join(s.LogDir, name))
	}
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, full string) {
	f, err := os.Open(full)
	if err != nil {
		s.fileError(w, r, full, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.fileError(w, r, full, err)
		return
	}
	if info.IsDir() {
		notFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	http.ServeContent(w, r, "", info.ModTime(), f)
}

func (s *Server) fileError(w http.ResponseWriter, r *http.Request, full string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		notFound(w, r)
		return
	}
	s.Logger.Warn("log_read_error", zap.String("path", full), zap.Error(err))
	http.Error(w, "could not read log", http.StatusInternalServerError)
}

// resolveLogPath maps a URL subpath onto dir. Any ".." segment is refused
// so a request can never leave the log directory.
func resolveLogPath(dir, sub string) (string, bool) {
	var parts []string
	for _, p := range strings.Split(sub, "/") {
		switch p {
		case "", ".":
			continue
		case "..":
			return "", false
		}
		if strings.ContainsRune(p, '\\') || strings.ContainsRune(p, 0) {
			return "", false
		}
		parts = append(parts, p)
	}
	return filepath.Join(append([]string{dir}, parts...)...), true
}

// Package server exposes a backend over the typing HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/typinglab/internal/api"
	"github.com/verte-zerg/typinglab/internal/generator"
	"github.com/verte-zerg/typinglab/internal/model"
	"github.com/verte-zerg/typinglab/internal/wordlist"
)

const shutdownTimeout = 5 * time.Second

// Service is the backend the server publishes.
type Service interface {
	FetchPrompt(ctx context.Context, req api.PromptRequest) (string, error)
	Submit(ctx context.Context, id, userID string, req api.SessionRequest) (api.SessionResponse, error)
	TrainingProgress(ctx context.Context) (model.Progress, error)
	SaveTrainingProgress(ctx context.Context, mode string, level, percent int) error
}

// Config configures a Server.
type Config struct {
	Addr string
	// Token, when set, must be presented as the session cookie on
	// authenticated routes.
	Token  string
	UserID string
	// Modes lists the accepted training modes.
	Modes  []string
	Logger *zap.Logger
}

// Server is the HTTP front of a Service.
type Server struct {
	cfg     Config
	service Service
	log     *zap.Logger
	router  chi.Router
}

// New builds a server and its routes.
func New(cfg Config, service Service) *Server {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.UserID == "" {
		cfg.UserID = "local"
	}
	s := &Server{cfg: cfg, service: service, log: log}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/api/prompt", s.handlePrompt)
	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Post("/api/session_json", s.handleSession)
		r.Get("/api/training_progress", s.handleGetProgress)
		r.Post("/api/training_progress", s.handleSaveProgress)
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type ctxKey struct{}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token != "" {
			cookie, err := r.Cookie(api.SessionCookie)
			if err != nil || cookie.Value != s.cfg.Token {
				respondError(w, "not_authenticated", http.StatusUnauthorized)
				return
			}
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, s.cfg.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	words, err := strconv.Atoi(q.Get("words"))
	if err != nil {
		words = api.DefaultPromptWords
	}
	rate, err := strconv.ParseFloat(q.Get("number_rate"), 64)
	if err != nil {
		rate = 0
	}
	opts := generator.Options{Words: words, NumberRate: rate}.Clamp()
	prompt, err := s.service.FetchPrompt(r.Context(), api.PromptRequest{
		Words:      opts.Words,
		Source:     wordlist.NormalizeSource(q.Get("source")),
		NumberRate: opts.NumberRate,
	})
	if err != nil {
		s.log.Error("prompt generation failed", zap.Error(err))
		respondError(w, "prompt_failed", http.StatusInternalServerError)
		return
	}
	respondJSON(w, api.PromptResponse{Prompt: prompt}, http.StatusOK)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	var req api.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "bad_payload", http.StatusBadRequest)
		return
	}
	id := r.Header.Get(api.IdempotencyHeader)
	if id == "" {
		id = middleware.GetReqID(r.Context())
	}
	resp, err := s.service.Submit(r.Context(), id, userFrom(r.Context()), req)
	if err != nil {
		if errors.Is(err, api.ErrInvalid) {
			respondError(w, errorCode(err), http.StatusBadRequest)
			return
		}
		s.log.Error("session submission failed", zap.Error(err))
		respondError(w, "store_failed", http.StatusInternalServerError)
		return
	}
	respondJSON(w, resp, http.StatusOK)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.service.TrainingProgress(r.Context())
	if err != nil {
		s.log.Error("progress load failed", zap.Error(err))
		respondJSON(w, api.ProgressResponse{OK: false, Error: "store_failed"}, http.StatusInternalServerError)
		return
	}
	respondJSON(w, api.ProgressResponse{OK: true, Progress: filledProgress(progress, s.cfg.Modes)}, http.StatusOK)
}

func (s *Server) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	var req api.ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, api.ProgressResponse{OK: false, Error: "bad_payload"}, http.StatusBadRequest)
		return
	}
	req, err := api.ValidateProgress(req, s.cfg.Modes)
	if err != nil {
		respondJSON(w, api.ProgressResponse{OK: false, Error: errorCode(err)}, http.StatusBadRequest)
		return
	}
	if err := s.service.SaveTrainingProgress(r.Context(), req.Mode, req.Level, req.Percent); err != nil {
		s.log.Error("progress save failed", zap.Error(err))
		respondJSON(w, api.ProgressResponse{OK: false, Error: "store_failed"}, http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

// filledProgress reports every known mode with levels 1-3, zero when unset.
func filledProgress(p model.Progress, modes []string) model.Progress {
	out := model.Progress{}
	for _, mode := range modes {
		for level := 1; level <= 3; level++ {
			out.Set(mode, level, p.Percent(mode, level))
		}
	}
	return out
}

func errorCode(err error) string {
	msg := err.Error()
	prefix := api.ErrInvalid.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return "bad_payload"
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Best-effort write; the client may have gone away.
		_ = err
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]any{"ok": false, "error": message}, status)
}

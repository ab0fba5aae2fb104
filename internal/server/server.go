package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

// MaxBodyBytes bounds a chat request. Base64 audio dominates the size.
const MaxBodyBytes = 16 << 20

type Runner interface {
	Invoke(ctx context.Context, in model.TurnInput) (*model.TurnResult, error)
}

type AddressBook interface {
	SavedAddresses(ctx context.Context, userID string) ([]string, error)
}

type CatalogReloader interface {
	Reload(ctx context.Context) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Runner    Runner
	Addresses AddressBook
	Catalog   CatalogReloader
	Cache     CacheInvalidator // optional
	Checks    map[string]HealthCheck
}

type Options struct {
	JWTSecret   []byte
	TurnTimeout time.Duration
}

type Handler struct {
	deps Deps
	opts Options
}

func NewHandler(deps Deps, opts Options) *Handler {
	return &Handler{deps: deps, opts: opts}
}

// NewRouter wires middleware and routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/api/voice-order", func(r chi.Router) {
		r.Use(Authenticate(h.opts.JWTSecret))
		r.Post("/chat", h.Chat)
		r.Post("/catalog/reload", h.ReloadCatalog)
	})
	return r
}

// Chat processes one conversational turn and returns the next caller-held state.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, r, errx.Unauthorized(nil))
		return
	}

	var in model.TurnInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeError(w, r, errx.BadRequest(err, ""))
		return
	}

	addresses, err := h.deps.Addresses.SavedAddresses(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in.UserID = userID
	in.Addresses = addresses

	ctx := r.Context()
	if h.opts.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.TurnTimeout)
		defer cancel()
	}

	res, err := h.deps.Runner.Invoke(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ReloadCatalog drops the shared cache and reloads the in-process catalog.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if h.deps.Cache != nil {
		if err := h.deps.Cache.Invalidate(r.Context()); err != nil {
			logx.Warn().Err(err).Msg("catalog cache invalidation failed")
		}
	}
	if err := h.deps.Catalog.Reload(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.deps.Checks))
	for name, check := range h.deps.Checks {
		if err := check(ctx); err != nil {
			logx.Warn().Err(err).Str("check", name).Msg("health check failed")
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "up"
	}
	writeJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errx.StatusOf(err)
	evt := logx.Warn()
	if status >= http.StatusInternalServerError {
		evt = logx.Error()
	}
	evt.Err(err).Str("request_id", middleware.GetReqID(r.Context())).Int("status", status).Msg("request failed")
	writeJSON(w, status, map[string]string{"error": errx.MessageOf(err)})
}

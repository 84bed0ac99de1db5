package server

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/google/uuid"
    "go.uber.org/zap"

    "printship/internal/shipping"
)

// RateComputer is the rating engine as seen by the HTTP layer.
type RateComputer interface {
    ComputeShippingRates(ctx context.Context, req shipping.Request) (shipping.Result, error)
}

// DensityResolver maps a material id to its area density.
type DensityResolver interface {
    Density(ctx context.Context, materialID string) (float64, error)
}

// Pinger reports database liveness for /healthz.
type Pinger interface {
    Ping(ctx context.Context) error
}

// Deps wires the handlers. DB and Metrics are optional.
type Deps struct {
    Rates     RateComputer
    Densities DensityResolver
    DB        Pinger
    Metrics   http.Handler
    Logger    *zap.Logger
}

type Server struct {
    rates     RateComputer
    densities DensityResolver
    db        Pinger
    logger    *zap.Logger
}

func New(d Deps) http.Handler {
    if d.Logger == nil {
        d.Logger = zap.NewNop()
    }
    s := &Server{rates: d.Rates, densities: d.Densities, db: d.DB, logger: d.Logger}
    r := chi.NewRouter()
    r.Use(requestIDMiddleware)
    r.Use(accessLogMiddleware(d.Logger))
    r.Use(middleware.Recoverer)
    r.Get("/healthz", s.handleHealth)
    r.Post("/rates", s.handlePostRates)
    if d.Metrics != nil {
        r.Method(http.MethodGet, "/metrics", d.Metrics)
    }
    return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
    if s.db != nil {
        ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
        defer cancel()
        if err := s.db.Ping(ctx); err != nil {
            s.logger.Warn("health check: database ping failed", zap.Error(err))
            writeErrorJSON(w, http.StatusServiceUnavailable, "db_unavailable", "database unavailable")
            return
        }
    }
    w.WriteHeader(http.StatusOK)
    w.Write([]byte("ok"))
}

func (s *Server) handlePostRates(w http.ResponseWriter, r *http.Request) {
    var req RatesRequest
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    if err := dec.Decode(&req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
        return
    }
    if err := validate.Struct(req); err != nil {
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
        return
    }

    ctx := r.Context()
    shipReq, err := req.toShipping(ctx, s.densities)
    if err != nil {
        s.writeError(w, r, err)
        return
    }
    res, err := s.rates.ComputeShippingRates(ctx, shipReq)
    if err != nil {
        s.writeError(w, r, err)
        return
    }
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(res)
}

// writeError maps engine errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
    switch {
    case errors.Is(err, shipping.ErrInvalidInput):
        writeErrorJSON(w, http.StatusBadRequest, "invalid_request", err.Error())
    case errors.Is(err, shipping.ErrNoRatesAvailable):
        writeErrorJSON(w, http.StatusUnprocessableEntity, "no_rates_available", "no shipping rates available for this shipment")
    default:
        s.logger.Error("rate request failed",
            zap.String("request_id", w.Header().Get("X-Request-ID")),
            zap.String("path", r.URL.Path),
            zap.Error(err),
        )
        writeErrorJSON(w, http.StatusInternalServerError, "internal_error", "internal error")
    }
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(map[string]any{
        "error": map[string]string{
            "code":    code,
            "message": message,
        },
    })
}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
        if rid == "" {
            rid = uuid.New().String()
        }
        w.Header().Set("X-Request-ID", rid)
        next.ServeHTTP(w, r)
    })
}

func accessLogMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()
            defer func() {
                logger.Info("http request",
                    zap.String("request_id", ww.Header().Get("X-Request-ID")),
                    zap.String("method", r.Method),
                    zap.String("path", r.URL.Path),
                    zap.Int("status", ww.Status()),
                    zap.Int("bytes", ww.BytesWritten()),
                    zap.Duration("duration", time.Since(start)),
                )
            }()
            next.ServeHTTP(ww, r)
        })
    }
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/menu-catalog/internal/catalog"
	"github.com/JakeFAU/menu-catalog/internal/metrics"
	"github.com/JakeFAU/menu-catalog/internal/query"
)

// RootMessage is returned by GET /.
const RootMessage = "McDonald's Products API. Go to /docs for API documentation."

// Catalog is the read model the server depends on.
type Catalog interface {
	ListAll() []catalog.ProductRecord
	Count() int
	GetByName(name string) (catalog.ProductRecord, error)
	GetField(name, field string) (map[string]any, error)
}

// Config controls server behavior.
type Config struct {
	// RequestTimeout bounds every handler; zero uses 30s.
	RequestTimeout time.Duration
}

// Server wires HTTP handlers to the catalog.
type Server struct {
	router  chi.Router
	catalog Catalog
	logger  *zap.Logger
	ready   atomic.Bool
}

// NewServer constructs a Server with middleware and routes. The server
// reports not-ready until MarkReady is called.
func NewServer(c Catalog, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Server{
		catalog: c,
		logger:  logger.Named("api"),
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(recoverMiddleware(s.logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(timeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/", s.root)
	r.Get("/all_products", s.allProducts)
	r.Get("/products/{product_name}", s.productByName)
	r.Get("/products/{product_name}/field/{product_field}", s.productField)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// MarkReady flips readiness once the catalog has been loaded.
func (s *Server) MarkReady() {
	s.ready.Store(true)
	metrics.SetCatalogProducts(s.catalog.Count())
	s.logger.Info("Catalog ready", zap.Int("products", s.catalog.Count()))
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "products": s.catalog.Count()})
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

func (s *Server) allProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]catalog.ProductRecord{"products": s.catalog.ListAll()})
}

func (s *Server) productByName(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "product_name")
	product, err := s.catalog.GetByName(name)
	if err != nil {
		s.writeQueryError(w, err, name, "")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *Server) productField(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "product_name")
	field := pathParam(r, "product_field")
	value, err := s.catalog.GetField(name, field)
	if err != nil {
		s.writeQueryError(w, err, name, field)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

func (s *Server) writeQueryError(w http.ResponseWriter, err error, name, field string) {
	switch {
	case errors.Is(err, query.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, query.ErrFieldNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("field '%s' not found in product '%s'", field, name))
	default:
		s.logger.Error("Catalog query failed", zap.String("product", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathParam returns the decoded route parameter. chi routes on RawPath when
// it is set, so only then is the parameter still escaped.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shortlinks/internal/config"
	"shortlinks/internal/deps"
	"shortlinks/internal/http/handlers/index"
	"shortlinks/internal/http/handlers/middlewares/compressor"
	"shortlinks/internal/http/handlers/middlewares/logger"
	"shortlinks/internal/http/handlers/middlewares/recoverer"
	"shortlinks/internal/http/handlers/notfound"
	"shortlinks/internal/http/handlers/system/ping"
	"shortlinks/internal/http/handlers/url/delete_link"
	"shortlinks/internal/http/handlers/url/list"
	"shortlinks/internal/http/handlers/url/redirect"
	"shortlinks/internal/http/handlers/url/shorten"
	"shortlinks/internal/http/handlers/url/stats"
	"shortlinks/internal/http/httputils"
	"shortlinks/internal/metrics"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type Server struct {
	httpServer *http.Server
	router     *mux.Router
	log        *zerolog.Logger
	cfg        *config.Config
	publicURL  string
	links      deps.LinkService
	enricher   deps.ClickEnricher
	metrics    *metrics.Metrics
}

// NewServer собирает роутер. publicURL - уже определённый базовый адрес
// для коротких ссылок.
func NewServer(
	log *zerolog.Logger,
	cfg *config.Config,
	publicURL string,
	links deps.LinkService,
	enricher deps.ClickEnricher,
	m *metrics.Metrics,
) (*Server, error) {
	if cfg == nil || cfg.ServerAddress == "" {
		return nil, errors.New("server address cannot be empty")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if links == nil {
		return nil, errors.New("link service cannot be nil")
	}
	if enricher == nil {
		return nil, errors.New("click enricher cannot be nil")
	}

	s := &Server{
		router:    mux.NewRouter(),
		log:       log,
		cfg:       cfg,
		publicURL: publicURL,
		links:     links,
		enricher:  enricher,
		metrics:   m,
	}

	s.httpServer = &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           s.Handler(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	notFound := notfound.HandlerNotFound()
	s.router.NotFoundHandler = notFound
	s.router.MethodNotAllowedHandler = notFound

	s.router.HandleFunc("/", index.HandlerIndex()).Methods(http.MethodGet)
	s.router.HandleFunc("/ping", ping.HandlerPing(s.links, s.log)).Methods(http.MethodGet)
	s.router.HandleFunc("/r/{code}", redirect.HandlerRedirect(s.links, s.enricher, s.metrics, s.log)).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = notFound
	api.MethodNotAllowedHandler = notFound
	api.Use(compressor.MiddlewareCompressing())

	api.HandleFunc("/shorten", shorten.HandlerShorten(s.links, s.publicURL, s.log)).Methods(http.MethodPost)
	api.HandleFunc("/list", list.HandlerList(s.links, s.log)).Methods(http.MethodPost)
	api.HandleFunc("/delete", delete_link.HandlerDelete(s.links, s.log)).Methods(http.MethodPost)
	api.HandleFunc("/stats/{code}", stats.HandlerStats(s.links, s.log)).Methods(http.MethodGet)
}

// Handler возвращает роутер со всеми middleware, как его видит http.Server.
func (s *Server) Handler() http.Handler {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", httputils.HeaderContentType, httputils.HeaderRequestID},
		ExposedHeaders: []string{httputils.HeaderRequestID},
		MaxAge:         300,
	})

	// preflight на /api обрабатывается до роутинга, иначе mux ответит 404
	var h http.Handler = apiOnly(corsHandler, s.router)
	h = recoverer.MiddlewareRecover(s.log)(h)
	h = logger.MiddlewareLogging(s.log)(h)
	return h
}

func apiOnly(mw func(http.Handler) http.Handler, next http.Handler) http.Handler {
	wrapped := mw(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			wrapped.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Start(ctx context.Context) error {
	s.log.Info().Str("address", s.cfg.ServerAddress).Msg("Starting server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/product-catalog/internal/auth"
	"github.com/tuanvumaihuynh/product-catalog/internal/config"
	"github.com/tuanvumaihuynh/product-catalog/internal/health"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/middleware"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/swagger"
	"github.com/tuanvumaihuynh/product-catalog/internal/metric"
	"github.com/tuanvumaihuynh/product-catalog/internal/service"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	metrics  *metric.Metrics
	gatherer prometheus.Gatherer
	validate validator.Validator

	productSvc  service.ProductService
	healthSvc   *health.Service
	credentials auth.CredentialVerifier
	issuer      auth.TokenIssuer
	tokens      auth.TokenValidator
}

type CleanupFunc func(ctx context.Context) error

// Deps are the already-constructed collaborators the HTTP service serves.
type Deps struct {
	ProductSvc  service.ProductService
	HealthSvc   *health.Service
	Credentials auth.CredentialVerifier
	Issuer      auth.TokenIssuer
	Tokens      auth.TokenValidator
	Validator   validator.Validator

	Metrics  *metric.Metrics
	Gatherer prometheus.Gatherer
}

func New(cfg config.HTTP, log *slog.Logger, deps Deps) *Service {
	return &Service{
		cfg:         cfg,
		logger:      log.With(slog.String("service", "http")),
		metrics:     deps.Metrics,
		gatherer:    deps.Gatherer,
		validate:    deps.Validator,
		productSvc:  deps.ProductSvc,
		healthSvc:   deps.HealthSvc,
		credentials: deps.Credentials,
		issuer:      deps.Issuer,
		tokens:      deps.Tokens,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r, err := s.Router(ctx)
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, r)
}

// Router builds the fully wired handler without starting a server.
func (s *Service) Router(ctx context.Context) (chi.Router, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(ctx, r); err != nil {
			return nil, fmt.Errorf("register swagger: %w", err)
		}
	}

	s.RegisterHandlers(r)

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	products := newProductHandler(s.productSvc, s.validate)
	login := newAuthHandler(s.credentials, s.issuer, s.validate)
	healthz := newHealthHandler(s.healthSvc)

	r.Route("/api/products", func(r chi.Router) {
		r.Use(middleware.Auth(s.tokens, s.handleResponseError))

		r.Get("/", s.handle(products.ListProducts))
		r.Get("/getProductByColor", s.handle(products.ListProductsByColor))
		r.Get("/getProductById", s.handle(products.GetProductByID))
		r.Post("/createProduct", s.handle(products.CreateProduct))
		r.Put("/updateProduct", s.handle(products.UpdateProduct))
		r.Delete("/deleteProductbyId", s.handle(products.DeleteProductByID))
	})

	r.Post("/login", s.handle(login.Login))
	r.Get("/health", s.handle(healthz.Health))

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

// handlerFunc returns the response to write, or an error to translate.
type handlerFunc func(r *http.Request) (response, error)

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler")
		defer span.End()
		r = r.WithContext(ctx)

		res, err := fn(r)
		if err != nil {
			span.RecordError(err)
			s.handleResponseError(w, r, err)
			return
		}

		for k, v := range res.headers {
			w.Header().Set(k, v)
		}
		if res.body == nil {
			w.WriteHeader(res.status)
			return
		}
		s.writeJSON(w, r, res.status, res.body)
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	s.writeJSON(w, r, res.StatusCode, res)
}

func (s *Service) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}

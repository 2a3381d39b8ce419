package restserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chrissnell/cuffhold/internal/hold"
	"github.com/chrissnell/cuffhold/internal/storage"
	"github.com/chrissnell/cuffhold/pkg/config"
	"github.com/chrissnell/cuffhold/pkg/responseformat"
)

const (
	defaultListenAddr = "0.0.0.0"
	defaultPort       = 8080
)

// Controller serves the classification API over HTTP
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	classifier *hold.Classifier
	aggregator *hold.Aggregator
	deadline   time.Duration
	store      storage.ResultStore
	registry   *prometheus.Registry
	metrics    *metrics
	formatter  *responseformat.Formatter
	logger     *zap.SugaredLogger
}

// NewController creates a new REST server controller. store may be nil, in which case
// classification runs are not persisted.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, store storage.ResultStore, logger *zap.SugaredLogger) (*Controller, error) {
	rc := config.RESTServerData{}
	if cfg.REST != nil {
		rc = *cfg.REST
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Infof("rest.listen_addr not provided; defaulting to %s (all interfaces)", defaultListenAddr)
		rc.ListenAddr = defaultListenAddr
	}
	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", defaultPort)
		rc.Port = defaultPort
	}

	deadline, err := cfg.Analysis.DeadlineDuration()
	if err != nil {
		return nil, err
	}

	classifier := hold.NewClassifier(cfg.Analysis.Options())
	registry := prometheus.NewRegistry()

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		classifier: classifier,
		aggregator: hold.NewAggregator(classifier, cfg.Analysis.Workers, logger),
		deadline:   deadline,
		store:      store,
		registry:   registry,
		metrics:    newMetrics(registry),
		formatter:  responseformat.NewFormatter(),
		logger:     logger,
	}

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger.Desugar())),
	)(handlers.CompressHandler(ctrl.setupRouter()))

	return ctrl, nil
}

// StartController binds the listen address and serves in the background until the
// controller's context is cancelled. A bind failure is returned to the caller.
func (c *Controller) StartController() error {
	ln, err := net.Listen("tcp", c.Server.Addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", c.Server.Addr, err)
	}
	c.logger.Infof("starting REST server on %s", ln.Addr())
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.Serve(ln); err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			c.logger.Errorf("REST server shutdown error: %v", err)
		}
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.loggingMiddleware)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/classify", c.ClassifyBatch).Methods(http.MethodPost)
	api.HandleFunc("/thresholds", c.GetThresholds).Methods(http.MethodGet)

	router.HandleFunc("/healthz", c.Healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs every request at debug level
func (c *Controller) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		c.logger.Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

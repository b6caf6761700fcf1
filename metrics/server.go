package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/finpulse/fincache/types"
	"github.com/finpulse/fincache/utils"
)

// Server is a small fasthttp endpoint exposing the prometheus registry
// and a JSON stats view. It is observability plumbing for the host, not
// part of the cache's data path.
type Server struct {
	logger   types.Logger
	config   *types.MetricsConfig
	source   types.StatsSource
	registry *prometheus.Registry
	server   *fasthttp.Server
	running  int32
}

func NewServer(log types.Logger, config *types.MetricsConfig, source types.StatsSource) *Server {
	cfg := &types.MetricsConfig{
		Host:      "localhost",
		Port:      9091,
		Path:      "/metrics",
		Namespace: "fincache",
	}
	if config != nil {
		if config.Host != "" {
			cfg.Host = config.Host
		}
		if config.Port != 0 {
			cfg.Port = config.Port
		}
		if config.Path != "" {
			cfg.Path = config.Path
		}
		if config.Namespace != "" {
			cfg.Namespace = config.Namespace
		}
	}

	return &Server{
		logger:   log,
		config:   cfg,
		source:   source,
		registry: NewRegistry(cfg.Namespace, source, true),
	}
}

func (s *Server) Start() error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return types.ErrEngineAlreadyRunning
	}

	promHandler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.server = &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			switch string(ctx.Path()) {
			case s.config.Path:
				promHandler(ctx)
			case "/stats":
				s.handleStats(ctx)
			default:
				ctx.SetStatusCode(http.StatusNotFound)
			}
		},
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	go func() {
		if err := s.server.ListenAndServe(addr); err != nil {
			if atomic.LoadInt32(&s.running) == 1 {
				s.logger.Error("Metrics server failed", zap.Error(err))
			}
		}
	}()

	s.logger.Info("Metrics server started",
		zap.String("addr", addr),
		zap.String("path", s.config.Path))

	return nil
}

func (s *Server) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return types.ErrEngineNotRunning
	}

	if s.server != nil {
		return s.server.Shutdown()
	}

	return nil
}

func (s *Server) IsRunning() bool {
	return atomic.LoadInt32(&s.running) == 1
}

func (s *Server) handleStats(ctx *fasthttp.RequestCtx) {
	body, err := utils.Marshal(s.source.GetStats())
	if err != nil {
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

// Gather flattens the registry into name -> value pairs for debug
// dumps. Histograms and summaries are skipped; the cache exports only
// counters and gauges.
func (s *Server) Gather() (map[string]float64, error) {
	families, err := s.registry.Gather()
	if err != nil {
		return nil, types.WrapError(err, "failed to gather metrics")
	}

	out := make(map[string]float64, len(families))
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				out[family.GetName()] = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				out[family.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}

	return out, nil
}

// Package app wires configuration, adapters and the simulation engine into
// a runnable service.
package app

import (
	"context"

	"github.com/warebots/fleetsim/config"
	coreassist "github.com/warebots/fleetsim/core/assist"
	corelogger "github.com/warebots/fleetsim/core/logger"
	coremetrics "github.com/warebots/fleetsim/core/metrics"
	"github.com/warebots/fleetsim/core/notify"
	"github.com/warebots/fleetsim/core/sim"
	infraassist "github.com/warebots/fleetsim/infra/assist"
	"github.com/warebots/fleetsim/infra/logger"
	"github.com/warebots/fleetsim/infra/metrics"
	"github.com/warebots/fleetsim/internal/eventbus"
)

// Service orchestrates the simulation engine and its adapters.
type Service struct {
	Engine *sim.Engine
	Bus    eventbus.EventBus
	// Alerts is a typed view of the SafetyAlert notifications on Bus.
	Alerts      *eventbus.TypedBus[notify.SafetyAlert]
	log         corelogger.Logger
	sink        coremetrics.Sink
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.SetGlobalLevel(cfg.Logging.Level)
	logg := logger.New("service")

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics, logger.New("influx")))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()

	// Relay safety alerts onto a typed stream and surface them in the
	// service log. The goroutine exits when the bus closes.
	alerts := eventbus.NewTyped[notify.SafetyAlert]()
	sub := bus.Subscribe()
	go func() {
		for e := range sub {
			if alert, ok := e.(notify.SafetyAlert); ok {
				logg.Warnf("safety alert [%s/%s]: %s", alert.Zone, alert.Severity, alert.Message)
				alerts.Publish(alert)
			}
		}
		alerts.Close()
	}()

	var reasoner coreassist.Reasoner
	if r := infraassist.NewHTTPReasoner(cfg.Assist, logger.New("assist")); r != nil {
		reasoner = r
	}
	policy := coreassist.NewPolicy(reasoner, cfg.Assist, logger.New("assist"))

	engine := sim.New(cfg.Sim, policy, bus, sink, logger.New("sim"))

	return &Service{
		Engine:      engine,
		Bus:         bus,
		Alerts:      alerts,
		log:         logg,
		sink:        sink,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, ":"+s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	return s.Engine.Run(ctx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if closer, ok := s.sink.(interface{ Close() }); ok {
		closer.Close()
	}
	s.Bus.Close()
	return nil
}

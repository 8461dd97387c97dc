package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
)

const (
	// Namespace for all metrics
	namespace = "marssim"
	// Subsystem for simulation metrics
	subsystem = "simulation"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalSimulationCollector is the singleton simulation metrics collector
	// Set by SetGlobalSimulationCollector() when metrics are enabled
	globalSimulationCollector SimulationMetricsRecorder
)

// SimulationMetricsRecorder defines the interface for recording simulation events.
// Application code records through the package-level functions, which are
// no-ops until a collector is installed.
type SimulationMetricsRecorder interface {
	RecordPulse(elapsed float64)
	RecordSettlementStatus(status settlement.Status)
	RecordSolReport(report *settlement.SolReport)
	RecordProcessEnded(settlementName string, record function.ProcessRecord)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalSimulationCollector sets the global simulation metrics collector
func SetGlobalSimulationCollector(collector SimulationMetricsRecorder) {
	globalSimulationCollector = collector
}

// RecordPulse records one clock pulse globally
func RecordPulse(elapsed float64) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordPulse(elapsed)
	}
}

// RecordSettlementStatus records a settlement snapshot globally
func RecordSettlementStatus(status settlement.Status) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordSettlementStatus(status)
	}
}

// RecordSolReport records a finished sol globally
func RecordSolReport(report *settlement.SolReport) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordSolReport(report)
	}
}

// RecordProcessEnded records a completed or aborted workshop process globally
func RecordProcessEnded(settlementName string, record function.ProcessRecord) {
	if globalSimulationCollector != nil {
		globalSimulationCollector.RecordProcessEnded(settlementName, record)
	}
}

// Serve exposes the registry over HTTP until ctx is cancelled
func Serve(ctx context.Context, addr, path string) error {
	if Registry == nil {
		return fmt.Errorf("metrics registry not initialized")
	}
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[metrics] serving %s on %s", path, addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/marssim-go/internal/domain/function"
	"github.com/andrescamacho/marssim-go/internal/domain/settlement"
)

// SimulationMetricsCollector handles settlement and workshop metrics
type SimulationMetricsCollector struct {
	// Clock
	pulsesTotal    prometheus.Counter
	millisolsTotal prometheus.Counter

	// Settlement gauges
	powerLoadKW     *prometheus.GaugeVec
	population      *prometheus.GaugeVec
	bedsOccupied    *prometheus.GaugeVec
	vehiclesGaraged *prometheus.GaugeVec
	freeCU          *prometheus.GaugeVec
	resourceStored  *prometheus.GaugeVec

	// Sols and processes
	solsCompleted   *prometheus.CounterVec
	solAveragePower *prometheus.HistogramVec
	processesEnded  *prometheus.CounterVec
}

// NewSimulationMetricsCollector creates a new simulation metrics collector
func NewSimulationMetricsCollector() *SimulationMetricsCollector {
	return &SimulationMetricsCollector{
		pulsesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pulses_total",
			Help:      "Clock pulses delivered to the world",
		}),
		millisolsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "millisols_total",
			Help:      "Simulated time in millisols",
		}),

		powerLoadKW: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "settlement_power_load_kw",
				Help:      "Current power draw of all buildings",
			},
			[]string{"settlement"},
		),
		population: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "settlement_population",
				Help:      "Residents of the settlement",
			},
			[]string{"settlement"},
		),
		bedsOccupied: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "settlement_beds_occupied",
				Help:      "Beds currently claimed",
			},
			[]string{"settlement"},
		),
		vehiclesGaraged: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "settlement_vehicles_garaged",
				Help:      "Vehicles parked inside a garage",
			},
			[]string{"settlement"},
		),
		freeCU: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "settlement_free_cu",
				Help:      "Unused computing units across all nodes",
			},
			[]string{"settlement"},
		),
		resourceStored: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "settlement_resource_stored",
				Help:      "Stored amount (kg) or item count per resource",
			},
			[]string{"settlement", "resource"},
		),

		solsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sols_completed_total",
				Help:      "Sol reports produced",
			},
			[]string{"settlement"},
		),
		solAveragePower: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sol_average_power_kw",
				Help:      "Average power draw over a sol",
				Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
			},
			[]string{"settlement"},
		),
		processesEnded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "processes_ended_total",
				Help:      "Workshop processes ended by outcome",
			},
			[]string{"settlement", "workshop", "outcome"},
		),
	}
}

// Register registers all simulation metrics with the Prometheus registry
func (c *SimulationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.pulsesTotal,
		c.millisolsTotal,
		c.powerLoadKW,
		c.population,
		c.bedsOccupied,
		c.vehiclesGaraged,
		c.freeCU,
		c.resourceStored,
		c.solsCompleted,
		c.solAveragePower,
		c.processesEnded,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *SimulationMetricsCollector) RecordPulse(elapsed float64) {
	c.pulsesTotal.Inc()
	c.millisolsTotal.Add(elapsed)
}

func (c *SimulationMetricsCollector) RecordSettlementStatus(status settlement.Status) {
	c.powerLoadKW.WithLabelValues(status.Name).Set(status.PowerLoadKW)
	c.population.WithLabelValues(status.Name).Set(float64(status.Population))
	c.bedsOccupied.WithLabelValues(status.Name).Set(float64(status.BedsOccupied))
	c.vehiclesGaraged.WithLabelValues(status.Name).Set(float64(status.VehiclesGaraged))
	c.freeCU.WithLabelValues(status.Name).Set(status.FreeCU)
	for name, amount := range status.Resources {
		c.resourceStored.WithLabelValues(status.Name, name).Set(amount)
	}
}

func (c *SimulationMetricsCollector) RecordSolReport(report *settlement.SolReport) {
	c.solsCompleted.WithLabelValues(report.SettlementName).Inc()
	c.solAveragePower.WithLabelValues(report.SettlementName).Observe(report.AveragePowerKW)
}

func (c *SimulationMetricsCollector) RecordProcessEnded(settlementName string, record function.ProcessRecord) {
	outcome := "completed"
	if record.Premature {
		outcome = "aborted"
	}
	c.processesEnded.WithLabelValues(settlementName, record.Workshop.String(), outcome).Inc()
}

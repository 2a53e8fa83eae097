package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdc_zoning_operations_total",
			Help: "Number of coordinator operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	RemoteCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdc_zoning_remote_calls_total",
			Help: "Number of calls made to the CDC device by method, resource and result",
		},
		[]string{"method", "resource", "result"},
	)

	OrphanReferencesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cdc_zoning_orphan_references_total",
			Help: "Number of zone alias references found pointing outside member_aliases",
		},
	)

	ZoneConfigRegenerationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cdc_zoning_zone_config_regenerations_total",
			Help: "Number of times zone_config was regenerated and written",
		},
	)

	Aliases = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cdc_zoning_aliases",
			Help: "Number of aliases by partition",
		},
		[]string{"partition"},
	)

	Zones = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cdc_zoning_zones",
			Help: "Number of zones by partition",
		},
		[]string{"partition"},
	)

	ZoneGroups = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cdc_zoning_zone_groups",
			Help: "Number of zone groups",
		},
	)
)

// Result label values
const (
	ResultOK    = "ok"
	ResultError = "error"
)

func init() {
	prometheus.MustRegister(
		OperationsTotal,
		RemoteCallsTotal,
		OrphanReferencesTotal,
		ZoneConfigRegenerationsTotal,
		Aliases,
		Zones,
		ZoneGroups,
	)
}

// Result maps an error to a result label
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// SetInventory publishes the entity counts after a commit
func SetInventory(memberAliases, freeAliases, activeZones, inactiveZones, groups int) {
	Aliases.WithLabelValues("member").Set(float64(memberAliases))
	Aliases.WithLabelValues("free").Set(float64(freeAliases))
	Zones.WithLabelValues("active").Set(float64(activeZones))
	Zones.WithLabelValues("inactive").Set(float64(inactiveZones))
	ZoneGroups.Set(float64(groups))
}

package metrics

import (
	"github.com/pkg/errors"
	"slices"
	"time"
)

var (
	controllerGroupBy = []string{
		`resource.label."location"`,
		`resource.label."project_id"`,
		`resource.label."cluster_name"`,
		`resource.label."controller_name"`,
		`resource.label."namespace_name"`,
		`resource.label."container_name"`,
		`metadata.system_labels."top_level_controller_name"`,
		`metadata.system_labels."top_level_controller_type"`,
	}

	hpaGroupBy = []string{
		`resource.label."location"`,
		`resource.label."project_id"`,
		`resource.label."cluster_name"`,
		`resource.label."namespace_name"`,
		`metric.label."container_name"`,
		`metric.label."targetref_kind"`,
		`metric.label."targetref_name"`,
	}

	vpaGroupBy = []string{
		`resource.label."location"`,
		`resource.label."project_id"`,
		`resource.label."cluster_name"`,
		`resource.label."namespace_name"`,
		`metric.label."container_name"`,
		`resource.label."controller_kind"`,
		`resource.label."controller_name"`,
	}

	namespaceGroupBy = []string{`resource.label."namespace_name"`}
)

// ExcludedNamespaces lists the system namespaces that are never exported.
var ExcludedNamespaces = []string{
	"kube-system",
	"istio-system",
	"gatekeeper-system",
	"gke-system",
	"gmp-system",
	"gke-gmp-system",
	"gke-managed-filestorecsi",
	"gke-mcs",
}

// windowKind names which configured window a registry entry uses.
type windowKind int

const (
	metricWindow windowKind = iota
	latestWindow
	recommendationWindow
)

// registryEntry is the static part of a query. Windows are resolved from Config.
type registryEntry struct {
	name     string
	metricId string
	window   windowKind
	aligner  Aligner
	reducer  Reducer
	kind     ValueKind
	groupBy  []string
}

var registryEntries = []registryEntry{
	{"cpu_usage", "kubernetes.io/container/cpu/core_usage_time",
		metricWindow, AlignRate, ReducePercentile95, ValueFloat, controllerGroupBy},
	{"cpu_requested_cores", "kubernetes.io/container/cpu/request_cores",
		latestWindow, AlignMean, ReduceMean, ValueFloat, controllerGroupBy},
	{"cpu_limit_cores", "kubernetes.io/container/cpu/limit_cores",
		latestWindow, AlignMean, ReduceMean, ValueFloat, controllerGroupBy},
	{"cpu_request_utilization", "kubernetes.io/container/cpu/request_utilization",
		metricWindow, AlignMax, ReduceMax, ValueFloat, controllerGroupBy},
	{"memory_usage", "kubernetes.io/container/memory/used_bytes",
		metricWindow, AlignMax, ReduceMax, ValueFloat, controllerGroupBy},
	{"memory_requested_bytes", "kubernetes.io/container/memory/request_bytes",
		latestWindow, AlignMean, ReduceMean, ValueFloat, controllerGroupBy},
	{"memory_limit_bytes", "kubernetes.io/container/memory/limit_bytes",
		latestWindow, AlignMean, ReduceMean, ValueFloat, controllerGroupBy},
	{"memory_request_utilization", "kubernetes.io/container/memory/request_utilization",
		metricWindow, AlignMax, ReduceMax, ValueFloat, controllerGroupBy},
	{"hpa_cpu", "custom.googleapis.com/podautoscaler/hpa/cpu/target_utilization",
		latestWindow, AlignMean, ReduceMean, ValueInteger, hpaGroupBy},
	{"hpa_memory", "custom.googleapis.com/podautoscaler/hpa/memory/target_utilization",
		latestWindow, AlignMean, ReduceMean, ValueInteger, hpaGroupBy},
	{"vpa_memory_recommendation", "kubernetes.io/autoscaler/container/memory/per_replica_recommended_request_bytes",
		recommendationWindow, AlignMax, ReduceMax, ValueFloat, vpaGroupBy},
	{"vpa_cpu_recommendation", "kubernetes.io/autoscaler/container/cpu/per_replica_recommended_request_cores",
		recommendationWindow, AlignMean, ReducePercentile95, ValueFloat, vpaGroupBy},
	{"vpa_cpu_recommendation_max", "kubernetes.io/autoscaler/container/cpu/per_replica_recommended_request_cores",
		recommendationWindow, AlignMax, ReduceMax, ValueFloat, vpaGroupBy},
}

func isRegistered(name string) bool {
	return slices.ContainsFunc(registryEntries, func(e registryEntry) bool {
		return e.name == name
	})
}

// Query is a named QuerySpec.
type Query struct {
	Name string
	Spec QuerySpec
}

// Registry holds the metric queries of a run together with the namespace discovery query.
// It is built once from Config and never changes afterwards.
type Registry struct {
	namespaces QuerySpec
	queries    []Query
}

// NewRegistry builds the query registry with the windows from c.
// If c.Include is not empty, only the named metrics are registered, in registry order.
func NewRegistry(c Config) (*Registry, error) {
	windows := map[windowKind][2]time.Duration{
		metricWindow: {seconds(c.MetricWindow), seconds(c.MetricDistance)},
		// A latest value query reads a single bucket, so its distance never exceeds the window.
		latestWindow:         {seconds(c.LatestWindow), seconds(min(c.MetricDistance, c.LatestWindow))},
		recommendationWindow: {seconds(c.RecommendationWindow), seconds(c.RecommendationDistance)},
	}

	namespaces, err := NewQuerySpec(
		"kubernetes.io/container/cpu/core_usage_time",
		seconds(c.MetricWindow), seconds(c.MetricDistance),
		AlignNone, ReduceCount, ValueFloat, namespaceGroupBy)
	if err != nil {
		return nil, errors.Wrap(err, "invalid namespace discovery query")
	}

	r := &Registry{namespaces: namespaces}

	for _, e := range registryEntries {
		if len(c.Include) > 0 && !slices.Contains(c.Include, e.name) {
			continue
		}

		w := windows[e.window]
		spec, err := NewQuerySpec(e.metricId, w[0], w[1], e.aligner, e.reducer, e.kind, e.groupBy)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid query %s", e.name)
		}

		r.queries = append(r.queries, Query{Name: e.name, Spec: spec})
	}

	return r, nil
}

// Namespaces returns the query used to discover namespaces.
func (r *Registry) Namespaces() QuerySpec {
	return r.namespaces
}

// Queries returns the metric queries in registry order.
func (r *Registry) Queries() []Query {
	return slices.Clone(r.queries)
}

// Lookup returns the query registered under name.
func (r *Registry) Lookup(name string) (Query, bool) {
	for _, q := range r.queries {
		if q.Name == name {
			return q, true
		}
	}

	return Query{}, false
}

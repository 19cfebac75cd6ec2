package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HierarchyMutations counts folder/file/section mutations by outcome (ok|rejected|error).
	HierarchyMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_hierarchy_mutations_total",
			Help: "Total number of hierarchy mutations",
		},
		[]string{"entity", "operation", "result"},
	)

	// Reorders counts reorder requests per sibling kind and result (ok|stale|error).
	Reorders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_reorders_total",
			Help: "Total number of sibling reorder requests",
		},
		[]string{"kind", "result"},
	)

	// DanglingNodes counts rows whose parent could not be resolved while building a tree.
	DanglingNodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_tree_dangling_nodes_total",
			Help: "Rows promoted to roots because their parent was missing",
		},
		[]string{"kind"},
	)

	// TreeBuildDuration measures how long it takes to assemble a tree for a response.
	TreeBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyhub_tree_build_seconds",
			Help:    "Time spent loading and assembling content trees",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tree"},
	)

	// IntegrityFindings reports the latest integrity audit result per sibling kind and finding.
	IntegrityFindings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "studyhub_integrity_findings",
			Help: "Findings reported by the most recent integrity audit",
		},
		[]string{"kind", "finding"},
	)

	// MCQAnswers counts practice answers by result (correct|incorrect).
	MCQAnswers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_mcq_answers_total",
			Help: "Practice question answers by result",
		},
		[]string{"result"},
	)

	// AccessChecks counts role guard decisions.
	AccessChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_access_checks_total",
			Help: "Role guard decisions by guard and outcome",
		},
		[]string{"guard", "outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyhub_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ElementsRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osmwrangle",
		Name:      "elements_read_total",
		Help:      "OSM elements read from the input file.",
	}, []string{"kind"})

	RowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osmwrangle",
		Name:      "rows_written_total",
		Help:      "Rows written to the cache.",
	}, []string{"table"})

	RowsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osmwrangle",
		Name:      "rows_loaded_total",
		Help:      "Rows loaded into the database.",
	}, []string{"table"})

	TagsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmwrangle",
		Name:      "tags_rejected_total",
		Help:      "Tags skipped because of problem characters in the key.",
	})

	NormalizeResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "osmwrangle",
		Name:      "normalize_results_total",
		Help:      "Normalizer results by normalizer and status.",
	}, []string{"normalizer", "status"})

	ValidationViolations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "osmwrangle",
		Name:      "validation_violations_total",
		Help:      "Row fields that did not match the table schema.",
	})
)

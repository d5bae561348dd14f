package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportedRows counts rows accepted into the admin stage, labelled by the
	// upload's source tag.
	ImportedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mailstock",
		Name:      "imported_rows_total",
		Help:      "Rows accepted into the admin stage during spreadsheet import.",
	}, []string{"source"})

	// DuplicateRows counts rows rejected during import because the identifier
	// was already present in the batch or in the admin stage.
	DuplicateRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mailstock",
		Name:      "duplicate_rows_total",
		Help:      "Rows skipped during import due to duplicate identifiers.",
	})

	// SkippedRows counts rows dropped for per-row failures (empty identifier,
	// unreadable cells).
	SkippedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mailstock",
		Name:      "skipped_rows_total",
		Help:      "Rows skipped during import due to row-level failures.",
	})

	// PropagatedRecords counts records copied between stages, labelled by
	// edge: admin_to_manager, manager_to_teamlead, closed_upsert.
	PropagatedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mailstock",
		Name:      "propagated_records_total",
		Help:      "Records copied between stages by the propagation engine.",
	}, []string{"edge"})
)

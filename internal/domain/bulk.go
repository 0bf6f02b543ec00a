package domain

// OperationKind selects which bulk action a job applies
type OperationKind string

const (
	OperationDNSBulk  OperationKind = "dns_bulk"
	OperationRedirect OperationKind = "redirect"
)

// Operation is the tagged payload of a bulk job: record templates for a DNS
// run, or a single redirect template for a forwarding run.
type Operation struct {
	Kind     OperationKind    `json:"kind"`
	Records  []RecordTemplate `json:"records,omitempty"`
	Redirect RedirectTemplate `json:"redirect,omitempty"`
}

// BulkJob is one operator-initiated batch action across a set of zones
type BulkJob struct {
	Targets   []string  `json:"targets"` // zone IDs, order preserved
	Operation Operation `json:"operation"`
}

// Classification is the per-zone outcome bucket
type Classification string

const (
	// ClassSuccess: the zone's change applied cleanly
	ClassSuccess Classification = "success"
	// ClassPartial: the call was accepted but some sub-items were rejected
	ClassPartial Classification = "partial"
	// ClassError: the call itself failed; nothing usable was applied
	ClassError Classification = "error"
)

// ZoneOutcome records how a single target zone fared
type ZoneOutcome struct {
	ZoneName       string         `json:"zone_name"`
	Classification Classification `json:"classification"`
	Detail         []string       `json:"detail,omitempty"`
}

// ExecutionReport is the accumulating result of a bulk run. It is treated
// as an immutable value: each processed target produces a new report via
// Append, so progress observers always hold a consistent snapshot.
type ExecutionReport struct {
	Current int           `json:"current"`
	Total   int           `json:"total"`
	Success []ZoneOutcome `json:"success"`
	Partial []ZoneOutcome `json:"partial"`
	Error   []ZoneOutcome `json:"error"`
}

// NewExecutionReport returns the zero-progress report for a run of n targets
func NewExecutionReport(n int) ExecutionReport {
	return ExecutionReport{
		Total:   n,
		Success: []ZoneOutcome{},
		Partial: []ZoneOutcome{},
		Error:   []ZoneOutcome{},
	}
}

// Append folds one outcome into the report, returning a new value with the
// outcome added to its classification bucket and Current advanced by one.
// The receiver is not modified.
func (r ExecutionReport) Append(o ZoneOutcome) ExecutionReport {
	next := ExecutionReport{
		Current: r.Current + 1,
		Total:   r.Total,
		Success: r.Success,
		Partial: r.Partial,
		Error:   r.Error,
	}
	switch o.Classification {
	case ClassSuccess:
		next.Success = appendOutcome(r.Success, o)
	case ClassPartial:
		next.Partial = appendOutcome(r.Partial, o)
	case ClassError:
		next.Error = appendOutcome(r.Error, o)
	}
	return next
}

// Done reports whether every target has been processed
func (r ExecutionReport) Done() bool {
	return r.Total > 0 && r.Current == r.Total
}

// appendOutcome copies before appending so shared snapshots stay immutable
func appendOutcome(bucket []ZoneOutcome, o ZoneOutcome) []ZoneOutcome {
	out := make([]ZoneOutcome, len(bucket), len(bucket)+1)
	copy(out, bucket)
	return append(out, o)
}

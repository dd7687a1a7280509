package scanner

// Status classifies how completely a section was collected.
type Status int

const (
	StatusOK      Status = iota // everything collected
	StatusPartial               // a read failed part way; value holds what was gathered
	StatusEmpty                 // collection failed; value is the empty form
	StatusSkipped               // section does not apply to this host and is omitted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusEmpty:
		return "empty"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Scan.
type Outcome struct {
	Value  any
	Status Status
	Reason string
}

// SectionReport records the outcome of one section without its value.
type SectionReport struct {
	Name   string
	Status Status
	Reason string
}

// Degraded reports whether the section lost data.
func (r SectionReport) Degraded() bool {
	return r.Status == StatusPartial || r.Status == StatusEmpty
}

func collected(v any) Outcome { return Outcome{Value: v, Status: StatusOK} }

func empty(v any, err error) Outcome {
	return Outcome{Value: v, Status: StatusEmpty, Reason: err.Error()}
}

func skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

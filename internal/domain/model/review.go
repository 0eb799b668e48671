package model

// Finding is a single review observation tied to a file location.
type Finding struct {
	Path     string `json:"path"`
	Line     int    `json:"line,omitempty"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message"`
}

// ReviewResult is the structured outcome of one review execution.
type ReviewResult struct {
	Summary  string    `json:"summary"`
	Findings []Finding `json:"findings"`
}

// FindingCount returns the number of findings, safe on a nil result.
func (r *ReviewResult) FindingCount() int {
	if r == nil {
		return 0
	}
	return len(r.Findings)
}

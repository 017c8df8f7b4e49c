package models

// Summary collects pass/fail per scenario in the order scenarios were recorded
type Summary struct {
	order  []string
	result map[string]bool
}

// NewSummary creates an empty summary
func NewSummary() *Summary {
	return &Summary{result: make(map[string]bool)}
}

// Record stores the outcome for a scenario label. A later record for the same
// label only keeps a pass if every record passed.
func (s *Summary) Record(label string, passed bool) {
	prev, seen := s.result[label]
	if !seen {
		s.order = append(s.order, label)
		s.result[label] = passed
		return
	}
	s.result[label] = prev && passed
}

// RecordRun stores the outcome of a finished run
func (s *Summary) RecordRun(run *Run) {
	s.Record(run.Label(), run.IsPassed())
}

// Labels returns scenario labels in record order
func (s *Summary) Labels() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Passed returns the outcome for a label
func (s *Summary) Passed(label string) bool {
	return s.result[label]
}

// Len returns the number of recorded scenarios
func (s *Summary) Len() int {
	return len(s.order)
}

// Failed returns labels of failed scenarios in record order
func (s *Summary) Failed() []string {
	var failed []string
	for _, label := range s.order {
		if !s.result[label] {
			failed = append(failed, label)
		}
	}
	return failed
}

// AllPassed returns true when at least one scenario ran and none failed
func (s *Summary) AllPassed() bool {
	return len(s.order) > 0 && len(s.Failed()) == 0
}

// ExitCode is the process exit status for the summary
func (s *Summary) ExitCode() int {
	if s.AllPassed() {
		return 0
	}
	return 1
}

// Results returns a copy of the label to outcome map
func (s *Summary) Results() map[string]bool {
	out := make(map[string]bool, len(s.result))
	for k, v := range s.result {
		out[k] = v
	}
	return out
}

package state

import "math"

// Status is the task status reported by the status-poll endpoint.
type Status string

// Task statuses. Idle is the local value before any task is submitted; the
// rest mirror the API contract.
const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no further progress updates are expected.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Progress is the latest known task status and completion percentage.
type Progress struct {
	Status     Status
	Percentage float64
}

// StatusPollResponse is the decoded body of a task status poll. Progress is
// null until the backend starts reporting it.
type StatusPollResponse struct {
	Status   Status   `json:"status"`
	Progress *float64 `json:"progress"`
}

// ProgressState owns the task progress shown by the UI.
type ProgressState struct {
	cell *Cell[Progress]
}

// NewProgressState returns an idle state at 0%.
func NewProgressState() *ProgressState {
	return &ProgressState{cell: NewCell(Progress{Status: StatusIdle})}
}

// Current returns the progress.
func (s *ProgressState) Current() Progress {
	return s.cell.Get()
}

// SetProgress stores status and percentage. A nil percentage is stored as 0,
// as are negative and NaN values.
func (s *ProgressState) SetProgress(status Status, percentage *float64) {
	s.cell.Set(Progress{Status: status, Percentage: normalizePercentage(percentage)})
}

// ApplyPoll stores the values of a status poll response.
func (s *ProgressState) ApplyPoll(resp StatusPollResponse) {
	s.SetProgress(resp.Status, resp.Progress)
}

// Subscribe registers fn for progress changes.
func (s *ProgressState) Subscribe(fn func(Progress)) func() {
	return s.cell.Subscribe(fn)
}

func normalizePercentage(p *float64) float64 {
	if p == nil || math.IsNaN(*p) || *p < 0 {
		return 0
	}

	return *p
}

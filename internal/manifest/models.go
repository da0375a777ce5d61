package manifest

import (
	"strings"
	"time"
)

// Status tracks a request through the resolution lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusMatching  Status = "matching"
	StatusResolved  Status = "resolved"
	StatusAmbiguous Status = "ambiguous"
	StatusNotFound  Status = "not_found"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusMatching,
	StatusResolved,
	StatusAmbiguous,
	StatusNotFound,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status is a final outcome.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusResolved, StatusAmbiguous, StatusNotFound, StatusFailed:
		return true
	default:
		return false
	}
}

// Entry is one phrase request persisted in the manifest database.
type Entry struct {
	ID             int64
	RunID          string
	Recording      string
	Phrase         string
	Translation    string
	Occurrence     int
	Line           int
	Status         Status
	Method         string
	ClipStart      float64
	ClipEnd        float64
	ClipPath       string
	CandidatesJSON string
	Suspicious     bool
	SuspiciousNote string
	FailureReason  string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SetResolved records a successful resolution and its clip artifact.
func (e *Entry) SetResolved(method string, start, end float64, clipPath string) {
	e.Status = StatusResolved
	e.Method = method
	e.ClipStart = start
	e.ClipEnd = end
	e.ClipPath = clipPath
	e.FailureReason = ""
	e.ErrorMessage = ""
}

// SetAmbiguous records multiple equally plausible candidates. The candidate
// spans are carried as JSON so report output can show them verbatim.
func (e *Entry) SetAmbiguous(candidatesJSON string) {
	e.Status = StatusAmbiguous
	e.CandidatesJSON = candidatesJSON
	e.ClipPath = ""
}

// SetNotFound marks a phrase that matched nothing in its recording.
func (e *Entry) SetNotFound() {
	e.Status = StatusNotFound
	e.ClipPath = ""
}

// SetFailed marks the entry failed with a machine-readable reason and a
// human-readable message.
func (e *Entry) SetFailed(reason, message string) {
	e.Status = StatusFailed
	e.FailureReason = reason
	e.ErrorMessage = message
	e.ClipPath = ""
}

// Summary aggregates per-status counts for one run.
type Summary struct {
	RunID      string
	Total      int
	Pending    int
	Resolved   int
	Ambiguous  int
	NotFound   int
	Failed     int
	Suspicious int
}

// Candidate is the JSON shape stored for ambiguous entries.
type Candidate struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Score  float64 `json:"score"`
	Method string  `json:"method"`
}

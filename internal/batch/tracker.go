package batch

import "sync"

// Result is the terminal outcome of one message in a batch.
type Result struct {
	Index   int    `json:"index"`
	Payload string `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the send ended in error.
func (r Result) Failed() bool { return r.Error != "" }

// Summary aggregates the outcomes of one batch invocation.
// Results are in completion arrival order, which can differ from
// initiation order when in-flight sends race.
type Summary struct {
	Total   int      `json:"total"`
	Sent    int      `json:"sent"`
	Errors  int      `json:"errors"`
	Results []Result `json:"results"`
}

// Complete reports whether every message reached a terminal state.
// False means the completion wait timed out with sends outstanding.
func (s *Summary) Complete() bool {
	return s.Sent+s.Errors == s.Total
}

// tracker is the single mutable aggregate the completion goroutines
// write into. Counters only increase.
type tracker struct {
	mu      sync.Mutex
	summary Summary
}

func newTracker(total int) *tracker {
	return &tracker{summary: Summary{
		Total:   total,
		Results: make([]Result, 0, total),
	}}
}

// record registers the terminal state of message index. Called exactly
// once per message, from its completion goroutine.
func (t *tracker) record(index int, payload string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res := Result{Index: index, Payload: payload}
	if err != nil {
		res.Error = err.Error()
		t.summary.Errors++
	} else {
		t.summary.Sent++
	}
	t.summary.Results = append(t.summary.Results, res)
}

// terminal returns how many messages have reached a terminal state.
func (t *tracker) terminal() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary.Sent + t.summary.Errors
}

// counts returns the current sent/error tallies for progress reporting.
func (t *tracker) counts() (sent, errors int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary.Sent, t.summary.Errors
}

// snapshot copies the summary so callers can read it without holding
// the tracker lock. Run hands out one snapshot at the end; after that
// the tracker is garbage.
func (t *tracker) snapshot() *Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.summary
	out.Results = append([]Result(nil), t.summary.Results...)
	return &out
}

package batch

import "time"

// Progress reporting periods. Human-readable output updates faster than
// structured output, which is meant for log pipelines.
const (
	ProgressIntervalText = 1 * time.Second
	ProgressIntervalJSON = 2 * time.Second
)

// startReporter fires fn with the current counts on a fixed ticker until
// the returned stop function is called. stop is idempotent and waits for
// the reporter goroutine to exit, so no progress callback runs after it
// returns.
func startReporter(tr *tracker, fn func(sent, errors, total int), interval time.Duration) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})
	total := tr.summary.Total

	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				sent, errors := tr.counts()
				fn(sent, errors, total)
			}
		}
	}()

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(done)
		<-exited
	}
}

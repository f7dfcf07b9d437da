package batch

import (
	"errors"
	"sync"
	"testing"
)

func TestTracker_ConcurrentRecords(t *testing.T) {
	const total = 100
	tr := newTracker(total)

	var wg sync.WaitGroup
	for i := 1; i <= total; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if i%4 == 0 {
				err = errors.New("boom")
			}
			tr.record(i, "", err)
		}()
	}
	wg.Wait()

	sum := tr.snapshot()
	if sum.Sent != 75 || sum.Errors != 25 {
		t.Errorf("expected sent=75 errors=25, got sent=%d errors=%d", sum.Sent, sum.Errors)
	}
	if len(sum.Results) != total {
		t.Errorf("expected %d results, got %d", total, len(sum.Results))
	}
	if !sum.Complete() {
		t.Error("expected complete summary")
	}
}

func TestTracker_SnapshotIsDetached(t *testing.T) {
	tr := newTracker(2)
	tr.record(1, "a", nil)

	sum := tr.snapshot()
	tr.record(2, "b", nil)

	if len(sum.Results) != 1 {
		t.Errorf("snapshot grew after later records: %d results", len(sum.Results))
	}
	if got := tr.terminal(); got != 2 {
		t.Errorf("expected 2 terminal, got %d", got)
	}
}

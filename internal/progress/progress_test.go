package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTrackerConcurrentTicks(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(&buf, "Analyzing", 50)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Tick()
		}()
	}
	wg.Wait()

	if got := tr.bar.State().CurrentNum; got != 50 {
		t.Errorf("CurrentNum = %d, want 50", got)
	}
	tr.FinishSuccess()
}

func TestTrackerStep(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(&buf, "Analyzing", 2)
	tr.Step(1, 2, "a.py")
	tr.Step(2, 2, "b.py")

	if got := tr.bar.State().CurrentNum; got != 2 {
		t.Errorf("CurrentNum = %d, want 2", got)
	}
}

func TestFinishRejected(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(&buf, "Analyzing", 3)
	tr.FinishRejected(1, 3)
	if !strings.Contains(buf.String(), "1 of 3 files could not be analyzed") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	tr = NewTracker(&buf, "Analyzing", 3)
	tr.FinishRejected(0, 3)
	if strings.Contains(buf.String(), "could not be analyzed") {
		t.Errorf("unexpected rejection message: %q", buf.String())
	}
}

func TestFinishError(t *testing.T) {
	var buf bytes.Buffer
	sp := NewSpinner(&buf, "Estimating")
	sp.FinishError(errors.New("rate limited"))
	if !strings.Contains(buf.String(), "Estimating error: rate limited") {
		t.Errorf("output = %q", buf.String())
	}
}

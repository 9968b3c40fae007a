package engine

import (
	"testing"
	"time"
)

func TestEpisodeTracker_FiresOncePerEpisode(t *testing.T) {
	tr := NewEpisodeTracker(10*time.Second, 30*time.Second)
	base := time.Date(2026, 1, 5, 3, 0, 0, 0, time.UTC)

	// First tick starts the episode, nothing qualifies yet
	if tr.Observe("input", base, true) {
		t.Error("first tick should not qualify")
	}
	if tr.Observe("input", base.Add(5*time.Second), true) {
		t.Error("tick before sustain threshold should not qualify")
	}

	// Threshold reached
	if !tr.Observe("input", base.Add(10*time.Second), true) {
		t.Error("tick at sustain threshold should qualify")
	}

	// Same episode never fires again
	if tr.Observe("input", base.Add(15*time.Second), true) {
		t.Error("episode fired twice")
	}
	if tr.Observe("input", base.Add(40*time.Second), true) {
		t.Error("episode fired twice after continued activity")
	}
}

func TestEpisodeTracker_QuietGapStartsNewEpisode(t *testing.T) {
	tr := NewEpisodeTracker(10*time.Second, 30*time.Second)
	base := time.Date(2026, 1, 5, 3, 0, 0, 0, time.UTC)

	tr.Observe("input", base, true)
	if !tr.Observe("input", base.Add(10*time.Second), true) {
		t.Fatal("first episode should fire at threshold")
	}

	// A gap longer than quiet resets state; the next tick starts fresh
	next := base.Add(10*time.Second + 31*time.Second)
	if tr.Observe("input", next, true) {
		t.Error("first tick of new episode should not qualify")
	}
	if !tr.Observe("input", next.Add(10*time.Second), true) {
		t.Error("second episode should fire at its own threshold")
	}
}

func TestEpisodeTracker_GapWithinQuietContinuesEpisode(t *testing.T) {
	tr := NewEpisodeTracker(10*time.Second, 30*time.Second)
	base := time.Date(2026, 1, 5, 3, 0, 0, 0, time.UTC)

	tr.Observe("input", base, true)
	// 20s gap is within the 30s quiet threshold, episode continues
	if !tr.Observe("input", base.Add(20*time.Second), true) {
		t.Error("episode spanning a sub-quiet gap should qualify once past sustain")
	}
}

func TestEpisodeTracker_StaysArmedUntilInsideWindow(t *testing.T) {
	tr := NewEpisodeTracker(10*time.Second, 30*time.Second)
	// Activity starts just before an away window opens
	base := time.Date(2026, 1, 5, 2, 59, 45, 0, time.UTC)

	// Over-threshold ticks outside the window must not consume the
	// episode's one shot
	for i := 0; i < 3; i++ {
		if tr.Observe("input", base.Add(time.Duration(i)*5*time.Second), false) {
			t.Fatalf("tick %d outside the window qualified", i)
		}
	}

	// First over-threshold tick inside the window qualifies
	if !tr.Observe("input", base.Add(15*time.Second), true) {
		t.Error("first over-threshold tick inside the window should qualify")
	}
	// Still only once per episode
	if tr.Observe("input", base.Add(20*time.Second), true) {
		t.Error("episode fired twice")
	}
}

func TestEpisodeTracker_SourcesAreIndependent(t *testing.T) {
	tr := NewEpisodeTracker(10*time.Second, 30*time.Second)
	base := time.Date(2026, 1, 5, 3, 0, 0, 0, time.UTC)

	tr.Observe("a", base, true)
	tr.Observe("b", base.Add(5*time.Second), true)

	if !tr.Observe("a", base.Add(10*time.Second), true) {
		t.Error("source a should fire at its threshold")
	}
	if tr.Observe("b", base.Add(10*time.Second), true) {
		t.Error("source b has only sustained 5s")
	}
	if !tr.Observe("b", base.Add(15*time.Second), true) {
		t.Error("source b should fire at its own threshold")
	}
}

func TestEpisodeTracker_ActiveFor(t *testing.T) {
	tr := NewEpisodeTracker(10*time.Second, 30*time.Second)
	base := time.Date(2026, 1, 5, 3, 0, 0, 0, time.UTC)

	if got := tr.ActiveFor("input", base); got != 0 {
		t.Errorf("ActiveFor with no episode = %v, want 0", got)
	}

	tr.Observe("input", base, true)
	tr.Observe("input", base.Add(12*time.Second), true)

	if got := tr.ActiveFor("input", base.Add(12*time.Second)); got != 12*time.Second {
		t.Errorf("ActiveFor = %v, want 12s", got)
	}

	// After the quiet gap the episode is gone
	if got := tr.ActiveFor("input", base.Add(50*time.Second)); got != 0 {
		t.Errorf("ActiveFor after quiet gap = %v, want 0", got)
	}
}

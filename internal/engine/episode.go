package engine

import "time"

// episodeState tracks one source's current activity episode. An episode
// is a maximal continuous span of input activity; a gap longer than the
// quiet threshold ends it.
type episodeState struct {
	start time.Time
	last  time.Time
	fired bool
}

// EpisodeTracker turns a stream of input-activity observations into
// at-most-one "sustained activity" signal per episode.
type EpisodeTracker struct {
	sustain time.Duration
	quiet   time.Duration
	states  map[string]*episodeState
}

// NewEpisodeTracker creates a tracker. sustain is how long continuous
// activity must persist before it qualifies; quiet is the inactivity gap
// that ends an episode.
func NewEpisodeTracker(sustain, quiet time.Duration) *EpisodeTracker {
	return &EpisodeTracker{
		sustain: sustain,
		quiet:   quiet,
		states:  make(map[string]*episodeState),
	}
}

// Observe records an activity tick for source at time t and reports
// whether this tick qualifies as sustained activity: the episode has
// lasted at least the sustain threshold and the tick falls inside an
// away window. An over-threshold tick outside a window keeps the
// episode armed, so activity that starts before a window opens still
// qualifies on its first tick inside one. At most one tick per episode
// qualifies.
func (e *EpisodeTracker) Observe(source string, t time.Time, away bool) bool {
	st := e.states[source]
	if st == nil || t.Sub(st.last) > e.quiet {
		st = &episodeState{start: t}
		e.states[source] = st
	}
	st.last = t

	if st.fired || !away || t.Sub(st.start) < e.sustain {
		return false
	}
	st.fired = true
	return true
}

// ActiveFor returns how long the source's current episode has lasted at
// time t, or zero when no episode is live.
func (e *EpisodeTracker) ActiveFor(source string, t time.Time) time.Duration {
	st := e.states[source]
	if st == nil || t.Sub(st.last) > e.quiet {
		return 0
	}
	return t.Sub(st.start)
}

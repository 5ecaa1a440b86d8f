package testutil

import "sync"

// Change is one recorded SlideChanged call.
type Change struct {
	Current int
	Total   int
}

// Recorder implements slides.Presenter and keeps every change.
type Recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *Recorder) SlideChanged(current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, Change{Current: current, Total: total})
}

// Changes returns a copy of the recorded changes.
func (r *Recorder) Changes() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

// Last returns the most recent change and whether there was one.
func (r *Recorder) Last() (Change, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.changes) == 0 {
		return Change{}, false
	}
	return r.changes[len(r.changes)-1], true
}

package schedule

import "time"

// Manual is a Scheduler driven by virtual time. Nothing runs until Advance is
// called, and everything runs on the caller's goroutine. Tests use it to step
// through delays deterministically.
type Manual struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m   *Manual
	at  time.Duration
	seq int
	f   func()
}

// NewManual returns a scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, f func()) Task {
	m.seq++
	t := &manualTask{m: m, at: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Stop() bool {
	return t.m.remove(t)
}

func (m *Manual) remove(t *manualTask) bool {
	for i, p := range m.tasks {
		if p == t {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves virtual time forward by d, running every task that falls due
// in time order. Tasks scheduled while advancing run too if they fall due
// before the new time.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.next(target)
		if next == nil {
			break
		}
		m.remove(next)
		m.now = next.at
		next.f()
	}
	m.now = target
}

func (m *Manual) next(until time.Duration) *manualTask {
	var best *manualTask
	for _, t := range m.tasks {
		if t.at > until {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of scheduled tasks that have not run or been stopped.
func (m *Manual) Pending() int {
	return len(m.tasks)
}

package monitor

// Task is one scheduled action with a fixed-phase cadence. A task is idle
// until its due time elapses, fires exactly once, and re-arms by advancing
// the due time one period from its previous value.
type Task struct {
	Name     string
	PeriodMs uint32
	Action   func()

	nextDue int64 // ms, same clock as Schedule.nowMs
}

// NextDueMs exposes the current due time (for diagnostics and tests).
func (t *Task) NextDueMs() int64 { return t.nextDue }

// Schedule is a due-time table driving independently paced tasks from one
// millisecond clock. It is strictly single-threaded: Tick runs actions
// inline, so an overrunning action delays later tasks in scan order for
// that iteration only.
type Schedule struct {
	nowMs func() int64
	tasks []*Task
}

// NewSchedule creates an empty schedule reading time from nowMs. The clock
// is injected so tests can advance time synthetically.
func NewSchedule(nowMs func() int64) *Schedule {
	return &Schedule{nowMs: nowMs}
}

// Add appends a task; scan order is add order.
func (s *Schedule) Add(name string, periodMs uint32, action func()) *Task {
	t := &Task{Name: name, PeriodMs: periodMs, Action: action}
	s.tasks = append(s.tasks, t)
	return t
}

// Arm sets every task's first due time to now plus its period.
func (s *Schedule) Arm() {
	now := s.nowMs()
	for _, t := range s.tasks {
		t.nextDue = now + int64(t.PeriodMs)
	}
}

// Tick reads the clock once, then fires every elapsed task once in scan
// order. The due time advances by exactly one period from its previous
// value, never from "now": a firing delayed by a slow earlier action keeps
// its original cadence, and a loop that falls far behind catches up with
// back-to-back firings on subsequent ticks. Returns the number of firings.
func (s *Schedule) Tick() int {
	now := s.nowMs()
	fired := 0
	for _, t := range s.tasks {
		if now >= t.nextDue {
			t.Action()
			t.nextDue += int64(t.PeriodMs)
			fired++
		}
	}
	return fired
}

// Package progress carries status updates from long-running grid
// algorithms to whoever is watching them.
package progress

// Event describes the state of an algorithm at one point of its run.
type Event struct {
	// Source names the emitting algorithm, e.g. "watershed".
	Source string
	// Status is a short description of the current phase.
	Status string
	// Step and Total measure completion in algorithm-specific units
	// (usually voxels). Total is 0 for pure status messages.
	Step, Total float64
}

// Ratio returns Step/Total, or 0 for status-only events.
func (e Event) Ratio() float64 {
	if e.Total == 0 {
		return 0
	}
	return e.Step / e.Total
}

// Func receives progress events. It is called synchronously from the
// algorithm's goroutine and must not block.
type Func func(Event)

// Emit calls f with the event if f is not nil.
func (f Func) Emit(e Event) {
	if f != nil {
		f(e)
	}
}

// Reporter throttles step events so that at most about 100 are emitted per
// run.
type Reporter struct {
	f      Func
	source string
	status string
	total  int
	every  int
	next   int
}

// NewReporter returns a Reporter announcing total units of work.
func NewReporter(f Func, source, status string, total int) *Reporter {
	every := total / 100
	if every < 1 {
		every = 1
	}
	return &Reporter{f: f, source: source, status: status, total: total, every: every, next: every}
}

// Status switches to a new phase and emits a status-only event. Later step
// events carry the new status.
func (r *Reporter) Status(status string) {
	r.status = status
	r.f.Emit(Event{Source: r.source, Status: status})
}

// Step records that done units are complete, emitting an event when a new
// percent boundary is crossed.
func (r *Reporter) Step(done int) {
	if r.f == nil || done < r.next {
		return
	}
	r.next = done + r.every
	r.f(Event{Source: r.source, Status: r.status, Step: float64(done), Total: float64(r.total)})
}

// Done emits the final 100% event.
func (r *Reporter) Done() {
	r.f.Emit(Event{Source: r.source, Status: r.status, Step: float64(r.total), Total: float64(r.total)})
}

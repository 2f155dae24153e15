package timecode

import "sync"

// AdvisoryCode identifies the kind of advisory.
type AdvisoryCode string

const (
	// AdvisoryNonDropDrift is raised when a long duration at a drop-frame
	// rate is forced to non-drop labels, which drift from wall-clock time.
	AdvisoryNonDropDrift AdvisoryCode = "non_drop_drift"
	// AdvisoryRateMismatch is raised when a drop-frame label is converted
	// with a rate that has no drop-frame form.
	AdvisoryRateMismatch AdvisoryCode = "rate_mismatch"
	// AdvisoryValidationWarning carries a non-fatal validation finding.
	AdvisoryValidationWarning AdvisoryCode = "validation_warning"
)

// Advisory is an informational finding. Advisories never change the value
// returned by a conversion.
type Advisory struct {
	Code    AdvisoryCode `json:"code"`
	Message string       `json:"message"`
}

// Sink receives advisories.
type Sink interface {
	Advise(Advisory)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Advisory)

// Advise calls f(a).
func (f SinkFunc) Advise(a Advisory) { f(a) }

// Discard is a Sink that drops every advisory.
var Discard Sink = SinkFunc(func(Advisory) {})

type multiSink []Sink

func (m multiSink) Advise(a Advisory) {
	for _, s := range m {
		s.Advise(a)
	}
}

// MultiSink fans advisories out to every non-nil sink.
func MultiSink(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Recorder collects advisories in memory. It is safe for concurrent use.
type Recorder struct {
	mu         sync.Mutex
	advisories []Advisory
}

// Advise implements Sink.
func (r *Recorder) Advise(a Advisory) {
	r.mu.Lock()
	r.advisories = append(r.advisories, a)
	r.mu.Unlock()
}

// Advisories returns a copy of everything recorded so far.
func (r *Recorder) Advisories() []Advisory {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Advisory, len(r.advisories))
	copy(out, r.advisories)
	return out
}

// Reset forgets recorded advisories.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.advisories = nil
	r.mu.Unlock()
}

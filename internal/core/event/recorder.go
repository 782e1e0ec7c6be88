package event

import (
	"sync"

	"github.com/goccy/go-json"
)

// Record is one delivered event.
type Record struct {
	Name    string
	Payload []byte
}

// Decode unmarshals the payload into v.
func (r Record) Decode(v any) error {
	return json.Unmarshal(r.Payload, v)
}

// Recorder is a Sink that keeps every delivered event. Used by tests and by
// the headless tooling that inspects engine output.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Deliver(name string, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	r.records = append(r.records, Record{Name: name, Payload: cp})
}

// All returns a copy of every record.
func (r *Recorder) All() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Named returns records with the given event name, oldest first.
func (r *Recorder) Named(name string) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Record
	for _, rec := range r.records {
		if rec.Name == name {
			out = append(out, rec)
		}
	}
	return out
}

// Last returns the most recent record with the given name.
func (r *Recorder) Last(name string) (Record, bool) {
	named := r.Named(name)
	if len(named) == 0 {
		return Record{}, false
	}
	return named[len(named)-1], true
}

// Reset drops all records.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

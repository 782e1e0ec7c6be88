package event

import (
	"sync"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Sink receives encoded outbound events. Deliver must not block the game
// loop; transport sinks hand the bytes to their own writer goroutines.
type Sink interface {
	Deliver(name string, payload []byte)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(name string, payload []byte)

func (f SinkFunc) Deliver(name string, payload []byte) { f(name, payload) }

type pending struct {
	name    string
	payload any
}

// Outbox buffers events emitted during a tick. Flush is called once per tick
// by OutputSystem and delivers everything in emission order.
// Emit and Flush are game-loop only; only sink registration is locked.
type Outbox struct {
	mu      sync.RWMutex
	sinks   []Sink
	buf     []pending
	log     *zap.Logger
	emitted uint64
}

func NewOutbox(log *zap.Logger) *Outbox {
	return &Outbox{
		buf: make([]pending, 0, 32),
		log: log,
	}
}

// AddSink registers a consumer for every subsequently flushed event.
func (o *Outbox) AddSink(s Sink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, s)
}

// RemoveSink drops a previously registered sink.
func (o *Outbox) RemoveSink(s Sink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, existing := range o.sinks {
		if existing == s {
			o.sinks = append(o.sinks[:i], o.sinks[i+1:]...)
			return
		}
	}
}

// Emit queues a named event. The payload is encoded at flush time, so it must
// not be mutated after the call.
func (o *Outbox) Emit(name string, payload any) {
	o.buf = append(o.buf, pending{name: name, payload: payload})
}

// Pending returns the number of events waiting for the next flush.
func (o *Outbox) Pending() int { return len(o.buf) }

// Emitted returns the number of events delivered since creation.
func (o *Outbox) Emitted() uint64 { return o.emitted }

// Flush encodes and delivers all buffered events, then clears the buffer.
func (o *Outbox) Flush() {
	if len(o.buf) == 0 {
		return
	}
	o.mu.RLock()
	sinks := o.sinks
	o.mu.RUnlock()

	for _, ev := range o.buf {
		data, err := json.Marshal(ev.payload)
		if err != nil {
			o.log.Error("event encode failed", zap.String("event", ev.name), zap.Error(err))
			continue
		}
		for _, s := range sinks {
			s.Deliver(ev.name, data)
		}
		o.emitted++
	}
	clear(o.buf)
	o.buf = o.buf[:0]
}

package command

import "sync"

// Queue holds per-domain FIFO request lists. Producers (the dispatcher on
// network goroutines, background store I/O) append; the owning system drains
// once per tick on the game loop goroutine.
type Queue struct {
	mu    sync.Mutex
	lists [domainCount][]Request
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends r to its domain list. Never blocks on the consumer.
func (q *Queue) Enqueue(r Request) {
	d := r.Domain()
	q.mu.Lock()
	q.lists[d] = append(q.lists[d], r)
	q.mu.Unlock()
}

// Drain returns every request queued for d since the last drain, in insertion
// order, and empties the list.
func (q *Queue) Drain(d Domain) []Request {
	q.mu.Lock()
	out := q.lists[d]
	q.lists[d] = nil
	q.mu.Unlock()
	return out
}

// Len reports how many requests are waiting in d.
func (q *Queue) Len(d Domain) int {
	q.mu.Lock()
	n := len(q.lists[d])
	q.mu.Unlock()
	return n
}

// Total reports the number of waiting requests across all domains.
func (q *Queue) Total() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, l := range q.lists {
		n += len(l)
	}
	return n
}

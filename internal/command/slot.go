package command

import (
	"errors"
	"sync/atomic"
)

var (
	ErrNotInitialized    = errors.New("command queue not initialized")
	ErrAlreadyRegistered = errors.New("command queue already registered")
)

// Slot is the process-wide access point to the queue. It is registered once
// at startup; producers that arrive earlier get ErrNotInitialized.
type Slot struct {
	q atomic.Pointer[Queue]
}

func (s *Slot) Register(q *Queue) error {
	if !s.q.CompareAndSwap(nil, q) {
		return ErrAlreadyRegistered
	}
	return nil
}

// Unregister clears the slot on teardown.
func (s *Slot) Unregister() {
	s.q.Store(nil)
}

func (s *Slot) Registered() bool {
	return s.q.Load() != nil
}

// Enqueue forwards r to the registered queue.
func (s *Slot) Enqueue(r Request) error {
	q := s.q.Load()
	if q == nil {
		return ErrNotInitialized
	}
	q.Enqueue(r)
	return nil
}

// Queue returns the registered queue or ErrNotInitialized.
func (s *Slot) Queue() (*Queue, error) {
	q := s.q.Load()
	if q == nil {
		return nil, ErrNotInitialized
	}
	return q, nil
}

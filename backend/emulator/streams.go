package emulator

import (
	"sync"

	"github.com/gomlx/tfhecuda/backend"
)

// stream is an unbounded FIFO queue of operations, executed in order by one goroutine.
type stream struct {
	handle   backend.StreamHandle
	gpuIndex uint32

	mu      sync.Mutex
	cond    *sync.Cond // Signaled on any change of pending, busy or closed.
	pending []func()
	busy    bool
	closed  bool
	done    chan struct{}
}

func newStream(handle backend.StreamHandle, gpuIndex uint32) *stream {
	s := &stream{
		handle:   handle,
		gpuIndex: gpuIndex,
		done:     make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.loop()
	return s
}

// enqueue never blocks.
func (s *stream) enqueue(op func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, op)
	s.cond.Broadcast()
}

func (s *stream) loop() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.pending) == 0 {
			// Closed and drained.
			s.mu.Unlock()
			return
		}
		op := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		s.busy = true
		s.mu.Unlock()

		op()

		s.mu.Lock()
		s.busy = false
		s.cond.Broadcast()
		s.mu.Unlock()
	}
}

// synchronize blocks until every operation enqueued so far has been executed.
func (s *stream) synchronize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.pending) > 0 || s.busy {
		s.cond.Wait()
	}
}

// close drains the queue and stops the goroutine.
func (s *stream) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
	<-s.done
}

package dashboard

import (
	"sync/atomic"
	"time"
)

// Slot holds the latest accepted frame on a panel node. The receive callback
// is the only writer and the render loop the only reader; both acquire it
// with a bounded wait and degrade (drop the update, keep stale values) on
// timeout instead of blocking.
//
// The dirty flag and arrival timestamp live outside the lock as atomics. The
// dirty flag is an advisory fast-path hint for the render loop; correctness
// rests solely on the lock-guarded frame copy.
type Slot struct {
	sem chan struct{}

	frame   Frame
	dirty   atomic.Bool
	arrival atomic.Int64 // unix nanos of last accepted frame, 0 = never
}

func NewSlot() *Slot {
	s := &Slot{
		sem: make(chan struct{}, 1),
	}
	s.sem <- struct{}{}
	return s
}

func (s *Slot) acquire(timeout time.Duration) bool {
	select {
	case <-s.sem:
		return true
	default:
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.sem:
		return true
	case <-t.C:
		return false
	}
}

func (s *Slot) release() {
	s.sem <- struct{}{}
}

// Publish overwrites the slot with a newer frame. A timeout means the update
// is lost; the next frame supersedes it anyway.
func (s *Slot) Publish(f Frame, now time.Time, timeout time.Duration) bool {
	if !s.acquire(timeout) {
		return false
	}
	s.frame = f
	s.dirty.Store(true)
	s.arrival.Store(now.UnixNano())
	s.release()
	return true
}

// Take copies out the latest frame and clears the dirty flag.
func (s *Slot) Take(timeout time.Duration) (Frame, bool) {
	if !s.acquire(timeout) {
		return Frame{}, false
	}
	f := s.frame
	s.dirty.Store(false)
	s.release()
	return f, true
}

// Dirty reports whether a frame has arrived since the last Take. Advisory
// only: a reader must still Take under the lock before using the frame.
func (s *Slot) Dirty() bool {
	return s.dirty.Load()
}

// LastArrival returns the time of the last accepted frame, or the zero time
// if none has ever arrived.
func (s *Slot) LastArrival() time.Time {
	n := s.arrival.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

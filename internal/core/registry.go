package core

import (
	"sync"

	"github.com/giantswarm/procmux/internal/syserr"
)

// ErrRegistryClosed is returned by Add after Close.
const ErrRegistryClosed = syserr.Error("registry is closed")

// Ref identifies one registry entry. A Ref goes stale when its entry is
// removed, even if the slot is reused, because the slot generation moves on.
type Ref struct {
	index int
	gen   uint64
}

type registrySlot[T any] struct {
	// gen is odd while the slot is occupied and even while it is free.
	gen   uint64
	pid   int
	value T
}

// Registry is an arena of values keyed by process ID. Freed slots are
// reused LIFO. It replaces a hidden global child list: each Supervisor owns
// one, and Close hands every remaining value to the caller for cleanup.
//
// It is safe for concurrent use by multiple goroutines.
type Registry[T any] struct {
	mu     sync.Mutex
	slots  []registrySlot[T]
	free   []int
	byPID  map[int]int
	closed bool
}

// NewRegistry creates an empty Registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{byPID: make(map[int]int)}
}

// Add stores v under pid and returns its reference. Returns
// ErrRegistryClosed once the registry has been closed.
func (r *Registry[T]) Add(pid int, v T) (Ref, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Ref{}, ErrRegistryClosed
	}

	var idx int
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = len(r.slots)
		r.slots = append(r.slots, registrySlot[T]{})
	}

	s := &r.slots[idx]
	s.gen++
	s.pid = pid
	s.value = v
	r.byPID[pid] = idx
	return Ref{index: idx, gen: s.gen}, nil
}

// Get returns the value for ref, or false if ref is stale.
func (r *Registry[T]) Get(ref Ref) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validLocked(ref) {
		var zero T
		return zero, false
	}
	return r.slots[ref.index].value, true
}

// Lookup returns the live value registered under pid.
func (r *Registry[T]) Lookup(pid int) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byPID[pid]
	if !ok {
		var zero T
		return zero, false
	}
	return r.slots[idx].value, true
}

// Remove frees the entry for ref. It returns false if ref is stale, so a
// double remove is harmless.
func (r *Registry[T]) Remove(ref Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.validLocked(ref) {
		return false
	}
	s := &r.slots[ref.index]
	if idx, ok := r.byPID[s.pid]; ok && idx == ref.index {
		delete(r.byPID, s.pid)
	}
	var zero T
	s.gen++
	s.pid = 0
	s.value = zero
	r.free = append(r.free, ref.index)
	return true
}

func (r *Registry[T]) validLocked(ref Ref) bool {
	if ref.index < 0 || ref.index >= len(r.slots) {
		return false
	}
	s := r.slots[ref.index]
	return s.gen == ref.gen && s.gen%2 == 1
}

// Len returns the number of live entries.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots) - len(r.free)
}

// Values returns a copy of all live values in slot order.
func (r *Registry[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valuesLocked()
}

func (r *Registry[T]) valuesLocked() []T {
	out := make([]T, 0, len(r.slots)-len(r.free))
	for _, s := range r.slots {
		if s.gen%2 == 1 {
			out = append(out, s.value)
		}
	}
	return out
}

// Close prevents further additions and returns the values still registered.
// Entries stay in place until removed. Close is idempotent.
func (r *Registry[T]) Close() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return r.valuesLocked()
}

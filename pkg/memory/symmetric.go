package memory

import "fmt"

// Scoped rooting.
//
// A Frame claims a fixed number of root slots on the heap's frame stack.
// Values stored in those slots survive collections until the frame is popped.
// Frames must be popped in reverse order of acquisition on every exit path,
// which is why callers always write
//
//	f := heap.PushRoots(2)
//	defer f.Pop()
//
// An unbalanced or out-of-order pop is a use-after-reclaim bug and panics.

// Frame is a guard holding n root slots.
type Frame struct {
	heap   *Heap
	slots  []any
	depth  int
	popped bool
}

// PushRoots claims n root slots.
func (h *Heap) PushRoots(n int) *Frame {
	f := &Frame{heap: h, slots: make([]any, n), depth: len(h.frames)}
	h.frames = append(h.frames, f)
	if len(h.frames) > h.stats.PeakFrames {
		h.stats.PeakFrames = len(h.frames)
	}
	return f
}

// Set stores v in slot i.
func (f *Frame) Set(i int, v any) {
	f.slots[i] = v
}

// Get returns the value rooted in slot i.
func (f *Frame) Get(i int) any {
	return f.slots[i]
}

// Len returns the number of slots the frame claimed.
func (f *Frame) Len() int {
	return len(f.slots)
}

// Pop releases the frame's slots.
func (f *Frame) Pop() {
	h := f.heap
	if f.popped {
		panic("memory: root frame released twice")
	}
	top := len(h.frames) - 1
	if top != f.depth || h.frames[top] != f {
		panic(fmt.Sprintf("memory: root frame at depth %d released out of order (top is %d)", f.depth, top))
	}
	h.frames[top] = nil
	h.frames = h.frames[:top]
	f.popped = true
	f.slots = nil
}

// UnwindRoots pops every frame above depth, newest first, and returns how
// many were popped. It restores the frame stack after a callee failed
// without releasing its own frames.
func (h *Heap) UnwindRoots(depth int) int {
	if depth < 0 || depth > len(h.frames) {
		panic(fmt.Sprintf("memory: unwind depth %d out of range (%d frames)", depth, len(h.frames)))
	}
	n := len(h.frames) - depth
	for i := len(h.frames) - 1; i >= depth; i-- {
		f := h.frames[i]
		f.popped = true
		f.slots = nil
		h.frames[i] = nil
	}
	h.frames = h.frames[:depth]
	return n
}

// RootDepth returns the number of frames currently pushed.
func (h *Heap) RootDepth() int {
	return len(h.frames)
}

// RootSlots returns the number of root slots currently claimed.
func (h *Heap) RootSlots() int {
	n := 0
	for _, f := range h.frames {
		n += len(f.slots)
	}
	return n
}

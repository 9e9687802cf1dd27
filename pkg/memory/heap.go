package memory

// Heap is the managed-memory collaborator of the tree converter.
//
// It does not own Go memory; it models the collector the native tree lives
// in. Every native container is registered with Track. When a collection
// interval is configured, every interval-th allocation runs Collect, which
// marks from root frames, pins and global roots and reclaims every other
// tracked object. With an interval of 0 nothing is retained and no collection
// ever runs.
type Heap struct {
	interval int
	enabled  bool
	pending  bool
	epoch    uint64

	tracked []Object
	frames  []*Frame
	pins    []any
	globals []any

	stats Stats
}

// Stats tracks allocation and collection counters
type Stats struct {
	Allocations int64
	Collections int64
	Deferred    int64 // collections requested while the collector was disabled
	Reclaimed   int64
	PeakPins    int
	PeakFrames  int
}

// NewHeap creates a heap whose collector runs every interval allocations.
func NewHeap(interval int) *Heap {
	if interval < 0 {
		interval = 0
	}
	return &Heap{interval: interval, enabled: true}
}

// Enabled reports whether the collector may run.
func (h *Heap) Enabled() bool {
	return h.enabled
}

// Enable turns the collector back on.
func (h *Heap) Enable() {
	h.enabled = true
}

// Disable turns the collector off; requested collections are deferred.
func (h *Heap) Disable() {
	h.enabled = false
}

// Suspend disables the collector and returns a func restoring the state it
// had before. Callers defer the returned func so failure paths restore too.
func (h *Heap) Suspend() func() {
	was := h.enabled
	h.enabled = false
	return func() {
		h.enabled = was
	}
}

// Pending reports whether a collection was requested while disabled.
func (h *Heap) Pending() bool {
	return h.pending
}

// Track registers a freshly allocated object. A nil heap tracks nothing.
func (h *Heap) Track(o Object) {
	if h == nil || o == nil {
		return
	}
	hd := o.header()
	hd.gen = randomGeneration()
	hd.swept = false
	h.stats.Allocations++
	if h.interval == 0 {
		return
	}
	if h.stats.Allocations%int64(h.interval) == 0 {
		h.Collect()
	}
	h.tracked = append(h.tracked, o)
}

// AddGlobalRoot keeps v alive for the lifetime of the heap.
func (h *Heap) AddGlobalRoot(v any) {
	h.globals = append(h.globals, v)
}

// Collect runs a collection and returns the number of reclaimed objects.
// While the collector is disabled the request is only recorded.
func (h *Heap) Collect() int {
	if !h.enabled {
		h.pending = true
		h.stats.Deferred++
		return 0
	}
	h.pending = false
	h.epoch++
	h.stats.Collections++

	for _, v := range h.globals {
		h.mark(v)
	}
	for _, f := range h.frames {
		for _, v := range f.slots {
			h.mark(v)
		}
	}
	for _, v := range h.pins {
		h.mark(v)
	}

	live := h.tracked[:0]
	reclaimed := 0
	for _, o := range h.tracked {
		hd := o.header()
		if hd.mark == h.epoch {
			live = append(live, o)
			continue
		}
		hd.gen = 0
		hd.swept = true
		reclaimed++
	}
	for i := len(live); i < len(h.tracked); i++ {
		h.tracked[i] = nil
	}
	h.tracked = live
	h.stats.Reclaimed += int64(reclaimed)
	return reclaimed
}

func (h *Heap) mark(v any) {
	o, ok := v.(Object)
	if !ok || o == nil {
		return
	}
	hd := o.header()
	if hd.mark == h.epoch {
		return
	}
	hd.mark = h.epoch
	o.TraceRefs(h.mark)
}

// Live returns the number of tracked objects that survived so far.
func (h *Heap) Live() int {
	return len(h.tracked)
}

// GetStats returns current statistics
func (h *Heap) GetStats() Stats {
	return h.stats
}

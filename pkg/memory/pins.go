package memory

import "fmt"

// Pinning.
//
// A pin keeps a value alive for an unbounded duration. Pins live on an
// append-only list; the driver of a top-level pass saves Pinned() before the
// pass and calls ReleasePins with that mark exactly once afterwards, which
// truncates everything pinned in between.

// Pin keeps v alive until released in bulk.
func (h *Heap) Pin(v any) {
	h.pins = append(h.pins, v)
	if len(h.pins) > h.stats.PeakPins {
		h.stats.PeakPins = len(h.pins)
	}
}

// Pinned returns the number of live pins, usable as a release mark.
func (h *Heap) Pinned() int {
	return len(h.pins)
}

// ReleasePins releases every pin taken since mark.
func (h *Heap) ReleasePins(mark int) {
	if mark < 0 || mark > len(h.pins) {
		panic(fmt.Sprintf("memory: pin mark %d out of range (%d pinned)", mark, len(h.pins)))
	}
	for i := mark; i < len(h.pins); i++ {
		h.pins[i] = nil
	}
	h.pins = h.pins[:mark]
}

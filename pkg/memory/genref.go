package memory

import (
	"crypto/rand"
	"encoding/binary"
)

// Generational stamps for heap-tracked objects.
//
// Each tracked object receives a random non-zero 64-bit generation when it is
// allocated. When the collector sweeps it the generation drops to 0 and the
// object is flagged as reclaimed, so any handle still reaching it can detect
// the use-after-reclaim instead of silently reading a dead tree.

// Generation is a 64-bit random generation number
type Generation uint64

// Header is embedded by every native container allocated through a Heap.
type Header struct {
	gen   Generation
	mark  uint64
	swept bool
}

func (h *Header) header() *Header { return h }

// Generation returns the stamp given at allocation, or 0 once reclaimed.
func (h *Header) Generation() Generation {
	return h.gen
}

// Reclaimed reports whether a collection swept the object.
func (h *Header) Reclaimed() bool {
	return h.swept
}

// Object is anything the collector can mark. TraceRefs must hand every
// outgoing reference to visit.
type Object interface {
	header() *Header
	TraceRefs(visit func(v any))
}

// randomGeneration generates a cryptographically random non-zero generation
func randomGeneration() Generation {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// Fallback to less random but still usable
		return Generation(0xDEADBEEF)
	}
	g := Generation(binary.LittleEndian.Uint64(buf[:]))
	if g == 0 {
		g = 1
	}
	return g
}

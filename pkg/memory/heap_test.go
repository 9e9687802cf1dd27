package memory

import "testing"

func TestIntervalZeroNeverCollects(t *testing.T) {
	h := NewHeap(0)
	for i := 0; i < 100; i++ {
		newNode(h, "n")
	}
	st := h.GetStats()
	if st.Allocations != 100 || st.Collections != 0 {
		t.Errorf("stats = %+v", st)
	}
	if h.Live() != 0 {
		t.Errorf("Live = %d, untracked heap should retain nothing", h.Live())
	}
}

func TestIntervalTriggersCollection(t *testing.T) {
	h := NewHeap(3)
	nodes := make([]*node, 7)
	for i := range nodes {
		nodes[i] = newNode(h, "n")
	}
	if got := h.GetStats().Collections; got != 2 {
		t.Errorf("Collections = %d, want 2", got)
	}
	// by the 6th allocation nodes 0..4 have been swept
	for i := 0; i < 5; i++ {
		if !nodes[i].Reclaimed() {
			t.Errorf("node %d should be reclaimed", i)
		}
	}
	if nodes[5].Reclaimed() || nodes[6].Reclaimed() {
		t.Error("nodes allocated after the last collection must be live")
	}
	if h.Live() != 2 {
		t.Errorf("Live = %d, want 2", h.Live())
	}
}

func TestSuspendDefersCollection(t *testing.T) {
	h := NewHeap(1)
	restore := h.Suspend()
	a := newNode(h, "a")
	newNode(h, "b")

	if h.Enabled() {
		t.Error("collector should be disabled")
	}
	if a.Reclaimed() {
		t.Error("no collection may run while suspended")
	}
	if !h.Pending() || h.GetStats().Deferred != 2 {
		t.Errorf("pending=%v deferred=%d", h.Pending(), h.GetStats().Deferred)
	}
	restore()
	if !h.Enabled() {
		t.Error("restore should re-enable the collector")
	}
	h.Collect()
	if h.Pending() {
		t.Error("a collection clears the pending request")
	}
	if !a.Reclaimed() {
		t.Error("a should be reclaimed after the collector resumes")
	}
}

func TestSuspendNests(t *testing.T) {
	h := NewHeap(1)
	outer := h.Suspend()
	inner := h.Suspend()
	inner()
	if h.Enabled() {
		t.Error("inner restore must leave the outer suspension in place")
	}
	outer()
	if !h.Enabled() {
		t.Error("outer restore should re-enable")
	}

	h.Disable()
	h.Suspend()()
	if h.Enabled() {
		t.Error("restore must not enable a collector that was disabled")
	}
	h.Enable()
	if !h.Enabled() {
		t.Error("Enable failed")
	}
}

func TestGlobalRoots(t *testing.T) {
	h := NewHeap(1)
	g := newNode(h, "global")
	h.AddGlobalRoot(g)
	h.Collect()
	h.Collect()
	if g.Reclaimed() {
		t.Error("global root was reclaimed")
	}
	if h.GetStats().Reclaimed != 0 {
		t.Errorf("Reclaimed = %d, want 0", h.GetStats().Reclaimed)
	}
}

func TestCycleIsCollected(t *testing.T) {
	h := NewHeap(1)
	f := h.PushRoots(1)
	a := newNode(h, "a")
	f.Set(0, a)
	b := newNode(h, "b", a)
	a.refs = append(a.refs, b)

	h.Collect()
	if a.Reclaimed() || b.Reclaimed() {
		t.Fatal("rooted cycle was reclaimed")
	}
	f.Pop()
	if n := h.Collect(); n != 2 {
		t.Errorf("Collect reclaimed %d, want 2", n)
	}
}

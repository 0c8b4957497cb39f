package freq

import (
	"math"
	"testing"
)

// slots tracks occupancy the way the batch engine does.
type slots map[int]bool

func (s slots) occupied(slot int) bool { return s[slot] }

func assign(x *Index, s slots, id uint32) int {
	slot := x.Assign(id, s.occupied)
	s[slot] = true
	return slot
}

func TestAssignWithoutReservationFollowsCallOrder(t *testing.T) {
	x := New(8, false)
	s := slots{}
	ids := []uint32{3, 1, 3, 7, 1}
	for i, id := range ids {
		if got := assign(x, s, id); got != i {
			t.Errorf("Assign(%d) = %d, want %d", id, got, i)
		}
	}

	if got := x.Frequency(3); got != 2 {
		t.Errorf("Frequency(3) = %d, want 2", got)
	}
	lo, hi, ok := x.Range()
	if !ok || lo != 1 || hi != 7 {
		t.Errorf("Range() = (%d, %d, %v), want (1, 7, true)", lo, hi, ok)
	}

	// Next frame still follows call order.
	x.Clear()
	s = slots{}
	for i, id := range ids {
		if got := assign(x, s, id); got != i {
			t.Errorf("frame 2: Assign(%d) = %d, want %d", id, got, i)
		}
	}
}

func TestClearResetsCurrentFrequencies(t *testing.T) {
	x := New(4, true)
	s := slots{}
	assign(x, s, 2)
	assign(x, s, 2)
	x.Clear()

	if got := x.Frequency(2); got != 0 {
		t.Errorf("Frequency(2) after Clear = %d, want 0", got)
	}
	if _, _, ok := x.Range(); ok {
		t.Error("Range() ok = true after Clear, want false")
	}
	if got := x.Reserved(2); got != (Entry{Frequency: 2, BatchIndex: 0}) {
		t.Errorf("Reserved(2) = %+v, want {2 0}", got)
	}
}

func TestReservationGroupsTexturesNextFrame(t *testing.T) {
	x := New(16, true)

	// Frame 1: interleaved textures.
	s := slots{}
	frame := []uint32{5, 9, 5, 9, 5}
	for _, id := range frame {
		assign(x, s, id)
	}
	x.Clear()

	// Texture 5 reserved [0,3), texture 9 reserved [3,5).
	if got := x.Reserved(5); got != (Entry{Frequency: 3, BatchIndex: 0}) {
		t.Errorf("Reserved(5) = %+v, want {3 0}", got)
	}
	if got := x.Reserved(9); got != (Entry{Frequency: 2, BatchIndex: 3}) {
		t.Errorf("Reserved(9) = %+v, want {2 3}", got)
	}

	// Frame 2: same interleaving lands grouped.
	s = slots{}
	var got []int
	for _, id := range frame {
		got = append(got, assign(x, s, id))
	}
	want := []int{0, 3, 1, 4, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame 2 slot %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNewTextureUsesRunningPointerAfterReservedSpan(t *testing.T) {
	x := New(16, true)
	s := slots{}
	assign(x, s, 1)
	assign(x, s, 1)
	x.Clear()

	s = slots{}
	if got := assign(x, s, 4); got != 2 {
		t.Errorf("Assign(new texture) = %d, want 2", got)
	}
	if got := assign(x, s, 1); got != 0 {
		t.Errorf("Assign(reserved texture) = %d, want 0", got)
	}
}

func TestReservationExhaustedFallsBackToRunningPointer(t *testing.T) {
	x := New(16, true)
	s := slots{}
	assign(x, s, 1)
	x.Clear()

	s = slots{}
	if got := assign(x, s, 1); got != 0 {
		t.Errorf("first Assign = %d, want 0", got)
	}
	// Reservation held one quad; the second goes to the running pointer.
	if got := assign(x, s, 1); got != 1 {
		t.Errorf("second Assign = %d, want 1", got)
	}
	if got := assign(x, s, 1); got != 2 {
		t.Errorf("third Assign = %d, want 2", got)
	}
}

func TestStaleReservationsAreDropped(t *testing.T) {
	x := New(8, true)
	s := slots{}
	assign(x, s, 3)
	x.Clear()

	// Frame 2 does not use texture 3.
	s = slots{}
	assign(x, s, 6)
	x.Clear()

	if got := x.Reserved(3); got != (Entry{}) {
		t.Errorf("Reserved(3) = %+v, want zero entry", got)
	}
	if got := x.Reserved(6); got != (Entry{Frequency: 1, BatchIndex: 0}) {
		t.Errorf("Reserved(6) = %+v, want {1 0}", got)
	}
}

func TestAssignWrapsAndProbes(t *testing.T) {
	x := New(4, false)
	s := slots{}
	for i := range 4 {
		if got := assign(x, s, 1); got != i {
			t.Fatalf("Assign %d = %d, want %d", i, got, i)
		}
	}

	// Free slot 2 and wrap: the pointer is back at 0, probes to 2.
	delete(s, 2)
	if got := assign(x, s, 1); got != 2 {
		t.Errorf("Assign after wrap = %d, want 2", got)
	}
}

func TestAssignNeverReturnsOccupiedSlot(t *testing.T) {
	x := New(32, true)
	for frame := range 5 {
		s := slots{}
		n := 0
		for i := range 32 {
			id := uint32((i*7 + frame*3) % 5)
			slot := x.Assign(id, s.occupied)
			if s[slot] {
				t.Fatalf("frame %d: slot %d assigned twice", frame, slot)
			}
			s[slot] = true
			n++
		}
		if len(s) != n {
			t.Errorf("frame %d: %d distinct slots, want %d", frame, len(s), n)
		}
		x.Clear()
	}
}

func TestHighTextureIDs(t *testing.T) {
	x := New(4, true)
	s := slots{}
	const top = math.MaxUint32
	assign(x, s, top)
	assign(x, s, top-1)
	assign(x, s, top)
	if got := x.Frequency(top); got != 2 {
		t.Errorf("Frequency(MaxUint32) = %d, want 2", got)
	}
	if got := x.Frequency(top - 2); got != 0 {
		t.Errorf("Frequency(MaxUint32-2) = %d, want 0", got)
	}
	if got := x.Textures(); got != 2 {
		t.Errorf("Textures() = %d, want 2", got)
	}

	x.Clear()
	if got := x.Reserved(top - 1); got != (Entry{Frequency: 1, BatchIndex: 0}) {
		t.Errorf("Reserved(MaxUint32-1) = %+v, want {1 0}", got)
	}
	if got := x.Reserved(top); got != (Entry{Frequency: 2, BatchIndex: 1}) {
		t.Errorf("Reserved(MaxUint32) = %+v, want {2 1}", got)
	}
}

func TestClearForgetsUnusedTextures(t *testing.T) {
	x := New(64, true)
	for frame := range 10 {
		s := slots{}
		for i := range 4 {
			assign(x, s, uint32(frame*1000+i))
		}
		x.Clear()
		if got := x.Textures(); got != 4 {
			t.Fatalf("frame %d: Textures() = %d, want 4", frame, got)
		}
	}
}

func TestReset(t *testing.T) {
	x := New(8, true)
	s := slots{}
	assign(x, s, 2)
	x.Clear()
	x.Reset()

	if got := x.Reserved(2); got != (Entry{}) {
		t.Errorf("Reserved(2) after Reset = %+v, want zero entry", got)
	}
	s = slots{}
	if got := assign(x, s, 9); got != 0 {
		t.Errorf("Assign after Reset = %d, want 0", got)
	}
}

package bramble

import (
	"testing"
)

// recordingDelegate captures contact events for assertions.
type recordingDelegate struct {
	begins []ContactEvent
	ends   []ContactEvent
}

func (d *recordingDelegate) DidBeginContact(ev ContactEvent) { d.begins = append(d.begins, ev) }
func (d *recordingDelegate) DidEndContact(ev ContactEvent)   { d.ends = append(d.ends, ev) }

func (d *recordingDelegate) reset() {
	d.begins = d.begins[:0]
	d.ends = d.ends[:0]
}

// contactWorld builds a gravity-free world with a recording delegate.
func contactWorld() (*World, *recordingDelegate) {
	w := NewWorld()
	w.Gravity = Vec2{}
	d := &recordingDelegate{}
	w.SetContactDelegate(d)
	return w, d
}

// etherealAt returns a sensor-style body: contact events on, collision
// response off, so overlap can persist across steps.
func etherealAt(x, y float64, r float64) *Body {
	b := bodyAt(x, y, CircleShape(r))
	b.CollisionMask = MaskNone
	b.ContactTestMask = MaskAll
	return b
}

// --- Begin/end delivery ---

func TestContactBeginOnOverlap(t *testing.T) {
	w, d := contactWorld()
	a := etherealAt(0, 0, 10)
	b := etherealAt(100, 0, 10)
	b.Velocity = Vec2{-300, 0}
	w.AddBody(a)
	w.AddBody(b)

	for i := 0; i < 60 && len(d.begins) == 0; i++ {
		w.Step(1.0 / 60)
	}
	if len(d.begins) != 1 {
		t.Fatalf("begins = %d, want 1", len(d.begins))
	}
	ev := d.begins[0]
	if ev.Phase != ContactBegin {
		t.Error("phase should be ContactBegin")
	}
	if (ev.BodyA != a || ev.BodyB != b) && (ev.BodyA != b || ev.BodyB != a) {
		t.Error("event should reference the overlapping pair")
	}
}

func TestContactEndOnSeparation(t *testing.T) {
	w, d := contactWorld()
	a := etherealAt(0, 0, 10)
	b := etherealAt(100, 0, 10)
	b.Velocity = Vec2{-300, 0}
	w.AddBody(a)
	w.AddBody(b)

	// Let b pass through a completely.
	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60)
	}
	if len(d.begins) != 1 {
		t.Fatalf("begins = %d, want exactly 1 for a single pass-through", len(d.begins))
	}
	if len(d.ends) != 1 {
		t.Fatalf("ends = %d, want 1", len(d.ends))
	}
	if d.ends[0].Phase != ContactEnd {
		t.Error("phase should be ContactEnd")
	}
}

func TestContactRequiresMaskMatch(t *testing.T) {
	w, d := contactWorld()
	a := etherealAt(0, 0, 10)
	a.ContactTestMask = MaskNone
	b := etherealAt(5, 0, 10)
	b.ContactTestMask = MaskNone
	b.Wake()
	w.AddBody(a)
	w.AddBody(b)

	w.Step(1.0 / 60)
	if len(d.begins) != 0 {
		t.Error("no contact test mask on either side should mean no events")
	}
}

func TestContactOneSidedOptInSufficient(t *testing.T) {
	w, d := contactWorld()
	a := etherealAt(0, 0, 10)
	a.ContactTestMask = MaskNone // a does not ask for events
	b := etherealAt(5, 0, 10)
	b.ContactTestMask = MaskAll // b does
	b.Wake()
	w.AddBody(a)
	w.AddBody(b)

	w.Step(1.0 / 60)
	if len(d.begins) != 1 {
		t.Errorf("begins = %d, want 1 (either side opting in is sufficient)", len(d.begins))
	}
}

func TestStaticStaticNeverGeneratesContacts(t *testing.T) {
	w, d := contactWorld()
	a := etherealAt(0, 0, 10)
	a.SetDynamic(false)
	a.Wake()
	b := etherealAt(5, 0, 10)
	b.SetDynamic(false)
	b.Wake()
	w.AddBody(a)
	w.AddBody(b)

	w.Step(1.0 / 60)
	if len(d.begins) != 0 {
		t.Error("two static bodies must never generate contact events")
	}
}

// --- Stale-mask caching ---

func TestSettledPairFrozen(t *testing.T) {
	w, d := contactWorld()
	// Overlapping, stationary, masks initially off.
	a := etherealAt(0, 0, 10)
	a.ContactTestMask = MaskNone
	b := etherealAt(5, 0, 10)
	b.ContactTestMask = MaskNone
	w.AddBody(a)
	w.AddBody(b)
	w.Step(1.0 / 60)
	if len(d.begins) != 0 {
		t.Fatal("no events expected with masks off")
	}

	// Flip the masks on while both bodies rest: the pair is settled, so
	// the change is not retroactive.
	a.ContactTestMask = MaskAll
	b.ContactTestMask = MaskAll
	w.Step(1.0 / 60)
	if len(d.begins) != 0 {
		t.Error("settled pair should not re-evaluate on a mask flip alone")
	}

	// An explicit wake re-arms the pair.
	a.Wake()
	w.Step(1.0 / 60)
	if len(d.begins) != 1 {
		t.Errorf("begins = %d, want 1 after wake", len(d.begins))
	}
}

func TestMovementReArmsPair(t *testing.T) {
	w, d := contactWorld()
	a := etherealAt(0, 0, 10)
	a.ContactTestMask = MaskNone
	b := etherealAt(5, 0, 10)
	b.ContactTestMask = MaskNone
	w.AddBody(a)
	w.AddBody(b)
	w.Step(1.0 / 60)

	a.ContactTestMask = MaskAll
	// Nudge a beyond the rest threshold; motion re-arms evaluation.
	a.Velocity = Vec2{60, 0}
	w.Step(1.0 / 60)
	if len(d.begins) != 1 {
		t.Errorf("begins = %d, want 1 after movement", len(d.begins))
	}
}

func TestDynamicToggleReArmsPair(t *testing.T) {
	w, d := contactWorld()
	a := etherealAt(0, 0, 10)
	a.ContactTestMask = MaskNone
	b := etherealAt(5, 0, 10)
	b.ContactTestMask = MaskNone
	w.AddBody(a)
	w.AddBody(b)
	w.Step(1.0 / 60)

	a.ContactTestMask = MaskAll
	a.SetDynamic(false)
	a.SetDynamic(true) // off-then-on counts as a wake
	w.Step(1.0 / 60)
	if len(d.begins) != 1 {
		t.Errorf("begins = %d, want 1 after dynamic toggle", len(d.begins))
	}
}

// --- Removal semantics ---

func TestRemoveBodyDropsCachedOverlapSilently(t *testing.T) {
	w, d := contactWorld()
	a := etherealAt(0, 0, 10)
	a.Wake()
	b := etherealAt(5, 0, 10)
	w.AddBody(a)
	w.AddBody(b)
	w.Step(1.0 / 60)
	if len(d.begins) != 1 {
		t.Fatalf("begins = %d, want 1", len(d.begins))
	}

	d.reset()
	w.RemoveBody(b)
	w.Step(1.0 / 60)
	if len(d.ends) != 0 {
		t.Error("removing a body must not emit end events for its overlaps")
	}
	if w.Stats().Contacts != 0 {
		t.Error("cached overlap should be dropped with the body")
	}
}

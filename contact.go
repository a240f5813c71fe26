package bramble

// ContactPhase distinguishes the begin and end transitions of an overlap.
type ContactPhase uint8

const (
	ContactBegin ContactPhase = iota
	ContactEnd
)

// ContactEvent is the ephemeral value delivered once per begin/end transition
// of an overlapping pair whose contact-test masks match. Events are always
// pair events; no per-body variant exists. The event is not retained by the
// world after delivery.
type ContactEvent struct {
	BodyA, BodyB *Body
	Phase        ContactPhase
	// Point is the approximate contact point in the parent coordinate space.
	Point Vec2
	// Normal points from BodyA toward BodyB.
	Normal Vec2
}

// ContactDelegate receives contact begin/end notifications during step 4 of
// the physics step. Implementations must not mutate the world mid-step;
// defer structural changes to the step-complete callback or Loop.Do.
type ContactDelegate interface {
	DidBeginContact(ContactEvent)
	DidEndContact(ContactEvent)
}

// ContactHandlerFunc adapts a function pair to ContactDelegate.
type ContactHandlerFunc struct {
	Begin func(ContactEvent)
	End   func(ContactEvent)
}

func (h ContactHandlerFunc) DidBeginContact(ev ContactEvent) {
	if h.Begin != nil {
		h.Begin(ev)
	}
}

func (h ContactHandlerFunc) DidEndContact(ev ContactEvent) {
	if h.End != nil {
		h.End(ev)
	}
}

// pairKey identifies an unordered body pair by node ID, smaller ID first.
type pairKey struct {
	a, b uint32
}

func makePairKey(a, b *Body) pairKey {
	ia, ib := a.pairID(), b.pairID()
	if ia > ib {
		ia, ib = ib, ia
	}
	return pairKey{ia, ib}
}

// pairID returns a stable identifier for contact caching.
func (b *Body) pairID() uint32 {
	if b.node != nil {
		return b.node.ID
	}
	return 0
}

// contactTestMatch implements the reciprocity rule: either side opting in is
// sufficient (OR, not AND).
func contactTestMatch(a, b *Body) bool {
	return a.ContactTestMask&b.CategoryMask != 0 ||
		b.ContactTestMask&a.CategoryMask != 0
}

// collisionMatch implements the same OR-based rule for collision response.
func collisionMatch(a, b *Body) bool {
	return a.CollisionMask&b.CategoryMask != 0 ||
		b.CollisionMask&a.CategoryMask != 0
}

// respondsToCollision reports whether a body opted in to being displaced by
// the other body. A body whose own collision mask did not match still
// contributes to displacing its counterpart (one-sided response) but is
// never displaced itself.
func respondsToCollision(self, other *Body) bool {
	return self.CollisionMask&other.CategoryMask != 0
}

package device

import "testing"

func buttonVec(pressed ...int) RawInput {
	v := make([]bool, ButtonCount)
	for _, i := range pressed {
		v[i] = true
	}
	return RawInput{Kind: KindButtons, Buttons: v}
}

func TestEdgeTracker_ButtonDownUp(t *testing.T) {
	tr := NewEdgeTracker(ButtonCount, EncoderCount)

	ev, ok := tr.Apply(buttonVec(0))
	if !ok || ev.Kind != ButtonDown || ev.Button != 0 {
		t.Fatalf("expected ButtonDown(0), got %+v ok=%v", ev, ok)
	}

	ev, ok = tr.Apply(buttonVec())
	if !ok || ev.Kind != ButtonUp || ev.Button != 0 {
		t.Fatalf("expected ButtonUp(0), got %+v ok=%v", ev, ok)
	}
}

// TestEdgeTracker_Idempotent checks applying the same vector twice yields an
// event the first time and nothing the second.
func TestEdgeTracker_Idempotent(t *testing.T) {
	tr := NewEdgeTracker(ButtonCount, EncoderCount)

	if _, ok := tr.Apply(buttonVec(3)); !ok {
		t.Fatal("expected event on first apply")
	}
	if ev, ok := tr.Apply(buttonVec(3)); ok {
		t.Fatalf("expected no event on repeated apply, got %+v", ev)
	}
}

// TestEdgeTracker_FirstTransitionOnly checks that a vector implying two
// simultaneous changes reports only the lowest-indexed one.
func TestEdgeTracker_FirstTransitionOnly(t *testing.T) {
	tr := NewEdgeTracker(ButtonCount, EncoderCount)

	ev, ok := tr.Apply(buttonVec(2, 5))
	if !ok || ev.Kind != ButtonDown || ev.Button != 2 {
		t.Fatalf("expected ButtonDown(2), got %+v ok=%v", ev, ok)
	}

	// Second apply of the same vector picks up the remaining transition.
	ev, ok = tr.Apply(buttonVec(2, 5))
	if !ok || ev.Kind != ButtonDown || ev.Button != 5 {
		t.Fatalf("expected ButtonDown(5), got %+v ok=%v", ev, ok)
	}
}

func TestEdgeTracker_NoData(t *testing.T) {
	tr := NewEdgeTracker(ButtonCount, EncoderCount)
	if ev, ok := tr.Apply(RawInput{Kind: KindNoData}); ok {
		t.Fatalf("expected no event for NoData, got %+v", ev)
	}
}

// TestEdgeTracker_EncoderSelfClear checks that a press edge resets the
// internal slot so back-to-back presses are both detected even though the
// device never sends a release.
func TestEdgeTracker_EncoderSelfClear(t *testing.T) {
	tr := NewEdgeTracker(ButtonCount, EncoderCount)

	press := RawInput{Kind: KindEncoders, Encoders: []bool{false, true, false, false}}

	ev, ok := tr.Apply(press)
	if !ok || ev.Kind != EncoderPress || ev.Encoder != 1 {
		t.Fatalf("expected EncoderPress(1), got %+v ok=%v", ev, ok)
	}

	// Same press vector again: slot was self-cleared, so a fresh edge.
	ev, ok = tr.Apply(press)
	if !ok || ev.Kind != EncoderPress || ev.Encoder != 1 {
		t.Fatalf("expected second EncoderPress(1), got %+v ok=%v", ev, ok)
	}
}

func TestEdgeTracker_EncoderRelease(t *testing.T) {
	tr := NewEdgeTracker(ButtonCount, EncoderCount)

	// Force the internal slot to held, then apply a release vector.
	tr.encoders[2] = true
	ev, ok := tr.Apply(RawInput{Kind: KindEncoders, Encoders: []bool{false, false, false, false}})
	if !ok || ev.Kind != EncoderRelease || ev.Encoder != 2 {
		t.Fatalf("expected EncoderRelease(2), got %+v ok=%v", ev, ok)
	}
}

func TestEdgeTracker_Twist(t *testing.T) {
	tr := NewEdgeTracker(ButtonCount, EncoderCount)

	ev, ok := tr.Apply(RawInput{Kind: KindTwist, Twist: []int8{0, 0, -1, 0}})
	if !ok || ev.Kind != EncoderRotate || ev.Encoder != 2 || ev.Direction != -1 {
		t.Fatalf("expected EncoderRotate(2,-1), got %+v ok=%v", ev, ok)
	}

	if ev, ok := tr.Apply(RawInput{Kind: KindTwist, Twist: []int8{0, 0, 0, 0}}); ok {
		t.Fatalf("expected no event for zero twist, got %+v", ev)
	}
}

// TestEdgeTracker_OversizedVector checks out-of-range slots are dropped
// rather than indexed.
func TestEdgeTracker_OversizedVector(t *testing.T) {
	tr := NewEdgeTracker(2, 1)

	long := make([]bool, 20)
	long[10] = true
	if ev, ok := tr.Apply(RawInput{Kind: KindButtons, Buttons: long}); ok {
		t.Fatalf("expected no event for out-of-range slot, got %+v", ev)
	}
}

func TestEdgeTracker_Reset(t *testing.T) {
	tr := NewEdgeTracker(ButtonCount, EncoderCount)
	tr.Apply(buttonVec(4))
	tr.Reset()

	// After reset the same down edge fires again.
	ev, ok := tr.Apply(buttonVec(4))
	if !ok || ev.Kind != ButtonDown || ev.Button != 4 {
		t.Fatalf("expected ButtonDown(4) after reset, got %+v ok=%v", ev, ok)
	}
}

func TestDisplayKey(t *testing.T) {
	cases := []struct{ button, key int }{
		{0, 10}, {4, 14}, {5, 5}, {9, 9}, {10, 0}, {13, 3},
	}
	for _, tc := range cases {
		if got := DisplayKey(tc.button); got != tc.key {
			t.Errorf("DisplayKey(%d) = %d, want %d", tc.button, got, tc.key)
		}
	}
	if IsStripButton(9) || !IsStripButton(10) {
		t.Error("IsStripButton boundary wrong")
	}
}

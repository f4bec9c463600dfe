package status

import "testing"

func TestOfKnownStates(t *testing.T) {
	if got := Of("pending"); got.LabelKey != "orders.status.pending" || got.Color != "#52EA17" {
		t.Fatalf("pending: %+v", got)
	}
	if got := Of(" Delivered "); got.LabelKey != "orders.status.delivered" {
		t.Fatalf("delivered with spaces: %+v", got)
	}
}

func TestOfUnknownState(t *testing.T) {
	got := Of("refunded")
	if got.LabelKey != "orders.status.unknown" || got.Tone != "default" {
		t.Fatalf("unknown: %+v", got)
	}
	if got.State != "refunded" {
		t.Fatalf("state should pass through, got %q", got.State)
	}
}

func TestIsActive(t *testing.T) {
	for state, want := range map[string]bool{
		"pending":    true,
		"delivering": true,
		"delivered":  false,
		"cancelled":  false,
		"":           false,
	} {
		if IsActive(state) != want {
			t.Errorf("IsActive(%q) != %v", state, want)
		}
	}
}

// Package status maps remote order states onto display labels and tones.
package status

import "strings"

// Known order states reported by the order-history endpoint.
const (
	Pending    = "pending"
	Delivering = "delivering"
	Delivered  = "delivered"
	Cancelled  = "cancelled"
)

// Info is the view-facing description of one order state.
type Info struct {
	State    string
	LabelKey string // i18n key
	Tone     string // badge tone for templates
	Color    string
}

var states = map[string]Info{
	Pending:    {State: Pending, LabelKey: "orders.status.pending", Tone: "success", Color: "#52EA17"},
	Delivering: {State: Delivering, LabelKey: "orders.status.delivering", Tone: "warning", Color: "#FFC107"},
	Delivered:  {State: Delivered, LabelKey: "orders.status.delivered", Tone: "info", Color: "#1E40AF"},
	Cancelled:  {State: Cancelled, LabelKey: "orders.status.cancelled", Tone: "error", Color: "#EF4444"},
}

// Of returns display info for a state. Unknown states come back as-is with a
// neutral tone so a new server-side state never breaks the page.
func Of(state string) Info {
	s := strings.ToLower(strings.TrimSpace(state))
	if info, ok := states[s]; ok {
		return info
	}
	return Info{State: s, LabelKey: "orders.status.unknown", Tone: "default", Color: "#6B7280"}
}

// IsActive reports whether the order still needs attention (not yet
// delivered or cancelled).
func IsActive(state string) bool {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case Pending, Delivering:
		return true
	default:
		return false
	}
}

package lifecycle

import "strings"

// Status is the lifecycle stage of a ticket.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
	StatusOnHold     Status = "On Hold"
	StatusCanceled   Status = "Canceled"
)

// Initial is the status assigned at ticket creation.
const Initial = StatusOpen

// Statuses lists every status in declaration order.
var Statuses = []Status{
	StatusOpen,
	StatusInProgress,
	StatusResolved,
	StatusClosed,
	StatusOnHold,
	StatusCanceled,
}

// transitions is read-only after package init. Order is presentation order.
// Closed and Canceled have no outgoing edges.
var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusOnHold, StatusCanceled},
	StatusInProgress: {StatusResolved, StatusOnHold, StatusCanceled},
	StatusResolved:   {StatusClosed, StatusInProgress},
	StatusOnHold:     {StatusInProgress, StatusCanceled},
	StatusClosed:     {},
	StatusCanceled:   {},
}

// CanTransition reports whether a ticket may move directly from one status to another.
func CanTransition(from, to Status) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from from, in table order.
func NextStatuses(from Status) []Status {
	edges := transitions[from]
	out := make([]Status, len(edges))
	copy(out, edges)
	return out
}

// IsTerminal reports whether s has no outgoing transitions.
func IsTerminal(s Status) bool {
	edges, ok := transitions[s]
	return ok && len(edges) == 0
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// ParseStatus converts boundary input into a Status. It accepts the display
// label ("On Hold") and the filter id ("on_hold"), case-insensitively.
func ParseStatus(val string) (Status, bool) {
	key := normalize(val)
	if key == "" {
		return "", false
	}
	for _, s := range Statuses {
		if normalize(string(s)) == key {
			return s, true
		}
	}
	if key == "cancelled" {
		return StatusCanceled, true
	}
	return "", false
}

func normalize(val string) string {
	val = strings.ToLower(strings.TrimSpace(val))
	val = strings.ReplaceAll(val, "_", " ")
	val = strings.ReplaceAll(val, "-", " ")
	return strings.Join(strings.Fields(val), " ")
}

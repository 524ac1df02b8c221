package domain

import (
	"strings"
	"time"

	"github.com/deskline/service-desk/internal/lifecycle"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

var priorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical}

// ParsePriority matches boundary input against the known priorities ignoring case.
func ParsePriority(val string) (TicketPriority, bool) {
	val = strings.TrimSpace(val)
	for _, p := range priorities {
		if strings.EqualFold(string(p), val) {
			return p, true
		}
	}
	return "", false
}

// TicketChannel is the intake channel of a ticket.
type TicketChannel string

const (
	ChannelWeb    TicketChannel = "web"
	ChannelEmail  TicketChannel = "email"
	ChannelPhone  TicketChannel = "phone"
	ChannelChat   TicketChannel = "chat"
	ChannelAPI    TicketChannel = "api"
	ChannelPortal TicketChannel = "portal"
	ChannelMobile TicketChannel = "mobile"
)

var validChannels = []TicketChannel{ChannelWeb, ChannelEmail, ChannelPhone, ChannelChat, ChannelAPI, ChannelPortal, ChannelMobile}

// NormalizeChannel maps free-form input onto a known channel, defaulting to web.
func NormalizeChannel(val string) TicketChannel {
	val = strings.ToLower(strings.TrimSpace(val))
	for _, ch := range validChannels {
		if string(ch) == val {
			return ch
		}
	}
	return ChannelWeb
}

const (
	DefaultTicketType = "Task"
	DefaultRating     = "Medium"
)

// Ticket is the aggregate for service requests and incidents.
type Ticket struct {
	ID          string
	Number      string
	Title       string
	Description string
	Status      lifecycle.Status
	Priority    TicketPriority
	Type        string
	Category    string
	Urgency     string
	Impact      string
	Severity    string
	Channel     TicketChannel
	RequesterID *string
	AssigneeID  *string
	TeamID      *string
	Tags        []string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// IsRequestedBy reports whether userID opened the ticket.
func (t *Ticket) IsRequestedBy(userID string) bool {
	return t.RequesterID != nil && *t.RequesterID == userID
}

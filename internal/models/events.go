package models

import (
	"time"
)

// EventType discriminates the two kinds of events the tracker sends.
type EventType string

const (
	EventPageVisit EventType = "page_visit"
	EventClick     EventType = "click"
)

// Attribution is the first-touch UTM snapshot carried by every event.
// Empty fields mean the parameter was absent.
type Attribution struct {
	Source   string `json:"utm_source,omitempty" validate:"max=255"`
	Medium   string `json:"utm_medium,omitempty" validate:"max=255"`
	Campaign string `json:"utm_campaign,omitempty" validate:"max=255"`
	Term     string `json:"utm_term,omitempty" validate:"max=255"`
	Content  string `json:"utm_content,omitempty" validate:"max=255"`
}

// IsZero reports whether no UTM parameter is set.
func (a Attribution) IsZero() bool {
	return a == Attribution{}
}

// Event is either a *PageVisit or a *ClickEvent.
type Event interface {
	Type() EventType
}

// PageVisit is one row of page_visits.
type PageVisit struct {
	ID       int64  `json:"id"`
	PagePath string `json:"page_path" validate:"required,max=2000"`
	Attribution
	Referrer  string    `json:"referrer,omitempty" validate:"max=2000"`
	UserAgent string    `json:"user_agent,omitempty"`
	SessionID string    `json:"session_id" validate:"required,max=100"`
	CreatedAt time.Time `json:"created_at"`
}

// Type implements Event.
func (*PageVisit) Type() EventType { return EventPageVisit }

// ClickEvent is one row of click_events.
type ClickEvent struct {
	ID         int64  `json:"id"`
	ButtonID   string `json:"button_id" validate:"required,max=200"`
	ButtonText string `json:"button_text,omitempty" validate:"max=500"`
	PagePath   string `json:"page_path" validate:"required,max=2000"`
	Attribution
	UserAgent string    `json:"user_agent,omitempty"`
	SessionID string    `json:"session_id" validate:"required,max=100"`
	CreatedAt time.Time `json:"created_at"`
}

// Type implements Event.
func (*ClickEvent) Type() EventType { return EventClick }

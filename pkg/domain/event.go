package domain

import "time"

// EventType names a tracked interaction on the marketing site.
type EventType string

const (
	EventPageView         EventType = "page_view"
	EventCTAClick         EventType = "cta_click"
	EventFormSubmit       EventType = "form_submit"
	EventScrollDepth      EventType = "scroll_depth"
	EventSessionStart     EventType = "session_start"
	EventDemoRequest      EventType = "demo_request"
	EventBrochureDownload EventType = "brochure_download"
	EventEmailOpen        EventType = "email_open"
	EventEmailClick       EventType = "email_click"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventPageView, EventCTAClick, EventFormSubmit, EventScrollDepth, EventSessionStart,
		EventDemoRequest, EventBrochureDownload, EventEmailOpen, EventEmailClick:
		return true
	default:
		return false
	}
}

// UTM carries campaign parameters captured from the landing URL.
type UTM struct {
	Source   string `json:"source,omitempty"   bson:"source,omitempty"`
	Medium   string `json:"medium,omitempty"   bson:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty" bson:"campaign,omitempty"`
}

// CTA identifies a call-to-action element.
type CTA struct {
	ID       string `json:"id"                 bson:"id"`
	Label    string `json:"label,omitempty"    bson:"label,omitempty"`
	Location string `json:"location,omitempty" bson:"location,omitempty"`
}

// Event is a single analytics interaction as stored in the event store.
type Event struct {
	ID        string    `json:"id"                  bson:"_id"`
	Type      EventType `json:"type"                bson:"type"`
	SessionID string    `json:"sessionId"           bson:"sessionId"`
	VisitorID string    `json:"visitorId,omitempty" bson:"visitorId,omitempty"`
	// LeadEmail links the event to a lead once the visitor identified themselves.
	LeadEmail string `json:"leadEmail,omitempty" bson:"leadEmail,omitempty"`

	Path     string `json:"path,omitempty"     bson:"path,omitempty"`
	Referrer string `json:"referrer,omitempty" bson:"referrer,omitempty"`
	UTM      UTM    `json:"utm,omitempty"      bson:"utm,omitempty"`
	CTA      *CTA   `json:"cta,omitempty"      bson:"cta,omitempty"`
	// TrafficSource is the classified acquisition channel of the event.
	TrafficSource string `json:"trafficSource" bson:"trafficSource"`
	// DurationSeconds is time spent on the page for page views, if reported.
	DurationSeconds int            `json:"durationSeconds,omitempty" bson:"durationSeconds,omitempty"`
	Properties      map[string]any `json:"properties,omitempty"      bson:"properties,omitempty"`

	UserAgent string `json:"-" bson:"userAgent,omitempty"`
	IP        string `json:"-" bson:"ip,omitempty"`

	OccurredAt time.Time `json:"occurredAt" bson:"occurredAt"`
	ReceivedAt time.Time `json:"receivedAt" bson:"receivedAt"`
}

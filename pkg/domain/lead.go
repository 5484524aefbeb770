package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadID uniquely identifies a prospective student.
type LeadID uuid.UUID

// LeadGrade buckets a lead by total score.
type LeadGrade string

const (
	LeadGradeHot  LeadGrade = "HOT"
	LeadGradeWarm LeadGrade = "WARM"
	LeadGradeCool LeadGrade = "COOL"
	LeadGradeCold LeadGrade = "COLD"
)

// Valid reports whether g is a known grade.
func (g LeadGrade) Valid() bool {
	switch g {
	case LeadGradeHot, LeadGradeWarm, LeadGradeCool, LeadGradeCold:
		return true
	default:
		return false
	}
}

// LeadActivity aggregates what a lead has done on the site and in email.
type LeadActivity struct {
	PageViews      int `json:"pageViews"`
	Sessions       int `json:"sessions"`
	SecondsOnSite  int `json:"secondsOnSite"`
	// HighValuePages lists distinct course/admission/contact pages visited.
	HighValuePages    []string `json:"highValuePages"`
	PricingViews      int      `json:"pricingViews"`
	FormSubmissions   int      `json:"formSubmissions"`
	CTAClicks         int      `json:"ctaClicks"`
	DemoRequested     bool     `json:"demoRequested"`
	BrochureDownloads int      `json:"brochureDownloads"`
	EmailOpens        int      `json:"emailOpens"`
	EmailClicks       int      `json:"emailClicks"`
	// LastActivityAt is the time of the most recent recorded activity.
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// LeadScore is the per-category breakdown of a lead score.
type LeadScore struct {
	Demographic float64   `json:"demographic"`
	Behavioral  float64   `json:"behavioral"`
	Intent      float64   `json:"intent"`
	Engagement  float64   `json:"engagement"`
	Total       float64   `json:"total"`
	Grade       LeadGrade `json:"grade"`
	ScoredAt    time.Time `json:"scoredAt"`
}

// LeadRoute is where a lead was sent by the workflow router.
type LeadRoute struct {
	Rule     string        `json:"rule"`
	Queue    string        `json:"queue"`
	Priority string        `json:"priority"`
	SLA      time.Duration `json:"sla"`
}

// Lead is a prospective student captured from a contact form or event stream.
type Lead struct {
	ID LeadID `json:"id"`
	// Email is the lowercased natural key of a lead.
	Email string `json:"email"`

	Name           string `json:"name"`
	Phone          string `json:"phone"`
	City           string `json:"city"`
	Age            int    `json:"age"`
	Education      string `json:"education"`
	CourseInterest string `json:"courseInterest"`
	Source         string `json:"source"`

	Activity LeadActivity `json:"activity"`
	Score    LeadScore    `json:"score"`
	Route    LeadRoute    `json:"route"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

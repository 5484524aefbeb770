package leads

import (
	"aviators/pkg/domain"
	"context"
	"time"
)

// Form is a contact or enquiry form submission.
type Form struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	City           string `json:"city"`
	Age            int    `json:"age"`
	Education      string `json:"education"`
	CourseInterest string `json:"courseInterest"`
	Source         string `json:"source"`
}

// Activity is an increment of a lead's activity counters.
type Activity struct {
	PageViews         int
	Sessions          int
	SecondsOnSite     int
	HighValuePages    []string
	PricingViews      int
	FormSubmissions   int
	CTAClicks         int
	DemoRequested     bool
	BrochureDownloads int
	EmailOpens        int
	EmailClicks       int
	// At is when the activity happened.
	At time.Time
}

// Service captures leads, tracks their activity and keeps their score and
// route current.
//
//go:generate mockgen -package mockleads -source=interface.go -destination=mock/mockleads.go *
type Service interface {
	Capture(ctx context.Context, form Form) (*domain.Lead, error)
	RecordActivity(ctx context.Context, email string, activity Activity) (*domain.Lead, error)
	Rescore(ctx context.Context, id domain.LeadID) (*domain.Lead, error)
	Get(ctx context.Context, id domain.LeadID) (*domain.Lead, error)
	List(ctx context.Context, grade domain.LeadGrade, cursor string, limit uint) ([]domain.Lead, string, error)
}

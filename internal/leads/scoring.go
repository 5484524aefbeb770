package leads

import (
	"aviators/pkg/domain"
	"math"
	"strings"
	"time"
)

// Category weights of the total score.
const (
	WeightDemographic = 0.20
	WeightBehavioral  = 0.30
	WeightIntent      = 0.35
	WeightEngagement  = 0.15
)

// Grade thresholds on the total score.
const (
	HotThreshold  = 75
	WarmThreshold = 50
	CoolThreshold = 25
)

// StaleAfter is how long without activity before engagement counts half.
const StaleAfter = 30 * 24 * time.Hour

// servedCities are the cities the institute trains students from.
var servedCities = []string{ //nolint: gochecknoglobals
	"delhi", "new delhi", "gurugram", "gurgaon", "noida", "ghaziabad", "faridabad",
}

// scienceStreams mark an education background eligible for a CPL medical and ground school.
var scienceStreams = []string{"science", "pcm", "physics", "math", "engineering"} //nolint: gochecknoglobals

// premiumCourses are the course interests closest to an enrolment.
var premiumCourses = []string{"cpl", "atpl", "commercial pilot", "airline"} //nolint: gochecknoglobals

func capped(n, points, maxPoints int) float64 {
	return float64(min(n*points, maxPoints))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func matchesAny(s string, words []string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}

	return false
}

func demographicScore(l *domain.Lead) float64 {
	var score float64
	switch {
	case l.Age <= 0:
	case l.Age < 17:
		score += 5
	case l.Age <= 30:
		score += 40
	case l.Age <= 40:
		score += 25
	default:
		score += 10
	}

	switch {
	case matchesAny(l.Education, scienceStreams):
		score += 30
	case strings.TrimSpace(l.Education) != "":
		score += 15
	}

	city := strings.ToLower(strings.TrimSpace(l.City))
	switch {
	case city == "":
	case matchesAny(city, servedCities):
		score += 15
	default:
		score += 5
	}

	if strings.TrimSpace(l.Phone) != "" {
		score += 15
	}

	return clamp(score)
}

func behavioralScore(a *domain.LeadActivity) float64 {
	return clamp(capped(a.PageViews, 2, 30) +
		capped(a.Sessions, 5, 20) +
		capped(a.SecondsOnSite/60, 2, 25) +
		capped(len(a.HighValuePages), 5, 25))
}

func intentScore(l *domain.Lead) float64 {
	a := &l.Activity

	var score float64
	if a.DemoRequested {
		score += 40
	}
	score += capped(a.FormSubmissions, 15, 30)
	score += capped(a.PricingViews, 10, 20)
	switch {
	case matchesAny(l.CourseInterest, premiumCourses):
		score += 15
	case strings.TrimSpace(l.CourseInterest) != "":
		score += 8
	}
	if a.BrochureDownloads > 0 {
		score += 10
	}

	return clamp(score)
}

func engagementScore(a *domain.LeadActivity, now time.Time) float64 {
	score := capped(a.EmailOpens, 3, 30) + capped(a.EmailClicks, 8, 40) + capped(a.CTAClicks, 5, 30)
	if !a.LastActivityAt.IsZero() && now.Sub(a.LastActivityAt) > StaleAfter {
		score /= 2
	}

	return clamp(score)
}

// GradeFor buckets a total score.
func GradeFor(total float64) domain.LeadGrade {
	switch {
	case total >= HotThreshold:
		return domain.LeadGradeHot
	case total >= WarmThreshold:
		return domain.LeadGradeWarm
	case total >= CoolThreshold:
		return domain.LeadGradeCool
	default:
		return domain.LeadGradeCold
	}
}

// Score computes the four category scores of a lead and their weighted
// total, rounded to one decimal.
func Score(l *domain.Lead, now time.Time) domain.LeadScore {
	s := domain.LeadScore{
		Demographic: demographicScore(l),
		Behavioral:  behavioralScore(&l.Activity),
		Intent:      intentScore(l),
		Engagement:  engagementScore(&l.Activity, now),
		ScoredAt:    now,
	}
	total := WeightDemographic*s.Demographic +
		WeightBehavioral*s.Behavioral +
		WeightIntent*s.Intent +
		WeightEngagement*s.Engagement
	s.Total = math.Round(total*10) / 10
	s.Grade = GradeFor(s.Total)

	return s
}

package leads

import (
	"aviators/pkg/domain"
	"time"
)

// Queues leads are routed to.
const (
	QueueAdmissions = "admissions-counselor"
	QueueSenior     = "senior-counselor"
	QueueSales      = "sales-team"
	QueueNurture    = "nurture-email"
	QueueNewsletter = "newsletter"
)

// Priorities of routed leads.
const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

type rule struct {
	name     string
	match    func(l *domain.Lead) bool
	queue    string
	priority string
	sla      time.Duration
}

// rules are evaluated in order; the first match wins. The last rule matches
// every lead.
var rules = []rule{ //nolint: gochecknoglobals
	{
		name:  "demo-requested",
		match: func(l *domain.Lead) bool { return l.Activity.DemoRequested },
		queue: QueueAdmissions, priority: PriorityUrgent, sla: time.Hour,
	},
	{
		name:  "hot-lead",
		match: func(l *domain.Lead) bool { return l.Score.Grade == domain.LeadGradeHot },
		queue: QueueAdmissions, priority: PriorityHigh, sla: 4 * time.Hour,
	},
	{
		name: "warm-premium-course",
		match: func(l *domain.Lead) bool {
			return l.Score.Grade == domain.LeadGradeWarm && matchesAny(l.CourseInterest, []string{"cpl", "atpl"})
		},
		queue: QueueSenior, priority: PriorityHigh, sla: 24 * time.Hour,
	},
	{
		name:  "warm-lead",
		match: func(l *domain.Lead) bool { return l.Score.Grade == domain.LeadGradeWarm },
		queue: QueueSales, priority: PriorityNormal, sla: 24 * time.Hour,
	},
	{
		name:  "cool-lead",
		match: func(l *domain.Lead) bool { return l.Score.Grade == domain.LeadGradeCool },
		queue: QueueNurture, priority: PriorityLow, sla: 72 * time.Hour,
	},
	{
		name:  "cold-lead",
		match: func(*domain.Lead) bool { return true },
		queue: QueueNewsletter, priority: PriorityLow,
	},
}

// Route picks the follow-up queue of a scored lead.
func Route(l *domain.Lead) domain.LeadRoute {
	for _, r := range rules {
		if r.match(l) {
			return domain.LeadRoute{Rule: r.name, Queue: r.queue, Priority: r.priority, SLA: r.sla}
		}
	}

	return domain.LeadRoute{}
}

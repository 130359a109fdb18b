// Package alerting decides when a user must be notified and turns those
// decisions into delivered messages. It holds the alert variants, the
// deadline evaluator, and the dispatcher.
package alerting

import (
	"fmt"
	"strings"
	"time"

	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

// Alert is a closed set of notification kinds. The marker method keeps the
// set sealed so Format can match it exhaustively; adding a variant forces
// a new formatter arm.
type Alert interface {
	Kind() string
	alert()
}

// DeadlineAlert warns the listed users that an application deadline is
// inside their lead window. Produced and consumed within one cycle.
type DeadlineAlert struct {
	OpportunityID   string
	OpportunityName string
	Deadline        time.Time
	DaysRemaining   int
	UserIDs         []string
}

func (DeadlineAlert) Kind() string { return "deadline" }
func (DeadlineAlert) alert()       {}

// NewMatchAlert tells one user about a freshly discovered high-scoring
// opportunity.
type NewMatchAlert struct {
	UserID          string
	OpportunityID   string
	OpportunityName string
	Score           float64
	KeyBenefits     []string
}

func (NewMatchAlert) Kind() string { return "new_match" }
func (NewMatchAlert) alert()       {}

// StatusUpdateAlert tells one user that the tracked state of an
// application changed on the ledger.
type StatusUpdateAlert struct {
	UserID          string
	OpportunityID   string
	OpportunityName string
	OldStatus       scholar.Status
	NewStatus       scholar.Status
	ActionRequired  string
}

func (StatusUpdateAlert) Kind() string { return "status_update" }
func (StatusUpdateAlert) alert()       {}

// Message is the channel-agnostic rendering of an alert.
type Message struct {
	Title string
	Body  string
}

// Format renders an alert into a title and body. It is exhaustive over the
// alert variants; an unknown variant is a programming error.
func Format(a Alert) (Message, error) {
	switch alert := a.(type) {
	case DeadlineAlert:
		urgency := "REMINDER"
		if alert.DaysRemaining <= 3 {
			urgency = "URGENT"
		}
		return Message{
			Title: fmt.Sprintf("%s: %s deadline in %d days", urgency, alert.OpportunityName, alert.DaysRemaining),
			Body: fmt.Sprintf(
				"Deadline alert for: %s\n\nApplication deadline: %s\nDays remaining: %d\nAction: %s",
				alert.OpportunityName,
				alert.Deadline.Format("2006-01-02"),
				alert.DaysRemaining,
				DeadlineAction(alert.DaysRemaining),
			),
		}, nil
	case NewMatchAlert:
		body := fmt.Sprintf(
			"Great news! We found a scholarship that matches your profile:\n\nScholarship: %s\nCompatibility score: %.2f%%",
			alert.OpportunityName, alert.Score,
		)
		if len(alert.KeyBenefits) > 0 {
			body += fmt.Sprintf("\nKey benefits: %s", strings.Join(alert.KeyBenefits, ", "))
		}
		return Message{
			Title: fmt.Sprintf("New Scholarship Match Found! (%.2f%% compatibility)", alert.Score),
			Body:  body,
		}, nil
	case StatusUpdateAlert:
		action := alert.ActionRequired
		if action == "" {
			action = "No action required"
		}
		return Message{
			Title: fmt.Sprintf("Status update: %s", alert.OpportunityName),
			Body: fmt.Sprintf(
				"Application status changed for: %s\n\nStatus: %s -> %s\nAction: %s",
				alert.OpportunityName, alert.OldStatus, alert.NewStatus, action,
			),
		}, nil
	default:
		return Message{}, fmt.Errorf("unknown alert kind %T", a)
	}
}

// DeadlineAction maps days remaining onto an urgency tier. Evaluated in
// order, first match wins.
func DeadlineAction(daysRemaining int) string {
	switch {
	case daysRemaining <= 1:
		return "URGENT: Submit application immediately!"
	case daysRemaining <= 3:
		return "Final reminder: Complete your application soon"
	case daysRemaining <= 7:
		return "Start preparing your application documents"
	default:
		return "Mark your calendar and start preparation"
	}
}

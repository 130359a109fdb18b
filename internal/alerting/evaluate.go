package alerting

import (
	"math"
	"time"

	"github.com/scholarmatch/scholarmatch/internal/prefs"
	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

// DaysRemaining is the floor of the real-valued distance to the deadline
// in days. A deadline 47 hours away is 1 day remaining.
func DaysRemaining(deadline, now time.Time) int {
	return int(math.Floor(deadline.Sub(now).Hours() / 24))
}

// EvaluateDeadlines produces one alert per in-progress application whose
// deadline falls inside the user's lead window. The lower bound is strict:
// a deadline reached or passed produces nothing, there is no point alerting
// about an expired opportunity. Pure over its inputs; the caller supplies
// the clock.
func EvaluateDeadlines(p prefs.Preferences, apps []*scholar.Application, now time.Time) []DeadlineAlert {
	var alerts []DeadlineAlert
	for _, app := range apps {
		if app == nil || app.Opportunity == nil {
			continue
		}
		if app.Status != scholar.StatusInProgress {
			continue
		}

		days := DaysRemaining(app.Opportunity.Deadline, now)
		if days <= 0 || days > p.AlertLeadDays {
			continue
		}

		alerts = append(alerts, DeadlineAlert{
			OpportunityID:   app.Opportunity.ID,
			OpportunityName: app.Opportunity.Name,
			Deadline:        app.Opportunity.Deadline,
			DaysRemaining:   days,
			UserIDs:         []string{app.UserID},
		})
	}
	return alerts
}

// MergeDeadlineAlerts collapses per-user alerts for the same opportunity
// into one alert carrying every target user, keeping first-seen order.
func MergeDeadlineAlerts(alerts []DeadlineAlert) []DeadlineAlert {
	byOpp := make(map[string]int)
	merged := make([]DeadlineAlert, 0, len(alerts))

	for _, alert := range alerts {
		idx, ok := byOpp[alert.OpportunityID]
		if !ok {
			byOpp[alert.OpportunityID] = len(merged)
			merged = append(merged, alert)
			continue
		}
		merged[idx].UserIDs = append(merged[idx].UserIDs, alert.UserIDs...)
	}

	return merged
}

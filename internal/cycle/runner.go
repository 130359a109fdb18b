// Package cycle runs the periodic evaluation loops: the deadline check and
// the new-opportunity sweep. Each run is a pure pass over ledger state and
// a preference snapshot for an injected "now", so the loops are testable
// without real clocks or schedulers.
package cycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch/internal/alerting"
	"github.com/scholarmatch/scholarmatch/internal/matching"
	"github.com/scholarmatch/scholarmatch/internal/prefs"
	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

// sweepWindow is how far back the new-match sweep looks for fresh
// opportunities. The sweep runs daily.
const sweepWindow = 24 * time.Hour

// Source supplies records from the scholarship ledger.
type Source interface {
	Opportunities() ([]*scholar.Opportunity, error)
	OpportunitiesSince(since time.Time) ([]*scholar.Opportunity, error)
	Profiles() ([]*scholar.Profile, error)
	Applications(status scholar.Status) ([]*scholar.Application, error)
}

// Runner wires the ledger, the preference store, and the dispatcher into
// the two periodic cycles plus the on-demand notification entry points.
type Runner struct {
	source     Source
	store      *prefs.Store
	dispatcher *alerting.Dispatcher
	logger     *zap.Logger
}

// NewRunner creates a cycle runner.
func NewRunner(source Source, store *prefs.Store, dispatcher *alerting.Dispatcher, logger *zap.Logger) *Runner {
	return &Runner{
		source:     source,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RunDeadlineCycle pulls in-progress applications from the ledger,
// evaluates each user's lead window against now, and dispatches one alert
// per opportunity carrying every targeted user. Reference interval: hourly.
func (r *Runner) RunDeadlineCycle(ctx context.Context, now time.Time) ([]alerting.Outcome, error) {
	apps, err := r.source.Applications(scholar.StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("pulling in-progress applications: %w", err)
	}

	snap := r.store.Snapshot()

	byUser := make(map[string][]*scholar.Application)
	order := make([]string, 0)
	for _, app := range apps {
		if _, seen := byUser[app.UserID]; !seen {
			order = append(order, app.UserID)
		}
		byUser[app.UserID] = append(byUser[app.UserID], app)
	}

	var alerts []alerting.DeadlineAlert
	for _, userID := range order {
		p := snap.Resolve(userID)
		alerts = append(alerts, alerting.EvaluateDeadlines(p, byUser[userID], now)...)
	}
	alerts = alerting.MergeDeadlineAlerts(alerts)

	r.logger.Info("deadline cycle evaluated",
		zap.Int("applications", len(apps)),
		zap.Int("alerts", len(alerts)),
	)

	var outcomes []alerting.Outcome
	for _, alert := range alerts {
		outcomes = append(outcomes, r.dispatcher.Dispatch(ctx, alert, snap)...)
	}

	return outcomes, nil
}

// RunNewMatchSweep scores opportunities added within the sweep window
// against every ledger profile and notifies users whose threshold the
// score clears. A record that fails to score is logged and skipped, never
// aborting the sweep. Reference interval: daily.
func (r *Runner) RunNewMatchSweep(ctx context.Context, now time.Time) ([]alerting.Outcome, error) {
	opps, err := r.source.OpportunitiesSince(now.Add(-sweepWindow))
	if err != nil {
		return nil, fmt.Errorf("pulling recent opportunities: %w", err)
	}
	if len(opps) == 0 {
		r.logger.Info("new-match sweep found no recent opportunities")
		return nil, nil
	}

	profiles, err := r.source.Profiles()
	if err != nil {
		return nil, fmt.Errorf("pulling profiles: %w", err)
	}

	snap := r.store.Snapshot()

	var outcomes []alerting.Outcome
	matched := 0
	for _, profile := range profiles {
		p := snap.Resolve(profile.ID)
		for _, opp := range opps {
			result, err := matching.Score(profile, opp)
			if err != nil {
				r.logger.Warn("skipping unscorable pair",
					zap.String("profile_id", profile.ID),
					zap.String("opportunity_id", opp.ID),
					zap.Error(err),
				)
				continue
			}
			if result.Score < p.MinMatchScore {
				continue
			}

			matched++
			alert := alerting.NewMatchAlert{
				UserID:          profile.ID,
				OpportunityID:   opp.ID,
				OpportunityName: opp.Name,
				Score:           result.Score,
				KeyBenefits:     opp.BenefitList(),
			}
			outcomes = append(outcomes, r.dispatcher.Dispatch(ctx, alert, snap)...)
		}
	}

	r.logger.Info("new-match sweep completed",
		zap.Int("opportunities", len(opps)),
		zap.Int("profiles", len(profiles)),
		zap.Int("matches", matched),
	)

	return outcomes, nil
}

// NotifyNewMatch dispatches a single new-match notification, typically
// triggered by an external re-evaluation event.
func (r *Runner) NotifyNewMatch(ctx context.Context, userID, oppID, oppName string, score float64, benefits []string) alerting.Outcome {
	if oppName == "" {
		oppName = oppID
	}
	alert := alerting.NewMatchAlert{
		UserID:          userID,
		OpportunityID:   oppID,
		OpportunityName: oppName,
		Score:           score,
		KeyBenefits:     benefits,
	}
	outcomes := r.dispatcher.Dispatch(ctx, alert, r.store.Snapshot())
	return outcomes[0]
}

// NotifyStatusUpdate dispatches a status-change notification for one
// user's application.
func (r *Runner) NotifyStatusUpdate(ctx context.Context, userID, oppID, oppName string, from, to scholar.Status, action string) alerting.Outcome {
	if oppName == "" {
		oppName = oppID
	}
	alert := alerting.StatusUpdateAlert{
		UserID:          userID,
		OpportunityID:   oppID,
		OpportunityName: oppName,
		OldStatus:       from,
		NewStatus:       to,
		ActionRequired:  action,
	}
	outcomes := r.dispatcher.Dispatch(ctx, alert, r.store.Snapshot())
	return outcomes[0]
}

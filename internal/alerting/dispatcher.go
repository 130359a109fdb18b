package alerting

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch/internal/delivery"
	"github.com/scholarmatch/scholarmatch/internal/prefs"
)

// Skip reasons recorded on outcomes that never reached a channel.
const (
	SkipCategoryDisabled = "category disabled"
	SkipBelowThreshold   = "below threshold"
	SkipNoChannels       = "no channels enabled"
)

// Outcome records what happened to one notification for one user:
// skipped with a reason, or attempted with per-channel results. Delivered
// means at least one channel accepted the message.
type Outcome struct {
	UserID        string          `json:"user_id"`
	Kind          string          `json:"kind"`
	Attempted     bool            `json:"attempted"`
	Delivered     bool            `json:"delivered"`
	SkippedReason string          `json:"skipped_reason,omitempty"`
	Channels      map[string]bool `json:"channels,omitempty"`
}

const defaultChannelTimeout = 5 * time.Second

// Dispatcher fans alerts out to delivery channels, honouring per-user
// category and channel preferences. It never retries a failed channel
// call; the channel provider owns retries.
type Dispatcher struct {
	channels []delivery.Channel
	timeout  time.Duration
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over the given channels. A
// non-positive timeout falls back to the default per-call timeout.
func NewDispatcher(channels []delivery.Channel, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultChannelTimeout
	}
	return &Dispatcher{channels: channels, timeout: timeout, logger: logger}
}

// Dispatch evaluates the alert against the preference snapshot and
// delivers where allowed. Deadline alerts fan out to every target user
// concurrently so one slow delivery cannot stall the rest; the other
// kinds address a single user.
func (d *Dispatcher) Dispatch(ctx context.Context, a Alert, snap prefs.Snapshot) []Outcome {
	switch alert := a.(type) {
	case DeadlineAlert:
		return d.dispatchDeadline(ctx, alert, snap)
	case NewMatchAlert:
		return []Outcome{d.dispatchNewMatch(ctx, alert, snap.Resolve(alert.UserID))}
	case StatusUpdateAlert:
		return []Outcome{d.deliver(ctx, alert, alert.UserID, snap.Resolve(alert.UserID))}
	default:
		d.logger.Error("dropping alert of unknown kind", zap.String("kind", a.Kind()))
		return nil
	}
}

func (d *Dispatcher) dispatchDeadline(ctx context.Context, alert DeadlineAlert, snap prefs.Snapshot) []Outcome {
	outcomes := make([]Outcome, len(alert.UserIDs))

	var wg sync.WaitGroup
	for i, userID := range alert.UserIDs {
		p := snap.Resolve(userID)
		if !p.DeadlineReminders {
			outcomes[i] = Outcome{UserID: userID, Kind: alert.Kind(), SkippedReason: SkipCategoryDisabled}
			continue
		}

		wg.Add(1)
		go func(i int, userID string, p prefs.Preferences) {
			defer wg.Done()
			outcomes[i] = d.deliver(ctx, alert, userID, p)
		}(i, userID, p)
	}
	wg.Wait()

	return outcomes
}

func (d *Dispatcher) dispatchNewMatch(ctx context.Context, alert NewMatchAlert, p prefs.Preferences) Outcome {
	if !p.MatchNotification {
		return Outcome{UserID: alert.UserID, Kind: alert.Kind(), SkippedReason: SkipCategoryDisabled}
	}
	if alert.Score < p.MinMatchScore {
		d.logger.Debug("match below notification threshold",
			zap.String("user_id", alert.UserID),
			zap.String("opportunity_id", alert.OpportunityID),
			zap.Float64("score", alert.Score),
			zap.Float64("min_match_score", p.MinMatchScore),
		)
		return Outcome{UserID: alert.UserID, Kind: alert.Kind(), SkippedReason: SkipBelowThreshold}
	}
	return d.deliver(ctx, alert, alert.UserID, p)
}

// deliver formats the alert once and pushes it through every enabled
// channel with an individual timeout.
func (d *Dispatcher) deliver(ctx context.Context, a Alert, userID string, p prefs.Preferences) Outcome {
	outcome := Outcome{UserID: userID, Kind: a.Kind()}

	msg, err := Format(a)
	if err != nil {
		d.logger.Error("formatting alert", zap.String("kind", a.Kind()), zap.Error(err))
		outcome.SkippedReason = err.Error()
		return outcome
	}

	enabled := make([]delivery.Channel, 0, len(d.channels))
	for _, ch := range d.channels {
		if channelEnabled(p, ch.Name()) {
			enabled = append(enabled, ch)
		}
	}
	if len(enabled) == 0 {
		outcome.SkippedReason = SkipNoChannels
		return outcome
	}

	outcome.Attempted = true
	outcome.Channels = make(map[string]bool, len(enabled))
	for _, ch := range enabled {
		callCtx, cancel := context.WithTimeout(ctx, d.timeout)
		ok := ch.Deliver(callCtx, userID, msg.Title, msg.Body)
		cancel()

		outcome.Channels[ch.Name()] = ok
		if ok {
			outcome.Delivered = true
		} else {
			d.logger.Warn("channel delivery failed",
				zap.String("channel", ch.Name()),
				zap.String("user_id", userID),
				zap.String("kind", a.Kind()),
			)
		}
	}

	return outcome
}

func channelEnabled(p prefs.Preferences, name string) bool {
	switch name {
	case delivery.ChannelEmail:
		return p.EmailEnabled
	case delivery.ChannelPush:
		return p.PushEnabled
	default:
		return false
	}
}

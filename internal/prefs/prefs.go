// Package prefs owns per-user notification preferences. The Store is the
// only shared mutable state in the whole service and the only way to read
// or write a user's preferences.
package prefs

import "sync"

// Defaults applied when a user never configured anything.
const (
	DefaultAlertLeadDays = 7
	DefaultMinMatchScore = 70.0
)

// Preferences describes how and when one user wants to be alerted.
type Preferences struct {
	UserID            string  `json:"user_id"`
	Email             string  `json:"email,omitempty"`
	AlertLeadDays     int     `json:"alert_lead_days"`
	MinMatchScore     float64 `json:"min_match_score"`
	EmailEnabled      bool    `json:"email_enabled"`
	PushEnabled       bool    `json:"push_enabled"`
	DeadlineReminders bool    `json:"deadline_reminders"`
	MatchNotification bool    `json:"match_notifications"`
}

// Defaults returns the preferences used for a user without a stored record:
// a 7-day lead, a 70.0 score threshold, everything enabled.
func Defaults(userID string) Preferences {
	return Preferences{
		UserID:            userID,
		AlertLeadDays:     DefaultAlertLeadDays,
		MinMatchScore:     DefaultMinMatchScore,
		EmailEnabled:      true,
		PushEnabled:       true,
		DeadlineReminders: true,
		MatchNotification: true,
	}
}

// Store is a process-wide map of user id to preferences. Last write wins
// per key; reads never see a half-written record.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Preferences
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Preferences)}
}

// Upsert replaces the preferences stored for prefs.UserID.
func (s *Store) Upsert(p Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[p.UserID] = p
}

// Get returns the stored preferences and whether a record exists.
func (s *Store) Get(userID string) (Preferences, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.entries[userID]
	return p, ok
}

// Resolve returns the stored preferences for the user, falling back to
// Defaults when none exist. A missing record is not an error.
func (s *Store) Resolve(userID string) Preferences {
	if p, ok := s.Get(userID); ok {
		return p
	}
	return Defaults(userID)
}

// Snapshot copies every stored record so an evaluation cycle reads one
// consistent view regardless of concurrent upserts.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make(map[string]Preferences, len(s.entries))
	for id, p := range s.entries {
		entries[id] = p
	}
	return Snapshot{entries: entries}
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot is an immutable view of the store taken at one point in time.
type Snapshot struct {
	entries map[string]Preferences
}

// Resolve mirrors Store.Resolve against the frozen view.
func (s Snapshot) Resolve(userID string) Preferences {
	if p, ok := s.entries[userID]; ok {
		return p
	}
	return Defaults(userID)
}

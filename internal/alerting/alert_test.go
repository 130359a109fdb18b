package alerting

import (
	"strings"
	"testing"
	"time"

	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

func TestDeadlineActionTiers(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "URGENT: Submit application immediately!"},
		{1, "URGENT: Submit application immediately!"},
		{2, "Final reminder: Complete your application soon"},
		{3, "Final reminder: Complete your application soon"},
		{4, "Start preparing your application documents"},
		{7, "Start preparing your application documents"},
		{8, "Mark your calendar and start preparation"},
		{30, "Mark your calendar and start preparation"},
	}

	for _, tt := range tests {
		if got := DeadlineAction(tt.days); got != tt.want {
			t.Errorf("DeadlineAction(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestFormatDeadlineAlert(t *testing.T) {
	msg, err := Format(DeadlineAlert{
		OpportunityID:   "fulbright-2025",
		OpportunityName: "Fulbright Scholarship",
		Deadline:        time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		DaysRemaining:   2,
		UserIDs:         []string{"u1"},
	})
	if err != nil {
		t.Fatalf("Format returned unexpected error: %v", err)
	}

	if msg.Title != "URGENT: Fulbright Scholarship deadline in 2 days" {
		t.Errorf("title = %q", msg.Title)
	}
	if !strings.Contains(msg.Body, "2025-10-01") {
		t.Errorf("body misses the deadline date: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Final reminder: Complete your application soon") {
		t.Errorf("body misses the action tier: %q", msg.Body)
	}
}

func TestFormatDeadlineAlertReminderPrefix(t *testing.T) {
	msg, err := Format(DeadlineAlert{
		OpportunityName: "Chevening Scholarship",
		Deadline:        time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		DaysRemaining:   6,
	})
	if err != nil {
		t.Fatalf("Format returned unexpected error: %v", err)
	}
	if !strings.HasPrefix(msg.Title, "REMINDER:") {
		t.Errorf("title = %q, want REMINDER prefix beyond 3 days", msg.Title)
	}
}

func TestFormatNewMatchAlert(t *testing.T) {
	msg, err := Format(NewMatchAlert{
		UserID:          "u1",
		OpportunityID:   "chevening-2025",
		OpportunityName: "Chevening Scholarship",
		Score:           85.5,
		KeyBenefits:     []string{"Full tuition", "Living allowance"},
	})
	if err != nil {
		t.Fatalf("Format returned unexpected error: %v", err)
	}

	if !strings.Contains(msg.Title, "85.50%") {
		t.Errorf("title misses the score: %q", msg.Title)
	}
	if !strings.Contains(msg.Body, "Chevening Scholarship") {
		t.Errorf("body misses the name: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "Full tuition, Living allowance") {
		t.Errorf("body misses the benefits: %q", msg.Body)
	}
}

func TestFormatStatusUpdateAlert(t *testing.T) {
	msg, err := Format(StatusUpdateAlert{
		UserID:          "u1",
		OpportunityName: "LPDP Scholarship",
		OldStatus:       scholar.StatusInProgress,
		NewStatus:       scholar.StatusSubmitted,
	})
	if err != nil {
		t.Fatalf("Format returned unexpected error: %v", err)
	}

	if !strings.Contains(msg.Body, "in_progress -> submitted") {
		t.Errorf("body misses the transition: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "No action required") {
		t.Errorf("body misses the action fallback: %q", msg.Body)
	}
}

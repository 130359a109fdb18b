// Package scholar holds the domain records exchanged between the ledger
// bridge, the matching engine, and the alerting pipeline.
package scholar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidInput marks records rejected before any scoring happens.
var ErrInvalidInput = errors.New("invalid input")

// AllFieldsSentinel in an opportunity's eligible fields means every major
// qualifies for the field criterion.
const AllFieldsSentinel = "All Fields"

// DegreeLevel is the academic level of a candidate or an eligibility entry.
type DegreeLevel string

const (
	DegreeBachelor DegreeLevel = "Bachelor"
	DegreeMaster   DegreeLevel = "Master"
	DegreePhD      DegreeLevel = "PhD"
	DegreeOther    DegreeLevel = "Other"
)

// ParseDegreeLevel converts a raw string to a DegreeLevel. Unknown values
// map to DegreeOther rather than failing: ledger records are not under our
// control and a strange level must not poison a whole batch.
func ParseDegreeLevel(s string) DegreeLevel {
	switch DegreeLevel(strings.TrimSpace(s)) {
	case DegreeBachelor, DegreeMaster, DegreePhD:
		return DegreeLevel(strings.TrimSpace(s))
	default:
		return DegreeOther
	}
}

// Status is the application state tracked on the ledger.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
)

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNotStarted, StatusInProgress, StatusSubmitted:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// Profile is a candidate record. It is owned by the caller and never
// retained by the scorer.
type Profile struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name,omitempty"`
	Email              string      `json:"email,omitempty"`
	GPA                float64     `json:"gpa"`
	DegreeLevel        DegreeLevel `json:"degree_level"`
	Major              string      `json:"major"`
	University         string      `json:"university,omitempty"`
	Country            string      `json:"country,omitempty"`
	Skills             []string    `json:"skills,omitempty"`
	PreferredCountries []string    `json:"preferred_countries,omitempty"`
	PreferredFields    []string    `json:"preferred_fields,omitempty"`
	GraduationYear     int         `json:"graduation_year,omitempty"`
}

// Validate enforces the profile invariants: non-empty identifier, GPA >= 0.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: profile id is empty", ErrInvalidInput)
	}
	if p.GPA < 0 {
		return fmt.Errorf("%w: profile %s has negative gpa", ErrInvalidInput, p.ID)
	}
	return nil
}

// Opportunity is a scholarship or grant record.
type Opportunity struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Provider       string            `json:"provider,omitempty"`
	Country        string            `json:"country,omitempty"`
	DegreeLevels   []DegreeLevel     `json:"degree_levels,omitempty"`
	FieldsOfStudy  []string          `json:"fields_of_study,omitempty"`
	MinGPA         float64           `json:"min_gpa"`
	RequiredSkills []string          `json:"required_skills,omitempty"`
	Deadline       time.Time         `json:"deadline"`
	Benefits       map[string]string `json:"benefits,omitempty"`
}

// Validate enforces the opportunity invariants: non-empty identifier and a
// set deadline.
func (o *Opportunity) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("%w: opportunity id is empty", ErrInvalidInput)
	}
	if o.Deadline.IsZero() {
		return fmt.Errorf("%w: opportunity %s has no deadline", ErrInvalidInput, o.ID)
	}
	return nil
}

// AcceptsDegree reports whether the level is listed as eligible.
func (o *Opportunity) AcceptsDegree(level DegreeLevel) bool {
	for _, l := range o.DegreeLevels {
		if l == level {
			return true
		}
	}
	return false
}

// BenefitList flattens the benefits mapping into "label: value" entries,
// suitable for a notification body.
func (o *Opportunity) BenefitList() []string {
	if len(o.Benefits) == 0 {
		return nil
	}
	list := make([]string, 0, len(o.Benefits))
	for label, value := range o.Benefits {
		list = append(list, fmt.Sprintf("%s: %s", label, value))
	}
	return list
}

// Application pairs an opportunity with one user's tracked state on the
// ledger.
type Application struct {
	UserID      string       `json:"user_id"`
	Opportunity *Opportunity `json:"opportunity"`
	Status      Status       `json:"status"`
}

// MatchResult is the outcome of scoring one (profile, opportunity) pair.
// Created fresh per scoring call and never mutated afterwards.
type MatchResult struct {
	OpportunityID   string   `json:"opportunity_id"`
	ProfileID       string   `json:"profile_id"`
	Score           float64  `json:"compatibility_score"`
	MatchedCriteria []string `json:"matched_criteria"`
	MissingCriteria []string `json:"missing_criteria"`
	Recommendation  string   `json:"recommendation"`
}

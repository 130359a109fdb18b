package ledger

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

const (
	OpportunitiesPath = "/v1/opportunities"
	ProfilesPath      = "/v1/profiles"
	ApplicationsPath  = "/v1/applications"
)

// opportunityItem is the wire shape of an opportunity record. The ledger
// serializes timestamps as RFC 3339 strings and degree levels as plain
// strings; conversion to domain types happens here, never downstream.
type opportunityItem struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Provider       string            `json:"provider"`
	Country        string            `json:"country"`
	DegreeLevels   []string          `json:"degree_levels"`
	FieldsOfStudy  []string          `json:"fields_of_study"`
	MinGPA         float64           `json:"min_gpa"`
	RequiredSkills []string          `json:"required_skills"`
	Deadline       string            `json:"deadline"`
	Benefits       map[string]string `json:"benefits"`
}

type profileItem struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	GPA                float64  `json:"gpa"`
	DegreeLevel        string   `json:"degree_level"`
	Major              string   `json:"major"`
	University         string   `json:"university"`
	Country            string   `json:"country"`
	Skills             []string `json:"skills"`
	PreferredCountries []string `json:"preferred_countries"`
	PreferredFields    []string `json:"preferred_fields"`
	GraduationYear     int      `json:"graduation_year"`
}

type applicationItem struct {
	UserID      string           `json:"user_id"`
	Status      string           `json:"status"`
	Opportunity *opportunityItem `json:"opportunity"`
}

// Opportunities returns every opportunity known to the ledger. Records
// that fail to convert are logged and skipped so one bad entry cannot
// poison a cycle.
func (c *Client) Opportunities() ([]*scholar.Opportunity, error) {
	return c.opportunities(url.Values{})
}

// OpportunitiesSince returns opportunities added to the ledger after the
// given time. Used by the daily new-match sweep.
func (c *Client) OpportunitiesSince(since time.Time) ([]*scholar.Opportunity, error) {
	q := url.Values{}
	q.Set("since", since.UTC().Format(time.RFC3339))
	return c.opportunities(q)
}

func (c *Client) opportunities(q url.Values) ([]*scholar.Opportunity, error) {
	q.Set("per_page", strconv.Itoa(perPage))

	items, err := c.GetItems(c.APIURL+OpportunitiesPath, q)
	if err != nil {
		return nil, fmt.Errorf("get opportunities: %w", err)
	}

	var raw []*opportunityItem
	if err := decodeItems(items, &raw); err != nil {
		return nil, fmt.Errorf("decode opportunities: %w", err)
	}

	opps := make([]*scholar.Opportunity, 0, len(raw))
	for _, item := range raw {
		opp, err := item.toDomain()
		if err != nil {
			c.logger.Warn("skipping malformed opportunity record",
				zap.String("opportunity_id", item.ID),
				zap.Error(err),
			)
			continue
		}
		opps = append(opps, opp)
	}

	return opps, nil
}

// Profiles returns every candidate profile registered on the ledger.
func (c *Client) Profiles() ([]*scholar.Profile, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))

	items, err := c.GetItems(c.APIURL+ProfilesPath, q)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}

	var raw []*profileItem
	if err := decodeItems(items, &raw); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	profiles := make([]*scholar.Profile, 0, len(raw))
	for _, item := range raw {
		profile := item.toDomain()
		if err := profile.Validate(); err != nil {
			c.logger.Warn("skipping malformed profile record",
				zap.String("profile_id", item.ID),
				zap.Error(err),
			)
			continue
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}

// Applications returns tracked applications, optionally narrowed to one
// status.
func (c *Client) Applications(status scholar.Status) ([]*scholar.Application, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(perPage))
	if status != "" {
		q.Set("status", string(status))
	}

	items, err := c.GetItems(c.APIURL+ApplicationsPath, q)
	if err != nil {
		return nil, fmt.Errorf("get applications: %w", err)
	}

	var raw []*applicationItem
	if err := decodeItems(items, &raw); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}

	apps := make([]*scholar.Application, 0, len(raw))
	for _, item := range raw {
		app, err := item.toDomain()
		if err != nil {
			c.logger.Warn("skipping malformed application record",
				zap.String("user_id", item.UserID),
				zap.Error(err),
			)
			continue
		}
		apps = append(apps, app)
	}

	return apps, nil
}

func decodeItems(items []Item, target interface{}) error {
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   target,
		TagName:  "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(items)
}

func (i *opportunityItem) toDomain() (*scholar.Opportunity, error) {
	deadline, err := time.Parse(time.RFC3339, i.Deadline)
	if err != nil {
		// The ledger also stores date-only deadlines.
		deadline, err = time.Parse("2006-01-02", i.Deadline)
		if err != nil {
			return nil, fmt.Errorf("parsing deadline %q: %w", i.Deadline, err)
		}
	}

	levels := make([]scholar.DegreeLevel, 0, len(i.DegreeLevels))
	for _, l := range i.DegreeLevels {
		levels = append(levels, scholar.ParseDegreeLevel(l))
	}

	opp := &scholar.Opportunity{
		ID:             i.ID,
		Name:           i.Name,
		Provider:       i.Provider,
		Country:        i.Country,
		DegreeLevels:   levels,
		FieldsOfStudy:  i.FieldsOfStudy,
		MinGPA:         i.MinGPA,
		RequiredSkills: i.RequiredSkills,
		Deadline:       deadline,
		Benefits:       i.Benefits,
	}
	if err := opp.Validate(); err != nil {
		return nil, err
	}

	return opp, nil
}

func (i *profileItem) toDomain() *scholar.Profile {
	return &scholar.Profile{
		ID:                 i.ID,
		Name:               i.Name,
		Email:              i.Email,
		GPA:                i.GPA,
		DegreeLevel:        scholar.ParseDegreeLevel(i.DegreeLevel),
		Major:              i.Major,
		University:         i.University,
		Country:            i.Country,
		Skills:             i.Skills,
		PreferredCountries: i.PreferredCountries,
		PreferredFields:    i.PreferredFields,
		GraduationYear:     i.GraduationYear,
	}
}

func (i *applicationItem) toDomain() (*scholar.Application, error) {
	status, err := scholar.ParseStatus(i.Status)
	if err != nil {
		return nil, err
	}
	if i.Opportunity == nil {
		return nil, fmt.Errorf("application for user %s has no opportunity", i.UserID)
	}

	opp, err := i.Opportunity.toDomain()
	if err != nil {
		return nil, err
	}

	return &scholar.Application{
		UserID:      i.UserID,
		Opportunity: opp,
		Status:      status,
	}, nil
}

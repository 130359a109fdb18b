package matching

import (
	"errors"
	"strings"
	"testing"

	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

func perfectProfile() *scholar.Profile {
	return &scholar.Profile{
		ID:                 "user-001",
		GPA:                3.5,
		DegreeLevel:        scholar.DegreeBachelor,
		Major:              "Computer Science",
		Skills:             []string{"Leadership", "Research"},
		PreferredCountries: []string{"United States"},
	}
}

func TestScorePerfectMatch(t *testing.T) {
	opp := &scholar.Opportunity{
		ID:            "fulbright-2025",
		Name:          "Fulbright Scholarship",
		Country:       "United States",
		DegreeLevels:  []scholar.DegreeLevel{scholar.DegreeBachelor, scholar.DegreeMaster},
		FieldsOfStudy: []string{"All Fields"},
		MinGPA:        3.0,
	}

	result, err := Score(perfectProfile(), opp)
	if err != nil {
		t.Fatalf("Score returned unexpected error: %v", err)
	}

	if result.Score != 100.00 {
		t.Errorf("score = %v, want 100.00", result.Score)
	}
	if !strings.HasPrefix(result.Recommendation, "Excellent match") {
		t.Errorf("recommendation = %q, want excellent band", result.Recommendation)
	}
	if len(result.MissingCriteria) != 0 {
		t.Errorf("missing criteria = %v, want none", result.MissingCriteria)
	}
}

func TestScoreSubScores(t *testing.T) {
	tests := []struct {
		name    string
		profile *scholar.Profile
		opp     *scholar.Opportunity
		want    float64
	}{
		{
			name: "partial gpa with degree eligible",
			profile: &scholar.Profile{
				ID:          "u1",
				GPA:         2.0,
				DegreeLevel: scholar.DegreeBachelor,
				Major:       "History",
				Skills:      []string{"Research"},
			},
			opp: &scholar.Opportunity{
				ID:             "o1",
				DegreeLevels:   []scholar.DegreeLevel{scholar.DegreeBachelor},
				FieldsOfStudy:  []string{"Engineering"},
				MinGPA:         4.0,
				RequiredSkills: []string{"Research", "Leadership"},
			},
			// academic 50*0.3 + field 0 + location 75*0.2 + skills 50*0.15 + deadline 100*0.1
			want: 47.5,
		},
		{
			name: "degree mismatch halves academic score",
			profile: &scholar.Profile{
				ID:          "u2",
				GPA:         3.8,
				DegreeLevel: scholar.DegreePhD,
				Major:       "Physics",
			},
			opp: &scholar.Opportunity{
				ID:            "o2",
				DegreeLevels:  []scholar.DegreeLevel{scholar.DegreeBachelor},
				FieldsOfStudy: []string{"Physics"},
				MinGPA:        3.0,
			},
			// academic 50*0.3 + field 100*0.25 + location 75*0.2 + skills 100*0.15 + deadline 100*0.1
			want: 80.0,
		},
		{
			name: "country not preferred scores the middle tier",
			profile: &scholar.Profile{
				ID:                 "u3",
				GPA:                3.5,
				DegreeLevel:        scholar.DegreeMaster,
				Major:              "Computer Science",
				PreferredCountries: []string{"Germany"},
			},
			opp: &scholar.Opportunity{
				ID:            "o3",
				Country:       "Japan",
				DegreeLevels:  []scholar.DegreeLevel{scholar.DegreeMaster},
				FieldsOfStudy: []string{"All Fields"},
				MinGPA:        3.0,
			},
			// location 50*0.2 instead of 100*0.2
			want: 90.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Score(tt.profile, tt.opp)
			if err != nil {
				t.Fatalf("Score returned unexpected error: %v", err)
			}
			if result.Score != tt.want {
				t.Errorf("score = %v, want %v", result.Score, tt.want)
			}
		})
	}
}

func TestScoreFieldSubstringBothDirections(t *testing.T) {
	profile := perfectProfile()
	profile.Major = "Science"

	opp := &scholar.Opportunity{
		ID:            "o1",
		Country:       "United States",
		DegreeLevels:  []scholar.DegreeLevel{scholar.DegreeBachelor},
		FieldsOfStudy: []string{"computer science"},
		MinGPA:        3.0,
	}

	// "Science" is a substring of "computer science", case-insensitive.
	result, err := Score(profile, opp)
	if err != nil {
		t.Fatalf("Score returned unexpected error: %v", err)
	}
	if result.Score != 100.00 {
		t.Errorf("score = %v, want 100.00", result.Score)
	}
}

func TestScoreSkillOrderInvariant(t *testing.T) {
	opp := &scholar.Opportunity{
		ID:             "o1",
		DegreeLevels:   []scholar.DegreeLevel{scholar.DegreeBachelor},
		FieldsOfStudy:  []string{"All Fields"},
		MinGPA:         3.0,
		RequiredSkills: []string{"Research", "Leadership", "English Proficiency"},
	}

	a := perfectProfile()
	a.Skills = []string{"Leadership", "Research"}
	b := perfectProfile()
	b.Skills = []string{"Research", "Leadership"}

	ra, err := Score(a, opp)
	if err != nil {
		t.Fatalf("Score returned unexpected error: %v", err)
	}
	rb, err := Score(b, opp)
	if err != nil {
		t.Fatalf("Score returned unexpected error: %v", err)
	}

	if ra.Score != rb.Score {
		t.Errorf("score depends on skill order: %v != %v", ra.Score, rb.Score)
	}
}

func TestScoreBounds(t *testing.T) {
	profiles := []*scholar.Profile{
		{ID: "p1"},
		{ID: "p2", GPA: 4.0, DegreeLevel: scholar.DegreeMaster, Major: "Law"},
		{ID: "p3", GPA: 0.1, DegreeLevel: scholar.DegreeOther, PreferredCountries: []string{"Nowhere"}},
	}
	opps := []*scholar.Opportunity{
		{ID: "o1", MinGPA: 4.0, RequiredSkills: []string{"a", "b", "c"}},
		{ID: "o2", FieldsOfStudy: []string{"Law"}, DegreeLevels: []scholar.DegreeLevel{scholar.DegreeMaster}},
	}

	for _, p := range profiles {
		for _, o := range opps {
			result, err := Score(p, o)
			if err != nil {
				t.Fatalf("Score(%s, %s) returned unexpected error: %v", p.ID, o.ID, err)
			}
			if result.Score < 0 || result.Score > 100 {
				t.Errorf("Score(%s, %s) = %v, out of [0, 100]", p.ID, o.ID, result.Score)
			}
		}
	}
}

func TestScoreRejectsEmptyIdentifiers(t *testing.T) {
	opp := &scholar.Opportunity{ID: "o1"}

	if _, err := Score(&scholar.Profile{}, opp); !errors.Is(err, scholar.ErrInvalidInput) {
		t.Errorf("empty profile id: err = %v, want ErrInvalidInput", err)
	}
	if _, err := Score(perfectProfile(), &scholar.Opportunity{}); !errors.Is(err, scholar.ErrInvalidInput) {
		t.Errorf("empty opportunity id: err = %v, want ErrInvalidInput", err)
	}
}

func TestRecommendationBands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "Excellent match"},
		{90, "Excellent match"},
		{89.99, "Strong match"},
		{75, "Strong match"},
		{60, "Good match"},
		{40, "Moderate match"},
		{39.99, "Low match"},
		{0, "Low match"},
	}

	for _, tt := range tests {
		got := recommendation(tt.score)
		if !strings.HasPrefix(got, tt.want) {
			t.Errorf("recommendation(%v) = %q, want prefix %q", tt.score, got, tt.want)
		}
	}
}

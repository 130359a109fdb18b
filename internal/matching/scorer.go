// Package matching implements the compatibility scoring engine: a
// deterministic, side-effect-free weighted rubric over a (profile,
// opportunity) pair, plus ranking of an opportunity set for one profile.
package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

// Criterion weights. They sum to 1.0 and the final score stays in [0, 100].
const (
	weightAcademic = 0.30
	weightField    = 0.25
	weightLocation = 0.20
	weightSkills   = 0.15
	weightDeadline = 0.10
)

// Score computes the compatibility between a profile and an opportunity.
// It fails only on empty identifiers; every other input shape produces a
// result.
func Score(profile *scholar.Profile, opp *scholar.Opportunity) (*scholar.MatchResult, error) {
	if profile == nil || strings.TrimSpace(profile.ID) == "" {
		return nil, fmt.Errorf("%w: profile id is required for scoring", scholar.ErrInvalidInput)
	}
	if opp == nil || strings.TrimSpace(opp.ID) == "" {
		return nil, fmt.Errorf("%w: opportunity id is required for scoring", scholar.ErrInvalidInput)
	}

	result := &scholar.MatchResult{
		OpportunityID:   opp.ID,
		ProfileID:       profile.ID,
		MatchedCriteria: []string{},
		MissingCriteria: []string{},
	}

	score := academicScore(profile, opp, result) * weightAcademic
	score += fieldScore(profile, opp, result) * weightField
	score += locationScore(profile, opp, result) * weightLocation
	score += skillsScore(profile, opp, result) * weightSkills
	// Deadline proximity does not affect the score yet; the weight is
	// reserved so the remaining weights keep their meaning.
	score += 100.0 * weightDeadline

	result.Score = round2(score)
	result.Recommendation = recommendation(result.Score)

	return result, nil
}

// academicScore covers the GPA requirement and degree-level eligibility.
// A degree-level mismatch halves the sub-score instead of zeroing it:
// it is a penalty, not a disqualifier.
func academicScore(profile *scholar.Profile, opp *scholar.Opportunity, result *scholar.MatchResult) float64 {
	var sub float64
	if opp.MinGPA <= 0 || profile.GPA >= opp.MinGPA {
		sub = 100.0
		result.MatchedCriteria = append(result.MatchedCriteria,
			fmt.Sprintf("GPA %.2f >= %.2f", profile.GPA, opp.MinGPA))
	} else {
		sub = (profile.GPA / opp.MinGPA) * 100.0
		if sub < 0 {
			sub = 0
		}
		result.MissingCriteria = append(result.MissingCriteria,
			fmt.Sprintf("GPA %.2f < %.2f", profile.GPA, opp.MinGPA))
	}

	if opp.AcceptsDegree(profile.DegreeLevel) {
		result.MatchedCriteria = append(result.MatchedCriteria,
			fmt.Sprintf("Degree level: %s", profile.DegreeLevel))
	} else {
		sub *= 0.5
		result.MissingCriteria = append(result.MissingCriteria,
			fmt.Sprintf("Degree level %s not eligible", profile.DegreeLevel))
	}

	return sub
}

// fieldScore is all-or-nothing: 100 when any eligible field matches the
// major as a case-insensitive substring in either direction, or when the
// opportunity is open to all fields.
func fieldScore(profile *scholar.Profile, opp *scholar.Opportunity, result *scholar.MatchResult) float64 {
	major := strings.ToLower(profile.Major)

	var matching []string
	allFields := false
	for _, field := range opp.FieldsOfStudy {
		if field == scholar.AllFieldsSentinel {
			allFields = true
			continue
		}
		fieldLower := strings.ToLower(field)
		if fieldLower != "" && major != "" &&
			(strings.Contains(major, fieldLower) || strings.Contains(fieldLower, major)) {
			matching = append(matching, field)
		}
	}

	if len(matching) > 0 {
		result.MatchedCriteria = append(result.MatchedCriteria,
			fmt.Sprintf("Field match: %s", strings.Join(matching, ", ")))
		return 100.0
	}
	if allFields {
		result.MatchedCriteria = append(result.MatchedCriteria, "All fields eligible")
		return 100.0
	}

	result.MissingCriteria = append(result.MissingCriteria,
		fmt.Sprintf("Field %s not in eligible fields", profile.Major))
	return 0.0
}

// locationScore is three-tier: preferred country, no stated preference,
// or not preferred but not excluded.
func locationScore(profile *scholar.Profile, opp *scholar.Opportunity, result *scholar.MatchResult) float64 {
	for _, country := range profile.PreferredCountries {
		if country == opp.Country {
			result.MatchedCriteria = append(result.MatchedCriteria,
				fmt.Sprintf("Preferred country: %s", opp.Country))
			return 100.0
		}
	}
	if len(profile.PreferredCountries) == 0 {
		return 75.0
	}
	return 50.0
}

// skillsScore is the fraction of required skills present in the profile.
// No requirements means a full sub-score.
func skillsScore(profile *scholar.Profile, opp *scholar.Opportunity, result *scholar.MatchResult) float64 {
	if len(opp.RequiredSkills) == 0 {
		return 100.0
	}

	have := make(map[string]bool, len(profile.Skills))
	for _, skill := range profile.Skills {
		have[skill] = true
	}

	var matched, missing []string
	for _, skill := range opp.RequiredSkills {
		if have[skill] {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	if len(matched) > 0 {
		result.MatchedCriteria = append(result.MatchedCriteria,
			fmt.Sprintf("Skills: %s", strings.Join(matched, ", ")))
	}
	if len(missing) > 0 {
		result.MissingCriteria = append(result.MissingCriteria,
			fmt.Sprintf("Missing skills: %s", strings.Join(missing, ", ")))
	}

	return float64(len(matched)) / float64(len(opp.RequiredSkills)) * 100.0
}

// recommendation maps a final score onto a fixed advice band. Bands are
// inclusive at the lower bound and cover the whole [0, 100] range.
func recommendation(score float64) string {
	switch {
	case score >= 90:
		return "Excellent match! You meet all major requirements. Apply immediately!"
	case score >= 75:
		return "Strong match! You meet most requirements. Good chance of success."
	case score >= 60:
		return "Good match. Consider strengthening your application in missing areas."
	case score >= 40:
		return "Moderate match. You meet some requirements but missing key criteria."
	default:
		return "Low match. Consider other opportunities or improve your profile."
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

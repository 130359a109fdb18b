package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/scholarmatch/scholarmatch/internal/scholar"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(context.Background(), zap.NewNop(), "test-token")
	c.APIURL = srv.URL
	return c
}

func writeItems(t *testing.T, w http.ResponseWriter, page, pages int, items ...interface{}) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]interface{}{
		"Items":    items,
		"Found":    len(items),
		"Pages":    pages,
		"Page":     page,
		"per_page": perPage,
	})
	if err != nil {
		t.Fatalf("encoding page: %v", err)
	}
}

func rawOpportunity(id, deadline string) map[string]interface{} {
	return map[string]interface{}{
		"id":              id,
		"name":            id + " grant",
		"country":         "Germany",
		"degree_levels":   []string{"Master"},
		"fields_of_study": []string{"Computer Science"},
		"min_gpa":         3.0,
		"required_skills": []string{"Python"},
		"deadline":        deadline,
		"benefits":        map[string]string{"stipend": "1200 EUR/month"},
	}
}

func TestOpportunitiesWalksAllPages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("User-Agent = %q, want %q", got, userAgent)
		}

		switch r.URL.Query().Get("page") {
		case "":
			writeItems(t, w, 0, 2, rawOpportunity("o1", "2026-09-01T00:00:00Z"))
		case "1":
			writeItems(t, w, 1, 2, rawOpportunity("o2", "2026-10-01T00:00:00Z"))
		default:
			t.Errorf("unexpected page %q requested", r.URL.Query().Get("page"))
			w.WriteHeader(http.StatusNotFound)
		}
	})

	opps, err := client.Opportunities()
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}

	if len(opps) != 2 {
		t.Fatalf("got %d opportunities, want 2 across pages", len(opps))
	}
	if opps[0].ID != "o1" || opps[1].ID != "o2" {
		t.Errorf("ids = %s, %s; want o1, o2 in page order", opps[0].ID, opps[1].ID)
	}
}

func TestOpportunitiesConvertsWireRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, 0, 1, rawOpportunity("dsu-grant", "2026-09-15T12:00:00Z"))
	})

	opps, err := client.Opportunities()
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}

	opp := opps[0]
	want := time.Date(2026, time.September, 15, 12, 0, 0, 0, time.UTC)
	if !opp.Deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", opp.Deadline, want)
	}
	if len(opp.DegreeLevels) != 1 || opp.DegreeLevels[0] != scholar.DegreeMaster {
		t.Errorf("degree levels = %v, want [Master]", opp.DegreeLevels)
	}
	if opp.Benefits["stipend"] != "1200 EUR/month" {
		t.Errorf("benefits = %v, want stipend entry preserved", opp.Benefits)
	}
}

func TestOpportunitiesAcceptsDateOnlyDeadline(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, 0, 1, rawOpportunity("o1", "2026-09-15"))
	})

	opps, err := client.Opportunities()
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if got := opps[0].Deadline; got.Year() != 2026 || got.Month() != time.September || got.Day() != 15 {
		t.Errorf("deadline = %v, want 2026-09-15", got)
	}
}

func TestOpportunitiesSkipsMalformedRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, 0, 1,
			rawOpportunity("bad-deadline", "soon"),
			rawOpportunity("good", "2026-09-01"),
		)
	})

	opps, err := client.Opportunities()
	if err != nil {
		t.Fatalf("Opportunities: %v", err)
	}
	if len(opps) != 1 || opps[0].ID != "good" {
		t.Fatalf("opportunities = %+v, want the intact record only", opps)
	}
}

func TestOpportunitiesSincePassesQuery(t *testing.T) {
	since := time.Date(2026, time.August, 27, 0, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("since"); got != "2026-08-27T00:00:00Z" {
			t.Errorf("since = %q, want RFC 3339 UTC", got)
		}
		writeItems(t, w, 0, 1)
	})

	if _, err := client.OpportunitiesSince(since); err != nil {
		t.Fatalf("OpportunitiesSince: %v", err)
	}
}

func TestProfilesMapsDegreeLevel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, 0, 1,
			map[string]interface{}{"id": "p1", "gpa": 3.6, "degree_level": "Master", "major": "Physics"},
			map[string]interface{}{"id": "p2", "gpa": 3.1, "degree_level": "Diploma", "major": "Law"},
		)
	})

	profiles, err := client.Profiles()
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}
	if profiles[0].DegreeLevel != scholar.DegreeMaster {
		t.Errorf("p1 degree = %q, want Master", profiles[0].DegreeLevel)
	}
	if profiles[1].DegreeLevel != scholar.DegreeOther {
		t.Errorf("p2 degree = %q, want unknown level mapped to Other", profiles[1].DegreeLevel)
	}
}

func TestProfilesSkipsInvalidRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, 0, 1,
			map[string]interface{}{"id": "", "gpa": 3.6},
			map[string]interface{}{"id": "ok", "gpa": 3.6},
		)
	})

	profiles, err := client.Profiles()
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != "ok" {
		t.Fatalf("profiles = %+v, want the valid record only", profiles)
	}
}

func TestApplicationsFiltersByStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != "in_progress" {
			t.Errorf("status = %q, want in_progress", got)
		}
		writeItems(t, w, 0, 1, map[string]interface{}{
			"user_id":     "u1",
			"status":      "in_progress",
			"opportunity": rawOpportunity("o1", "2026-09-01"),
		})
	})

	apps, err := client.Applications(scholar.StatusInProgress)
	if err != nil {
		t.Fatalf("Applications: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("got %d applications, want 1", len(apps))
	}
	if apps[0].UserID != "u1" || apps[0].Status != scholar.StatusInProgress {
		t.Errorf("application = %+v, want u1 in_progress", apps[0])
	}
	if apps[0].Opportunity == nil || apps[0].Opportunity.ID != "o1" {
		t.Errorf("application opportunity = %+v, want o1", apps[0].Opportunity)
	}
}

func TestApplicationsSkipsUnknownStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeItems(t, w, 0, 1,
			map[string]interface{}{
				"user_id":     "u1",
				"status":      "withdrawn",
				"opportunity": rawOpportunity("o1", "2026-09-01"),
			},
			map[string]interface{}{
				"user_id":     "u2",
				"status":      "submitted",
				"opportunity": rawOpportunity("o2", "2026-09-01"),
			},
		)
	})

	apps, err := client.Applications("")
	if err != nil {
		t.Fatalf("Applications: %v", err)
	}
	if len(apps) != 1 || apps[0].UserID != "u2" {
		t.Fatalf("applications = %+v, want the known-status record only", apps)
	}
}

func TestGetItemsRejectsBadStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	if _, err := client.Opportunities(); err == nil {
		t.Fatal("expected an error for a non-200 gateway response")
	}
}

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/legal-aid-backend/internal/doctemplates"
)

func TestGetDashboard(t *testing.T) {
	s := newTestServer(t)
	s.createCase(t, "u1")
	s.createCase(t, "u2")
	if w := s.do(t, http.MethodPost, "/directory/advocates", map[string]any{"name": "A", "email": "a@bar.example", "bar_council_id": "DL/1/2001"}, nil); w.Code != http.StatusCreated {
		t.Fatalf("seed advocate: %d", w.Code)
	}

	w := s.do(t, http.MethodGet, "/dashboards/law-firm", nil, asUser("lf-1", "law-firm"))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	d := decode[map[string]any](t, w)
	if d["kind"] != "law-firm" || d["advocate_count"] != float64(1) {
		t.Fatalf("unexpected dashboard: %v", d)
	}
	if st, _ := d["status"].(map[string]any); st["new"] != float64(2) {
		t.Fatalf("unexpected status counts: %v", d["status"])
	}

	w = s.do(t, http.MethodGet, "/dashboards/volunteer", nil, asUser("vol-1", "volunteer"))
	if d := decode[map[string]any](t, w); w.Code != http.StatusOK || d["new_cases"] != float64(2) {
		t.Fatalf("volunteer dashboard: %d %v", w.Code, d)
	}

	w = s.do(t, http.MethodGet, "/dashboards/judge", nil, asUser("admin-1", "admin"))
	if w.Code != http.StatusNotFound || decode[ErrorResponse](t, w).Code != ErrCodeNotFound {
		t.Fatalf("unknown kind: %d %s", w.Code, w.Body.String())
	}
}

func TestGetDashboard_HidesOtherRequestersFromCitizens(t *testing.T) {
	s := newTestServer(t)
	alice := s.createCase(t, "alice")

	if w := s.do(t, http.MethodGet, "/cases/"+alice.ID, nil, asUser("mallory", "")); w.Code != http.StatusNotFound {
		t.Fatalf("case read as another citizen: %d", w.Code)
	}

	for _, hdr := range []map[string]string{asUser("mallory", ""), asUser("mallory", "citizen"), nil} {
		for _, kind := range []string{"volunteer", "advocate", "law-firm", "ngo"} {
			w := s.do(t, http.MethodGet, "/dashboards/"+kind, nil, hdr)
			if w.Code != http.StatusForbidden || decode[ErrorResponse](t, w).Code != ErrCodeForbidden {
				t.Fatalf("%s as %v: %d %s", kind, hdr, w.Code, w.Body.String())
			}
			if strings.Contains(w.Body.String(), alice.ID) {
				t.Fatalf("%s leaked case %s", kind, alice.ID)
			}
		}
	}

	w := s.do(t, http.MethodGet, "/dashboards/volunteer", nil, asUser("vol-1", "volunteer"))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), alice.ID) {
		t.Fatalf("volunteer dashboard: %d %s", w.Code, w.Body.String())
	}
}

func TestTemplates(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/templates", nil, nil)
	all := decode[ListTemplatesResponse](t, w)
	if w.Code != http.StatusOK || len(all.Templates) != 4 {
		t.Fatalf("list: %d %+v", w.Code, all)
	}

	w = s.do(t, http.MethodGet, "/templates?category=civil", nil, nil)
	for _, tpl := range decode[ListTemplatesResponse](t, w).Templates {
		if tpl.Category != "civil" {
			t.Fatalf("category filter leaked %+v", tpl)
		}
	}

	w = s.do(t, http.MethodGet, "/templates/rti-application", nil, nil)
	tpl := decode[doctemplates.Template](t, w)
	if w.Code != http.StatusOK || tpl.ID != "rti-application" || tpl.Markdown == "" || !strings.Contains(tpl.HTML, "<") {
		t.Fatalf("get: %d %+v", w.Code, tpl)
	}

	w = s.do(t, http.MethodGet, "/templates/affidavit", nil, nil)
	if w.Code != http.StatusNotFound || decode[ErrorResponse](t, w).Code != ErrCodeNotFound {
		t.Fatalf("missing: %d %s", w.Code, w.Body.String())
	}
}

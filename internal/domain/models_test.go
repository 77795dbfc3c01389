package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Case{}).TableName():      "cases",
		(Advocate{}).TableName():  "advocates",
		(LawFirm{}).TableName():   "law_firms",
		(NGO{}).TableName():       "ngos",
		(Volunteer{}).TableName(): "volunteers",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestCaseStatus_ValidAndAdvance(t *testing.T) {
	for _, s := range []CaseStatus{StatusNew, StatusInProgress, StatusResolved} {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if CaseStatus("closed").Valid() {
		t.Fatalf("closed must not be valid")
	}

	ok := []struct{ from, to CaseStatus }{
		{StatusNew, StatusNew},
		{StatusNew, StatusInProgress},
		{StatusNew, StatusResolved},
		{StatusInProgress, StatusResolved},
		{StatusResolved, StatusResolved},
	}
	for _, tc := range ok {
		if !tc.from.CanAdvanceTo(tc.to) {
			t.Fatalf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}
	bad := []struct{ from, to CaseStatus }{
		{StatusResolved, StatusNew},
		{StatusResolved, StatusInProgress},
		{StatusInProgress, StatusNew},
		{StatusNew, "closed"},
		{"closed", StatusResolved},
	}
	for _, tc := range bad {
		if tc.from.CanAdvanceTo(tc.to) {
			t.Fatalf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestCaseCategory_Valid(t *testing.T) {
	if len(Categories()) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(Categories()))
	}
	if !CategoryCyberCrime.Valid() || CaseCategory("tax").Valid() {
		t.Fatalf("category validity mismatch")
	}
}

func TestMigrations_IndexesAndStatusCheck(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range Models() {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&Case{}, "idx_requester_cases") {
		t.Fatalf("expected index idx_requester_cases on cases")
	}
	if !m.HasIndex(&Case{}, "idx_cases_submitted") {
		t.Fatalf("expected index idx_cases_submitted on cases")
	}

	now := time.Now().UTC()
	ok := &Case{ID: "c1", RequesterID: "u1", Category: CategoryConsumer, Description: "a defective washing machine", Status: StatusNew, SubmittedAt: now}
	if err := db.Create(ok).Error; err != nil {
		t.Fatalf("insert case: %v", err)
	}

	bad := &Case{ID: "c2", RequesterID: "u1", Category: CategoryConsumer, Description: "a defective washing machine", Status: "closed", SubmittedAt: now}
	if err := db.Create(bad).Error; err == nil {
		t.Fatalf("expected CHECK constraint violation for status=closed")
	}

	var got Case
	if err := db.First(&got, "id = ?", "c1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Status != StatusNew || got.Category != CategoryConsumer {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestDashboardVariants(t *testing.T) {
	var all = []Dashboard{AdvocateDashboard{}, NGODashboard{}, LawFirmDashboard{}, VolunteerDashboard{}}
	want := []DashboardKind{DashboardAdvocate, DashboardNGO, DashboardLawFirm, DashboardVolunteer}
	for i, d := range all {
		if d.DashboardKind() != want[i] || !want[i].Valid() {
			t.Fatalf("variant %T kind = %q; want %q", d, d.DashboardKind(), want[i])
		}
	}
	if DashboardKind("citizen").Valid() {
		t.Fatalf("unknown kind must be invalid")
	}
	if (StatusCounts{New: 1, InProgress: 2, Resolved: 3}).Total() != 6 {
		t.Fatalf("Total mismatch")
	}
}

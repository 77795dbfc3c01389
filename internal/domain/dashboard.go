package domain

import "time"

// DashboardKind tags which dashboard variant a payload carries.
type DashboardKind string

const (
	DashboardAdvocate  DashboardKind = "advocate"
	DashboardNGO       DashboardKind = "ngo"
	DashboardLawFirm   DashboardKind = "law-firm"
	DashboardVolunteer DashboardKind = "volunteer"
)

// Valid reports whether k names a known dashboard.
func (k DashboardKind) Valid() bool {
	switch k {
	case DashboardAdvocate, DashboardNGO, DashboardLawFirm, DashboardVolunteer:
		return true
	}
	return false
}

// Dashboard is implemented by every dashboard variant. The unexported method
// closes the set to the types declared in this file.
type Dashboard interface {
	DashboardKind() DashboardKind
	isDashboard()
}

// CaseSummary is the compact case row shown in dashboard tables.
type CaseSummary struct {
	ID          string       `json:"id"`
	Category    CaseCategory `json:"category"`
	Status      CaseStatus   `json:"status"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

// StatusCounts holds case totals per status.
type StatusCounts struct {
	New        int64 `json:"new"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
}

// Total returns the sum across statuses.
func (s StatusCounts) Total() int64 { return s.New + s.InProgress + s.Resolved }

// CategoryCount is one bucket of a per-category breakdown.
type CategoryCount struct {
	Category CaseCategory `json:"category"`
	Label    string       `json:"label"`
	Count    int64        `json:"count"`
}

// AdvocateDashboard is the caseload overview shown to advocates.
type AdvocateDashboard struct {
	Kind        DashboardKind   `json:"kind"`
	GeneratedAt time.Time       `json:"generated_at"`
	Status      StatusCounts    `json:"status"`
	OpenCases   []CaseSummary   `json:"open_cases"`
	ByCategory  []CategoryCount `json:"by_category"`
}

// NGODashboard summarises outreach across categories and registered volunteers.
type NGODashboard struct {
	Kind           DashboardKind   `json:"kind"`
	GeneratedAt    time.Time       `json:"generated_at"`
	Status         StatusCounts    `json:"status"`
	ByCategory     []CategoryCount `json:"by_category"`
	VolunteerCount int64           `json:"volunteer_count"`
	ResolutionRate float64         `json:"resolution_rate"`
	RecentResolved []CaseSummary   `json:"recent_resolved"`
}

// LawFirmDashboard summarises firm-level pipeline and team size.
type LawFirmDashboard struct {
	Kind          DashboardKind   `json:"kind"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Status        StatusCounts    `json:"status"`
	ByCategory    []CategoryCount `json:"by_category"`
	AdvocateCount int64           `json:"advocate_count"`
	RecentCases   []CaseSummary   `json:"recent_cases"`
}

// VolunteerDashboard lists intake work waiting for a first response.
type VolunteerDashboard struct {
	Kind        DashboardKind `json:"kind"`
	GeneratedAt time.Time     `json:"generated_at"`
	NewCases    int64         `json:"new_cases"`
	Queue       []CaseSummary `json:"queue"`
}

func (AdvocateDashboard) DashboardKind() DashboardKind  { return DashboardAdvocate }
func (NGODashboard) DashboardKind() DashboardKind       { return DashboardNGO }
func (LawFirmDashboard) DashboardKind() DashboardKind   { return DashboardLawFirm }
func (VolunteerDashboard) DashboardKind() DashboardKind { return DashboardVolunteer }

func (AdvocateDashboard) isDashboard()  {}
func (NGODashboard) isDashboard()       {}
func (LawFirmDashboard) isDashboard()   {}
func (VolunteerDashboard) isDashboard() {}

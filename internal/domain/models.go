// Package domain defines the persistence models for citizen cases and the
// provider directory (advocates, law firms, NGOs, volunteers). These types are
// mapped with GORM and form the core data layer of the legal-aid backend.
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseStatus is the lifecycle marker of a case record.
type CaseStatus string

const (
	StatusNew        CaseStatus = "new"
	StatusInProgress CaseStatus = "in-progress"
	StatusResolved   CaseStatus = "resolved"
)

// Valid reports whether s is one of the known status values.
func (s CaseStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

func (s CaseStatus) rank() int {
	switch s {
	case StatusNew:
		return 0
	case StatusInProgress:
		return 1
	case StatusResolved:
		return 2
	}
	return -1
}

// CanAdvanceTo reports whether next is reachable from s in the monotonic
// new → in-progress → resolved machine. Staying in place is allowed.
func (s CaseStatus) CanAdvanceTo(next CaseStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() >= s.rank()
}

// CaseCategory classifies a case by area of law.
type CaseCategory string

const (
	CategoryConsumer   CaseCategory = "consumer"
	CategoryProperty   CaseCategory = "property"
	CategoryFamily     CaseCategory = "family"
	CategoryCyberCrime CaseCategory = "cyber_crime"
	CategoryLabour     CaseCategory = "labour"
	CategoryCriminal   CaseCategory = "criminal"
	CategoryCivil      CaseCategory = "civil"
	CategoryOther      CaseCategory = "other"
)

// Categories returns every known category in display order.
func Categories() []CaseCategory {
	return []CaseCategory{
		CategoryConsumer, CategoryProperty, CategoryFamily, CategoryCyberCrime,
		CategoryLabour, CategoryCriminal, CategoryCivil, CategoryOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c CaseCategory) Valid() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// MinDescriptionLen is the shortest description accepted for a case.
const MinDescriptionLen = 20

// Case is a legal matter submitted by a citizen. Cases are never deleted by
// the application; only their status changes after creation.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - RequesterID: identifier of the submitting citizen; indexed with
//     SubmittedAt for "my cases" listings.
//   - FullName / Contact: optional identity details used by eBrief and
//     notifications.
//   - Category: area of law (see CaseCategory).
//   - Description: free-text account of the matter.
//   - Status: new, in-progress or resolved (enforced by DB constraint).
//   - SubmittedAt / UpdatedAt: timestamps managed by GORM.
type Case struct {
	ID          string       `json:"id"           gorm:"type:char(36);primaryKey"`
	RequesterID string       `json:"requester_id" gorm:"type:varchar(64);not null;index:idx_requester_cases,priority:1"`
	FullName    string       `json:"full_name,omitempty" gorm:"type:varchar(255)"`
	Contact     string       `json:"contact,omitempty"   gorm:"type:varchar(255)"`
	Category    CaseCategory `json:"category"     gorm:"type:varchar(32);not null;index"`
	Description string       `json:"description"  gorm:"type:text;not null"`
	Status      CaseStatus   `json:"status"       gorm:"type:varchar(16);not null;default:'new';index;check:status IN ('new','in-progress','resolved')"`
	SubmittedAt time.Time    `json:"submitted_at" gorm:"autoCreateTime;index:idx_requester_cases,priority:2;index:idx_cases_submitted"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName returns the database table name for Case.
func (Case) TableName() string { return "cases" }

// Advocate is a registered lawyer offering services through the portal.
type Advocate struct {
	ID              string    `json:"id"               gorm:"type:char(36);primaryKey"`
	Name            string    `json:"name"             gorm:"type:varchar(255);not null"`
	Email           string    `json:"email"            gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone           string    `json:"phone,omitempty"  gorm:"type:varchar(32)"`
	BarCouncilID    string    `json:"bar_council_id"   gorm:"type:varchar(64);not null"`
	Specialization  string    `json:"specialization"   gorm:"type:varchar(255)"`
	City            string    `json:"city"             gorm:"type:varchar(128);index"`
	ExperienceYears int       `json:"experience_years" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"       gorm:"index"`
}

// TableName returns the database table name for Advocate.
func (Advocate) TableName() string { return "advocates" }

// LawFirm is a registered firm.
type LawFirm struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	Name           string    `json:"name"            gorm:"type:varchar(255);not null"`
	Email          string    `json:"email"           gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone          string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	RegistrationNo string    `json:"registration_no" gorm:"type:varchar(64)"`
	PracticeAreas  string    `json:"practice_areas"  gorm:"type:text"`
	City           string    `json:"city"            gorm:"type:varchar(128);index"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index"`
}

// TableName returns the database table name for LawFirm.
func (LawFirm) TableName() string { return "law_firms" }

// NGO is a registered non-governmental organisation providing legal aid.
type NGO struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	Name           string    `json:"name"            gorm:"type:varchar(255);not null"`
	Email          string    `json:"email"           gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone          string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	RegistrationNo string    `json:"registration_no" gorm:"type:varchar(64)"`
	FocusArea      string    `json:"focus_area"      gorm:"type:varchar(255)"`
	City           string    `json:"city"            gorm:"type:varchar(128);index"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index"`
}

// TableName returns the database table name for NGO.
func (NGO) TableName() string { return "ngos" }

// Volunteer is an individual (often a law student) helping with intake.
type Volunteer struct {
	ID           string    `json:"id"              gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name"            gorm:"type:varchar(255);not null"`
	Email        string    `json:"email"           gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone        string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Skills       string    `json:"skills"          gorm:"type:text"`
	Availability string    `json:"availability"    gorm:"type:varchar(128)"`
	City         string    `json:"city"            gorm:"type:varchar(128);index"`
	CreatedAt    time.Time `json:"created_at"      gorm:"index"`
}

// TableName returns the database table name for Volunteer.
func (Volunteer) TableName() string { return "volunteers" }

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// BeforeCreate assigns a UUID when the caller left ID empty.
func (a *Advocate) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// BeforeCreate assigns a UUID when the caller left ID empty.
func (f *LawFirm) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// BeforeCreate assigns a UUID when the caller left ID empty.
func (n *NGO) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}

// BeforeCreate assigns a UUID when the caller left ID empty.
func (v *Volunteer) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// Models lists every GORM model owned by the application, in migration order.
func Models() []any {
	return []any{&Case{}, &Advocate{}, &LawFirm{}, &NGO{}, &Volunteer{}, &Idempotency{}}
}

// Package services – DirectoryService
//
// DirectoryService registers and lists providers (advocates, law firms, NGOs,
// volunteers). The four collections share one generic implementation; each
// constructor supplies the per-type normalization and required-field checks.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/repo"
	"github.com/tbourn/legal-aid-backend/internal/utils"
)

// DirectoryRepo is the persistence contract for one directory collection.
type DirectoryRepo[T repo.DirectoryEntry] interface {
	CreateEntry(ctx context.Context, db *gorm.DB, e *T) error
	ListEntriesPage(ctx context.Context, db *gorm.DB, city string, offset, limit int) ([]T, error)
	CountEntries(ctx context.Context, db *gorm.DB, city string) (int64, error)
}

// DirectoryService manages one directory collection.
type DirectoryService[T repo.DirectoryEntry] struct {
	DB   *gorm.DB
	Repo DirectoryRepo[T]

	// Name labels spans and errors ("advocates", "ngos", ...).
	Name string
	// Prepare normalizes an entry in place and rejects incomplete ones.
	Prepare func(*T) error
}

// NewAdvocateDirectory requires name, email and bar council enrolment.
func NewAdvocateDirectory(db *gorm.DB, r DirectoryRepo[domain.Advocate]) *DirectoryService[domain.Advocate] {
	return &DirectoryService[domain.Advocate]{DB: db, Repo: r, Name: "advocates", Prepare: func(a *domain.Advocate) error {
		a.ID = ""
		if err := contactFields(&a.Name, &a.Email, &a.Phone, &a.City); err != nil {
			return err
		}
		a.BarCouncilID = strings.TrimSpace(a.BarCouncilID)
		a.Specialization = strings.TrimSpace(a.Specialization)
		if a.BarCouncilID == "" {
			return fmt.Errorf("%w: bar_council_id is required", ErrInvalidEntry)
		}
		if a.ExperienceYears < 0 {
			return fmt.Errorf("%w: experience_years must not be negative", ErrInvalidEntry)
		}
		return nil
	}}
}

// NewLawFirmDirectory requires name and email.
func NewLawFirmDirectory(db *gorm.DB, r DirectoryRepo[domain.LawFirm]) *DirectoryService[domain.LawFirm] {
	return &DirectoryService[domain.LawFirm]{DB: db, Repo: r, Name: "law-firms", Prepare: func(f *domain.LawFirm) error {
		f.ID = ""
		f.RegistrationNo = strings.TrimSpace(f.RegistrationNo)
		f.PracticeAreas = strings.TrimSpace(f.PracticeAreas)
		return contactFields(&f.Name, &f.Email, &f.Phone, &f.City)
	}}
}

// NewNGODirectory requires name and email.
func NewNGODirectory(db *gorm.DB, r DirectoryRepo[domain.NGO]) *DirectoryService[domain.NGO] {
	return &DirectoryService[domain.NGO]{DB: db, Repo: r, Name: "ngos", Prepare: func(n *domain.NGO) error {
		n.ID = ""
		n.RegistrationNo = strings.TrimSpace(n.RegistrationNo)
		n.FocusArea = strings.TrimSpace(n.FocusArea)
		return contactFields(&n.Name, &n.Email, &n.Phone, &n.City)
	}}
}

// NewVolunteerDirectory requires name and email.
func NewVolunteerDirectory(db *gorm.DB, r DirectoryRepo[domain.Volunteer]) *DirectoryService[domain.Volunteer] {
	return &DirectoryService[domain.Volunteer]{DB: db, Repo: r, Name: "volunteers", Prepare: func(v *domain.Volunteer) error {
		v.ID = ""
		v.Skills = strings.TrimSpace(v.Skills)
		v.Availability = strings.TrimSpace(v.Availability)
		return contactFields(&v.Name, &v.Email, &v.Phone, &v.City)
	}}
}

// Register validates and stores an entry. IDs are always server-assigned.
func (s *DirectoryService[T]) Register(ctx context.Context, e *T) (*T, error) {
	tr := otel.Tracer("services/DirectoryService")
	ctx, span := tr.Start(ctx, "Register", trace.WithAttributes(attribute.String("directory", s.Name)))
	defer span.End()

	if s.Prepare != nil {
		if err := s.Prepare(e); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.CreateEntry(ctx, s.DB, e); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateEntry
		}
		return nil, err
	}
	return e, nil
}

// ListPage returns a page of entries (newest first), optionally for one city,
// and the total count.
func (s *DirectoryService[T]) ListPage(ctx context.Context, city string, page, pageSize int) ([]T, int64, error) {
	tr := otel.Tracer("services/DirectoryService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("directory", s.Name),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := s.Repo.CountEntries(ctx, s.DB, city)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []T{}, 0, nil
	}
	items, err := s.Repo.ListEntriesPage(ctx, s.DB, city, utils.Offset(page, pageSize), pageSize)
	return items, total, err
}

// contactFields trims the shared contact fields, lower-cases the email and
// checks name and email.
func contactFields(name, email, phone, city *string) error {
	*name = strings.Join(strings.Fields(*name), " ")
	*email = strings.ToLower(strings.TrimSpace(*email))
	*phone = strings.TrimSpace(*phone)
	*city = strings.TrimSpace(*city)
	if *name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	if *email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidEntry)
	}
	if a, err := mail.ParseAddress(*email); err != nil || a.Address != *email {
		return fmt.Errorf("%w: email is not a valid address", ErrInvalidEntry)
	}
	return nil
}

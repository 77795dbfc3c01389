// Package services – CaseService
//
// This file implements CaseService, the case store accessor. It validates
// intake submissions, enforces visibility rules (citizens only see their own
// cases), coordinates repository operations for creating, reading, listing and
// updating status, replays idempotent submissions, and acknowledges new cases
// through the configured notifier.
//
// Status transitions are unconstrained by default: any valid status may follow
// any other. With StrictTransitions set, the monotonic new → in-progress →
// resolved machine is enforced with a conditional write.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/legal-aid-backend/internal/cache"
	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/notify"
	"github.com/tbourn/legal-aid-backend/internal/observability"
	"github.com/tbourn/legal-aid-backend/internal/repo"
	"github.com/tbourn/legal-aid-backend/internal/session"
	"github.com/tbourn/legal-aid-backend/internal/utils"
)

// CaseCreateScope is the idempotency scope of case submissions.
const CaseCreateScope = "cases.create"

// CaseRepo defines the repository contract required by CaseService.
type CaseRepo interface {
	// CreateCase validates and inserts a new case with status "new".
	CreateCase(ctx context.Context, db *gorm.DB, in repo.NewCase) (*domain.Case, error)

	// GetCase fetches a case by ID.
	GetCase(ctx context.Context, db *gorm.DB, id string) (*domain.Case, error)

	// ListCases returns every matching case, newest first.
	ListCases(ctx context.Context, db *gorm.DB, f repo.CaseFilter) ([]domain.Case, error)

	// CountCases returns the total number of matching cases for pagination.
	CountCases(ctx context.Context, db *gorm.DB, f repo.CaseFilter) (int64, error)

	// ListCasesPage returns a page of matching cases, newest first.
	ListCasesPage(ctx context.Context, db *gorm.DB, f repo.CaseFilter, offset, limit int) ([]domain.Case, error)

	// UpdateCaseStatus writes status unconditionally.
	UpdateCaseStatus(ctx context.Context, db *gorm.DB, id string, status domain.CaseStatus) error

	// AdvanceCaseStatus writes status only if the case is still in "from".
	AdvanceCaseStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.CaseStatus) error

	// GetIdempotency returns a live idempotency record.
	GetIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key string, now time.Time) (*domain.Idempotency, error)

	// CreateIdempotency records the resource created for a key.
	CreateIdempotency(ctx context.Context, db *gorm.DB, userID, scope, key, resourceID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// CaseInput is a citizen's case submission.
type CaseInput struct {
	FullName    string
	Contact     string
	Category    domain.CaseCategory
	Description string
}

// CaseListFilter narrows listings. Zero values mean "any".
type CaseListFilter struct {
	Category domain.CaseCategory
	Status   domain.CaseStatus
	// All lists every requester's cases; ignored for citizens.
	All bool
}

// CaseService provides case-level operations.
type CaseService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the case repository used by this service.
	Repo CaseRepo

	// Notifier acknowledges new cases; nil disables acknowledgements.
	Notifier      notify.Notifier
	NotifyTimeout time.Duration

	// Dashboards is invalidated whenever case counts change.
	Dashboards cache.Cache

	StrictTransitions bool
	IdempotencyTTL    time.Duration
}

// NewCaseService constructs a CaseService with defaults: unconstrained
// transitions, no notifications, 24h idempotency window.
func NewCaseService(db *gorm.DB, r CaseRepo) *CaseService {
	return &CaseService{
		DB:             db,
		Repo:           r,
		Dashboards:     cache.Nop{},
		NotifyTimeout:  10 * time.Second,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// Create stores a new case for the session user.
func (s *CaseService) Create(ctx context.Context, in CaseInput) (*domain.Case, error) {
	c, _, err := s.CreateIdempotent(ctx, in, "")
	return c, err
}

// CreateIdempotent is Create with replay: when key is non-empty and an
// earlier submission by the same user used it, the originally created case is
// returned with replayed=true and nothing else happens. A key whose record
// cannot be stored fails the request and nothing is created.
func (s *CaseService) CreateIdempotent(ctx context.Context, in CaseInput, key string) (c *domain.Case, replayed bool, err error) {
	sess := session.From(ctx)
	tr := otel.Tracer("services/CaseService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", sess.UserID),
			attribute.String("case.category", string(in.Category)),
			attribute.Bool("idempotent", key != ""),
		),
	)
	defer func() { observability.Finish(span, err) }()

	if key != "" {
		if prev := s.replay(ctx, sess.UserID, key); prev != nil {
			span.SetAttributes(attribute.Bool("idempotency.replayed", true))
			return prev, true, nil
		}
	}

	if err := validateCaseInput(in); err != nil {
		return nil, false, err
	}

	if key == "" {
		c, err = s.insert(ctx, s.DB, sess.UserID, in)
	} else {
		// The case and its key commit together, so concurrent submissions of
		// one key store one case.
		err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var terr error
			if c, terr = s.insert(ctx, tx, sess.UserID, in); terr != nil {
				return terr
			}
			_, terr = s.Repo.CreateIdempotency(ctx, tx, sess.UserID, CaseCreateScope, key, c.ID, http.StatusCreated, s.idempotencyTTL())
			return terr
		})
		if errors.Is(err, repo.ErrDuplicate) {
			prev := s.replay(ctx, sess.UserID, key)
			if prev == nil {
				return nil, false, ErrKeyInUse
			}
			span.SetAttributes(attribute.Bool("idempotency.replayed", true))
			return prev, true, nil
		}
	}
	if err != nil {
		return nil, false, err
	}
	span.SetAttributes(attribute.String("case.id", c.ID))

	s.invalidateDashboards(ctx)
	s.acknowledge(ctx, c)
	return c, false, nil
}

func (s *CaseService) insert(ctx context.Context, db *gorm.DB, userID string, in CaseInput) (*domain.Case, error) {
	c, err := s.Repo.CreateCase(ctx, db, repo.NewCase{
		RequesterID: userID,
		FullName:    in.FullName,
		Contact:     in.Contact,
		Category:    in.Category,
		Description: in.Description,
	})
	if errors.Is(err, repo.ErrInvalid) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCase, err)
	}
	return c, err
}

func (s *CaseService) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s *CaseService) replay(ctx context.Context, userID, key string) *domain.Case {
	rec, err := s.Repo.GetIdempotency(ctx, s.DB, userID, CaseCreateScope, key, time.Now().UTC())
	if err != nil || rec == nil {
		return nil
	}
	prev, err := s.Repo.GetCase(ctx, s.DB, rec.ResourceID)
	if err != nil {
		return nil
	}
	return prev
}

// acknowledge notifies the citizen. Failures are logged only; the case is
// already stored.
func (s *CaseService) acknowledge(ctx context.Context, c *domain.Case) {
	if s.Notifier == nil {
		return
	}
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	ch, err := s.Notifier.CaseSubmitted(nctx, c)
	if err != nil {
		log.Warn().Err(err).Str("case_id", c.ID).Str("channel", ch).Msg("case acknowledgement failed")
		return
	}
	if ch != notify.ChannelNone {
		log.Info().Str("case_id", c.ID).Str("channel", ch).Msg("case acknowledgement sent")
	}
}

// Get returns a case visible to the session user. Citizens only see their own
// cases; other cases are reported as not found.
func (s *CaseService) Get(ctx context.Context, id string) (*domain.Case, error) {
	c, err := s.Repo.GetCase(ctx, s.DB, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	if !canView(session.From(ctx), c) {
		return nil, ErrCaseNotFound
	}
	return c, nil
}

// List returns every matching case, newest first. Each call re-reads the store.
func (s *CaseService) List(ctx context.Context, f CaseListFilter) ([]domain.Case, error) {
	rf, err := s.scope(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListCases(ctx, s.DB, rf)
}

// ListPage returns a page of matching cases (newest first) and the total count.
// It applies defaults for invalid page/pageSize.
func (s *CaseService) ListPage(ctx context.Context, f CaseListFilter, page, pageSize int) ([]domain.Case, int64, error) {
	tr := otel.Tracer("services/CaseService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
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
	rf, err := s.scope(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.Repo.CountCases(ctx, s.DB, rf)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Case{}, 0, nil
	}
	items, err := s.Repo.ListCasesPage(ctx, s.DB, rf, utils.Offset(page, pageSize), pageSize)
	return items, total, err
}

// Filter resolves the repository filter that List and ListPage would use.
// Handlers use it to compute list ETags over the same rows.
func (s *CaseService) Filter(ctx context.Context, f CaseListFilter) (repo.CaseFilter, error) {
	return s.scope(ctx, f)
}

func (s *CaseService) scope(ctx context.Context, f CaseListFilter) (repo.CaseFilter, error) {
	if f.Category != "" && !f.Category.Valid() {
		return repo.CaseFilter{}, fmt.Errorf("%w: unknown category %q", ErrInvalidCase, f.Category)
	}
	if f.Status != "" && !f.Status.Valid() {
		return repo.CaseFilter{}, ErrInvalidStatus
	}
	rf := repo.CaseFilter{Category: f.Category, Status: f.Status}
	sess := session.From(ctx)
	if !f.All || !seesAllCases(sess.Role) {
		rf.RequesterID = sess.UserID
	}
	return rf, nil
}

// UpdateStatus sets a case's status and returns the updated case. Only staff
// roles may change status.
func (s *CaseService) UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) (c *domain.Case, err error) {
	tr := otel.Tracer("services/CaseService")
	ctx, span := tr.Start(ctx, "UpdateStatus",
		trace.WithAttributes(
			attribute.String("case.id", id),
			attribute.String("case.status", string(status)),
			attribute.Bool("strict", s.StrictTransitions),
		),
	)
	defer func() { observability.Finish(span, err) }()

	if !isStaff(session.From(ctx).Role) {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	cur, err := s.Repo.GetCase(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	if s.StrictTransitions {
		if !cur.Status.CanAdvanceTo(status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, cur.Status, status)
		}
		err = s.Repo.AdvanceCaseStatus(ctx, s.DB, id, cur.Status, status)
	} else {
		err = s.Repo.UpdateCaseStatus(ctx, s.DB, id, status)
	}
	switch {
	case err == nil:
	case errors.Is(err, repo.ErrConflict):
		return nil, ErrStatusConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrCaseNotFound
	case errors.Is(err, repo.ErrInvalid):
		return nil, ErrInvalidStatus
	default:
		return nil, err
	}

	s.invalidateDashboards(ctx)
	return s.Repo.GetCase(ctx, s.DB, id)
}

func (s *CaseService) invalidateDashboards(ctx context.Context) {
	if s.Dashboards == nil {
		return
	}
	if err := s.Dashboards.Delete(ctx, DashboardCacheKeys()...); err != nil {
		log.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}

func validateCaseInput(in CaseInput) error {
	if !in.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidCase, in.Category)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < domain.MinDescriptionLen {
		return fmt.Errorf("%w: description must be at least %d characters", ErrInvalidCase, domain.MinDescriptionLen)
	}
	return nil
}

// isStaff reports whether r works cases rather than submitting them.
func isStaff(r session.Role) bool {
	switch r {
	case session.RoleAdvocate, session.RoleLawFirm, session.RoleNGO, session.RoleAdmin:
		return true
	}
	return false
}

func seesAllCases(r session.Role) bool { return isStaff(r) || r == session.RoleVolunteer }

func canView(s session.Context, c *domain.Case) bool {
	return c.RequesterID == s.UserID || seesAllCases(s.Role)
}

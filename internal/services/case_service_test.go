package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/notify"
	"github.com/tbourn/legal-aid-backend/internal/repo"
	"github.com/tbourn/legal-aid-backend/internal/session"
)

// ----- Fake repo -----

type fakeCaseRepo struct {
	cases map[string]*domain.Case
	seq   int

	createIn  repo.NewCase
	createErr error

	listFilter repo.CaseFilter

	countTotal int64
	countErr   error

	pageOffset int
	pageLimit  int
	pageItems  []domain.Case

	updateCalls  int
	advanceCalls int
	advanceFrom  domain.CaseStatus
	advanceErr   error

	idem      map[string]string
	idemCalls int
	idemErr   error

	// claimedBy simulates a concurrent request committing the same key first.
	claimedBy string
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: map[string]*domain.Case{}, idem: map[string]string{}}
}

func (r *fakeCaseRepo) CreateCase(_ context.Context, _ *gorm.DB, in repo.NewCase) (*domain.Case, error) {
	r.createIn = in
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	c := &domain.Case{
		ID:          "case-" + string(rune('0'+r.seq)),
		RequesterID: in.RequesterID,
		FullName:    in.FullName,
		Contact:     in.Contact,
		Category:    in.Category,
		Description: in.Description,
		Status:      domain.StatusNew,
	}
	r.cases[c.ID] = c
	return c, nil
}

func (r *fakeCaseRepo) GetCase(_ context.Context, _ *gorm.DB, id string) (*domain.Case, error) {
	c, ok := r.cases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCaseRepo) ListCases(_ context.Context, _ *gorm.DB, f repo.CaseFilter) ([]domain.Case, error) {
	r.listFilter = f
	return []domain.Case{{ID: "a"}, {ID: "b"}}, nil
}

func (r *fakeCaseRepo) CountCases(_ context.Context, _ *gorm.DB, f repo.CaseFilter) (int64, error) {
	r.listFilter = f
	return r.countTotal, r.countErr
}

func (r *fakeCaseRepo) ListCasesPage(_ context.Context, _ *gorm.DB, f repo.CaseFilter, offset, limit int) ([]domain.Case, error) {
	r.listFilter, r.pageOffset, r.pageLimit = f, offset, limit
	return r.pageItems, nil
}

func (r *fakeCaseRepo) UpdateCaseStatus(_ context.Context, _ *gorm.DB, id string, status domain.CaseStatus) error {
	r.updateCalls++
	c, ok := r.cases[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Status = status
	return nil
}

func (r *fakeCaseRepo) AdvanceCaseStatus(_ context.Context, _ *gorm.DB, id string, from, to domain.CaseStatus) error {
	r.advanceCalls++
	r.advanceFrom = from
	if r.advanceErr != nil {
		return r.advanceErr
	}
	r.cases[id].Status = to
	return nil
}

func (r *fakeCaseRepo) GetIdempotency(_ context.Context, _ *gorm.DB, userID, scope, key string, _ time.Time) (*domain.Idempotency, error) {
	id, ok := r.idem[userID+"|"+scope+"|"+key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &domain.Idempotency{ResourceID: id}, nil
}

func (r *fakeCaseRepo) CreateIdempotency(_ context.Context, _ *gorm.DB, userID, scope, key, resourceID string, status int, _ time.Duration) (*domain.Idempotency, error) {
	r.idemCalls++
	if r.idemErr != nil {
		return nil, r.idemErr
	}
	if r.claimedBy != "" {
		r.idem[userID+"|"+scope+"|"+key] = r.claimedBy
		return nil, repo.ErrDuplicate
	}
	if status != http.StatusCreated {
		return nil, errors.New("unexpected status")
	}
	r.idem[userID+"|"+scope+"|"+key] = resourceID
	return &domain.Idempotency{ResourceID: resourceID}, nil
}

type fakeNotifier struct {
	calls int
	err   error
}

func (n *fakeNotifier) CaseSubmitted(context.Context, *domain.Case) (string, error) {
	n.calls++
	return notify.ChannelEmail, n.err
}

type recordingCache struct {
	deleted [][]string
}

func (c *recordingCache) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (c *recordingCache) Set(context.Context, string, any, time.Duration) error { return nil }
func (c *recordingCache) Delete(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys)
	return nil
}

func as(userID string, role session.Role) context.Context {
	return session.With(context.Background(), session.Context{UserID: userID, Role: role, Locale: language.English})
}

func validCaseInput() CaseInput {
	return CaseInput{
		FullName:    "Asha Patil",
		Contact:     "asha@example.com",
		Category:    domain.CategoryConsumer,
		Description: "The seller refuses to replace a defective refrigerator.",
	}
}

// ----- Tests -----

func TestNewCaseService_Defaults(t *testing.T) {
	s := NewCaseService(nil, newFakeCaseRepo())
	if s.StrictTransitions || s.Notifier != nil {
		t.Fatalf("expected unconstrained transitions and no notifier")
	}
	if s.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("IdempotencyTTL default = 24h, got %v", s.IdempotencyTTL)
	}
}

func TestCreate_UsesSessionUser_NotifiesAndInvalidates(t *testing.T) {
	r := newFakeCaseRepo()
	n := &fakeNotifier{}
	dc := &recordingCache{}
	s := NewCaseService(nil, r)
	s.Notifier = n
	s.Dashboards = dc

	c, err := s.Create(as("u1", session.RoleCitizen), validCaseInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.createIn.RequesterID != "u1" || c.RequesterID != "u1" {
		t.Fatalf("requester not taken from session: %+v", r.createIn)
	}
	if n.calls != 1 {
		t.Fatalf("expected one acknowledgement, got %d", n.calls)
	}
	if len(dc.deleted) != 1 || len(dc.deleted[0]) != 4 {
		t.Fatalf("expected dashboards invalidated, got %v", dc.deleted)
	}
}

func TestCreate_NotificationFailureDoesNotFail(t *testing.T) {
	r := newFakeCaseRepo()
	s := NewCaseService(nil, r)
	s.Notifier = &fakeNotifier{err: notify.ErrSendFailed}

	if _, err := s.Create(as("u1", session.RoleCitizen), validCaseInput()); err != nil {
		t.Fatalf("notification failure must not fail Create: %v", err)
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	r := newFakeCaseRepo()
	s := NewCaseService(nil, r)

	bad := []func(*CaseInput){
		func(in *CaseInput) { in.Category = "tax" },
		func(in *CaseInput) { in.Description = "too short" },
		func(in *CaseInput) { in.Description = "     " },
	}
	for i, mutate := range bad {
		in := validCaseInput()
		mutate(&in)
		if _, err := s.Create(as("u1", session.RoleCitizen), in); !errors.Is(err, ErrInvalidCase) {
			t.Fatalf("case %d: expected ErrInvalidCase, got %v", i, err)
		}
	}
	if r.seq != 0 {
		t.Fatalf("repo must not be called for invalid input")
	}

	// Write-boundary rejection is mapped too.
	r.createErr = repo.ErrInvalid
	if _, err := s.Create(as("", session.RoleCitizen), validCaseInput()); !errors.Is(err, ErrInvalidCase) {
		t.Fatalf("expected ErrInvalidCase from repo.ErrInvalid, got %v", err)
	}
}

// newTxDB gives keyed creates a database to open transactions on; the fake
// repo ignores it.
func newTxDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:casesvc_%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestCreateIdempotent_ReplaysOriginal(t *testing.T) {
	r := newFakeCaseRepo()
	n := &fakeNotifier{}
	s := NewCaseService(newTxDB(t), r)
	s.Notifier = n
	ctx := as("u1", session.RoleCitizen)

	first, replayed, err := s.CreateIdempotent(ctx, validCaseInput(), "k1")
	if err != nil || replayed {
		t.Fatalf("first call: replayed=%v err=%v", replayed, err)
	}
	second, replayed, err := s.CreateIdempotent(ctx, validCaseInput(), "k1")
	if err != nil || !replayed {
		t.Fatalf("second call: replayed=%v err=%v", replayed, err)
	}
	if second.ID != first.ID || r.seq != 1 || n.calls != 1 {
		t.Fatalf("replay must not create or notify again: first=%s second=%s seq=%d notify=%d", first.ID, second.ID, r.seq, n.calls)
	}

	// Another user with the same key gets a fresh case.
	other, replayed, _ := s.CreateIdempotent(as("u2", session.RoleCitizen), validCaseInput(), "k1")
	if replayed || other.ID == first.ID {
		t.Fatalf("keys must be scoped per user")
	}
}

func TestCreateIdempotent_RecordFailureFailsTheRequest(t *testing.T) {
	r := newFakeCaseRepo()
	r.idemErr = errors.New("disk full")
	n := &fakeNotifier{}
	s := NewCaseService(newTxDB(t), r)
	s.Notifier = n

	c, _, err := s.CreateIdempotent(as("u1", session.RoleCitizen), validCaseInput(), "k1")
	if err == nil || c != nil {
		t.Fatalf("expected the failure to surface, got %+v %v", c, err)
	}
	if r.idemCalls != 1 || n.calls != 0 {
		t.Fatalf("idempotency writes=%d notifications=%d", r.idemCalls, n.calls)
	}
}

func TestCreateIdempotent_ConcurrentDuplicateReplaysWinner(t *testing.T) {
	r := newFakeCaseRepo()
	r.cases["case-w"] = &domain.Case{ID: "case-w", RequesterID: "u1", Status: domain.StatusNew}
	r.claimedBy = "case-w"
	n := &fakeNotifier{}
	dash := &recordingCache{}
	s := NewCaseService(newTxDB(t), r)
	s.Notifier = n
	s.Dashboards = dash

	c, replayed, err := s.CreateIdempotent(as("u1", session.RoleCitizen), validCaseInput(), "k1")
	if err != nil || !replayed || c.ID != "case-w" {
		t.Fatalf("expected the winner's case replayed, got %+v replayed=%v err=%v", c, replayed, err)
	}
	if n.calls != 0 || len(dash.deleted) != 0 {
		t.Fatalf("the losing request must not notify (%d) or invalidate (%d)", n.calls, len(dash.deleted))
	}

	// The winner's case is gone: the key cannot be honoured.
	r.claimedBy = "case-gone"
	if _, _, err := s.CreateIdempotent(as("u1", session.RoleCitizen), validCaseInput(), "k2"); !errors.Is(err, ErrKeyInUse) {
		t.Fatalf("expected ErrKeyInUse, got %v", err)
	}
}

func TestGet_VisibilityRules(t *testing.T) {
	r := newFakeCaseRepo()
	r.cases["c1"] = &domain.Case{ID: "c1", RequesterID: "owner", Status: domain.StatusNew}
	s := NewCaseService(nil, r)

	if _, err := s.Get(as("owner", session.RoleCitizen), " c1 "); err != nil {
		t.Fatalf("owner should see own case: %v", err)
	}
	if _, err := s.Get(as("stranger", session.RoleCitizen), "c1"); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("other citizens must get ErrCaseNotFound, got %v", err)
	}
	for _, role := range []session.Role{session.RoleAdvocate, session.RoleNGO, session.RoleVolunteer, session.RoleAdmin} {
		if _, err := s.Get(as("staff", role), "c1"); err != nil {
			t.Fatalf("%s should see any case: %v", role, err)
		}
	}
	if _, err := s.Get(as("owner", session.RoleCitizen), "missing-id"); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestListPage_ScopesAndPaginates(t *testing.T) {
	r := newFakeCaseRepo()
	r.countTotal = 5
	r.pageItems = []domain.Case{{ID: "x"}}
	s := NewCaseService(nil, r)

	items, total, err := s.ListPage(as("u1", session.RoleCitizen), CaseListFilter{All: true, Status: domain.StatusNew}, 3, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 5 || len(items) != 1 {
		t.Fatalf("unexpected result: total=%d items=%v", total, items)
	}
	if r.listFilter.RequesterID != "u1" || r.listFilter.Status != domain.StatusNew {
		t.Fatalf("citizen listing must be scoped to self: %+v", r.listFilter)
	}
	if r.pageOffset != 4 || r.pageLimit != 2 {
		t.Fatalf("offset/limit = %d/%d; want 4/2", r.pageOffset, r.pageLimit)
	}

	if _, _, err := s.ListPage(as("adv", session.RoleAdvocate), CaseListFilter{All: true}, 0, 0); err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if r.listFilter.RequesterID != "" || r.pageOffset != 0 || r.pageLimit != 20 {
		t.Fatalf("staff All listing must be unscoped with defaults: %+v off=%d lim=%d", r.listFilter, r.pageOffset, r.pageLimit)
	}
}

func TestListPage_EmptyAndErrors(t *testing.T) {
	r := newFakeCaseRepo()
	s := NewCaseService(nil, r)

	items, total, err := s.ListPage(as("u1", session.RoleCitizen), CaseListFilter{}, 1, 10)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil page, got items=%v total=%d err=%v", items, total, err)
	}

	r.countErr = errors.New("db down")
	if _, _, err := s.ListPage(as("u1", session.RoleCitizen), CaseListFilter{}, 1, 10); err == nil {
		t.Fatalf("expected count error")
	}
	if _, _, err := s.ListPage(as("u1", session.RoleCitizen), CaseListFilter{Status: "closed"}, 1, 10); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := s.List(as("u1", session.RoleCitizen), CaseListFilter{Category: "tax"}); !errors.Is(err, ErrInvalidCase) {
		t.Fatalf("expected ErrInvalidCase, got %v", err)
	}
}

func TestUpdateStatus_UnconstrainedByDefault(t *testing.T) {
	r := newFakeCaseRepo()
	r.cases["c1"] = &domain.Case{ID: "c1", RequesterID: "u1", Status: domain.StatusResolved}
	s := NewCaseService(nil, r)
	ctx := as("admin", session.RoleAdmin)

	c, err := s.UpdateStatus(ctx, "c1", domain.StatusNew)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if c.Status != domain.StatusNew || r.updateCalls != 1 || r.advanceCalls != 0 {
		t.Fatalf("expected unconditional write to new, got %+v", c)
	}
}

func TestUpdateStatus_StrictMachine(t *testing.T) {
	r := newFakeCaseRepo()
	r.cases["c1"] = &domain.Case{ID: "c1", Status: domain.StatusInProgress}
	s := NewCaseService(nil, r)
	s.StrictTransitions = true
	ctx := as("adv", session.RoleAdvocate)

	if _, err := s.UpdateStatus(ctx, "c1", domain.StatusNew); !errors.Is(err, ErrTransitionNotAllowed) {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}
	c, err := s.UpdateStatus(ctx, "c1", domain.StatusResolved)
	if err != nil || c.Status != domain.StatusResolved {
		t.Fatalf("forward move should succeed: %+v err=%v", c, err)
	}
	if r.advanceFrom != domain.StatusInProgress {
		t.Fatalf("conditional write must use the observed status, got %q", r.advanceFrom)
	}

	r.advanceErr = repo.ErrConflict
	if _, err := s.UpdateStatus(ctx, "c1", domain.StatusResolved); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
}

func TestUpdateStatus_Errors(t *testing.T) {
	r := newFakeCaseRepo()
	r.cases["c1"] = &domain.Case{ID: "c1", Status: domain.StatusNew}
	s := NewCaseService(nil, r)

	if _, err := s.UpdateStatus(as("u1", session.RoleCitizen), "c1", domain.StatusResolved); !errors.Is(err, ErrForbidden) {
		t.Fatalf("citizens must get ErrForbidden, got %v", err)
	}
	if _, err := s.UpdateStatus(as("vol", session.RoleVolunteer), "c1", domain.StatusResolved); !errors.Is(err, ErrForbidden) {
		t.Fatalf("volunteers must get ErrForbidden, got %v", err)
	}
	if _, err := s.UpdateStatus(as("a", session.RoleAdmin), "c1", "closed"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := s.UpdateStatus(as("a", session.RoleAdmin), "nope", domain.StatusResolved); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

// Case HTTP handlers.
//
// This file exposes REST endpoints for case records:
//   - POST  /cases              (submit; Idempotency-Key replays)
//   - GET   /cases              (list, paginated, filterable, ETag support)
//   - GET   /cases/{id}         (lookup)
//   - PATCH /cases/{id}/status  (staff only)
package handlers

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/http/middleware"
	"github.com/tbourn/legal-aid-backend/internal/repo"
	"github.com/tbourn/legal-aid-backend/internal/services"
)

//
// DTOs
//

// CreateCaseRequest is the JSON payload for submitting a case.
type CreateCaseRequest struct {
	// FullName is optional; anonymous submissions leave it empty.
	FullName string `json:"full_name" example:"Meera Iyer"`
	// Contact is an optional phone number or email for acknowledgements.
	Contact string `json:"contact" example:"+91 98765 43210"`
	// Category is one of consumer, property, family, cyber_crime, labour,
	// criminal, civil, other.
	Category domain.CaseCategory `json:"category" binding:"required" example:"cyber_crime"`
	// Description must be at least 20 characters.
	Description string `json:"description" binding:"required" example:"My UPI account was debited twice for a purchase I never made."`
}

// UpdateCaseStatusRequest is the JSON payload for changing a case's status.
type UpdateCaseStatusRequest struct {
	Status domain.CaseStatus `json:"status" binding:"required" example:"in-progress"`
}

// ListCasesResponse wraps a page of cases and pagination information.
type ListCasesResponse struct {
	Cases      []domain.Case `json:"cases"`
	Pagination Pagination    `json:"pagination"`
}

//
// Handlers
//

// CreateCase godoc
// @ID          createCase
// @Summary     Submit a case
// @Description Stores a new case with status "new" for the current user. A repeated
// @Description Idempotency-Key returns the originally created case with Idempotency-Replayed: true.
// @Tags        Cases
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"          example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries" example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateCaseRequest  true  "Case submission"
//
// @Success     201  {object}  domain.Case
// @Header      201  {string}  Idempotency-Replayed  "true when the response replays an earlier submission"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid submission"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /cases [post]
func (h *Handlers) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "category and description are required")
		return
	}

	key, _, _ := middleware.IdempotencyKey(c)
	cs, replayed, err := h.caseSvc.CreateIdempotent(c.Request.Context(), services.CaseInput{
		FullName:    req.FullName,
		Contact:     req.Contact,
		Category:    req.Category,
		Description: req.Description,
	}, key)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCase):
		fail(c, http.StatusBadRequest, ErrCodeInvalidCase, err.Error())
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not store the case")
		return
	}

	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusCreated, cs)
}

// ListCases godoc
// @ID          listCases
// @Summary     List cases (paginated)
// @Description Returns the caller's cases, newest first. Staff and volunteers may pass all=true
// @Description to list every case. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Cases
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       X-User-Role    header  string  false "Caller role"                 Enums(citizen, advocate, law-firm, ngo, volunteer, admin)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       category       query   string  false "Filter by category"
// @Param       status         query   string  false "Filter by status"            Enums(new, in-progress, resolved)
// @Param       all            query   bool    false "List every case (staff and volunteers)"
// @Param       page           query   int     false "Page number"                 minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"              minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCasesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad filter"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases [get]
func (h *Handlers) ListCases(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)
	all, _ := strconv.ParseBool(c.Query("all"))
	f := services.CaseListFilter{
		Category: domain.CaseCategory(strings.TrimSpace(c.Query("category"))),
		Status:   domain.CaseStatus(strings.TrimSpace(c.Query("status"))),
		All:      all,
	}

	rf, err := h.caseSvc.Filter(ctx, f)
	if err != nil {
		failCaseError(c, err, ErrCodeListFailed)
		return
	}

	// ETag pre-check (best effort).
	if h.caseStats != nil {
		if count, maxTS, err := h.caseStats(ctx, rf); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"cases:%s:%d:%d:%d:%d"`, filterHash(rf), page, pageSize, count, ts)
			if notModified(c, etag) {
				return
			}
		}
	}

	items, total, err := h.caseSvc.ListPage(ctx, f, page, pageSize)
	if err != nil {
		failCaseError(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListCasesResponse{Cases: items, Pagination: newPagination(page, pageSize, total)})
}

// GetCase godoc
// @ID          getCase
// @Summary     Get a case
// @Description Returns one case. Citizens can only see their own cases.
// @Tags        Cases
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Case ID"
//
// @Success     200  {object} domain.Case
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id} [get]
func (h *Handlers) GetCase(c *gin.Context) {
	cs, err := h.caseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failCaseError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, cs)
}

// UpdateCaseStatus godoc
// @ID          updateCaseStatus
// @Summary     Change a case's status
// @Description Sets the status to new, in-progress or resolved. Restricted to advocates,
// @Description law firms, NGOs and admins. When strict transitions are enabled, status
// @Description may only move forward.
// @Tags        Cases
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID    header  string  false "User ID (demo header)"  example(user123)
// @Param       X-User-Role  header  string  true  "Caller role"            Enums(advocate, law-firm, ngo, admin)
// @Param       id           path    string  true  "Case ID"
// @Param       body         body    handlers.UpdateCaseStatusRequest  true  "New status"
//
// @Success     200  {object} domain.Case
// @Failure     400  {object} handlers.ErrorResponse "Invalid status"
// @Failure     403  {object} handlers.ErrorResponse "Role may not change status"
// @Failure     404  {object} handlers.ErrorResponse "Case not found"
// @Failure     409  {object} handlers.ErrorResponse "Transition not allowed or concurrent change"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cases/{id}/status [patch]
func (h *Handlers) UpdateCaseStatus(c *gin.Context) {
	var req UpdateCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}

	cs, err := h.caseSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		failCaseError(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, cs)
}

// failCaseError maps case service errors to responses; anything unknown is a
// 500 with fallbackCode.
func failCaseError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrCaseNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.MsgCaseNotFound)
	case errors.Is(err, services.ErrInvalidCase):
		fail(c, http.StatusBadRequest, ErrCodeInvalidCase, err.Error())
	case errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, "status must be one of new, in-progress, resolved")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrTransitionNotAllowed):
		fail(c, http.StatusConflict, ErrCodeTransition, err.Error())
	case errors.Is(err, services.ErrStatusConflict), errors.Is(err, services.ErrKeyInUse):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("case operation failed")
		fail(c, http.StatusInternalServerError, fallbackCode, "internal server error")
	}
}

// filterHash keeps ETags short and free of user identifiers.
func filterHash(f repo.CaseFilter) string {
	sum := sha1.Sum([]byte(f.RequesterID + "\x00" + string(f.Category) + "\x00" + string(f.Status)))
	return hex.EncodeToString(sum[:6])
}

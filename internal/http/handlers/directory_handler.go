// Directory HTTP handlers.
//
// The four provider registries share one pair of routes keyed by the
// collection name:
//   - POST /directory/{type}   (register)
//   - GET  /directory/{type}   (list, paginated, optional city filter, ETag support)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/legal-aid-backend/internal/services"
)

// Directory collection names as they appear in the URL.
const (
	DirectoryAdvocates  = "advocates"
	DirectoryLawFirms   = "law-firms"
	DirectoryNGOs       = "ngos"
	DirectoryVolunteers = "volunteers"
)

// ListDirectoryResponse wraps a page of directory entries.
type ListDirectoryResponse struct {
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// directoryEndpoint erases the entry type so one handler serves every
// collection.
type directoryEndpoint interface {
	register(c *gin.Context)
	list(c *gin.Context, city string, page, pageSize int)
}

type typedDirectory[T any] struct {
	svc Directory[T]
}

func directoryOf[T any](svc Directory[T]) directoryEndpoint {
	return typedDirectory[T]{svc: svc}
}

func (d typedDirectory[T]) register(c *gin.Context) {
	var e T
	if err := c.ShouldBindJSON(&e); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	saved, err := d.svc.Register(c.Request.Context(), &e)
	switch {
	case err == nil:
		ok(c, http.StatusCreated, saved)
	case errors.Is(err, services.ErrInvalidEntry):
		fail(c, http.StatusBadRequest, ErrCodeInvalidEntry, err.Error())
	case errors.Is(err, services.ErrDuplicateEntry):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not register entry")
	}
}

func (d typedDirectory[T]) list(c *gin.Context, city string, page, pageSize int) {
	items, total, err := d.svc.ListPage(c.Request.Context(), city, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list entries")
		return
	}
	ok(c, http.StatusOK, ListDirectoryResponse{Items: items, Pagination: newPagination(page, pageSize, total)})
}

func (h *Handlers) directory(c *gin.Context) (directoryEndpoint, bool) {
	d, found := h.directories[c.Param("type")]
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown directory; use advocates, law-firms, ngos or volunteers")
	}
	return d, found
}

// RegisterDirectoryEntry godoc
// @ID          registerDirectoryEntry
// @Summary     Register an advocate, law firm, NGO or volunteer
// @Description Adds an entry to the named directory. Name and a unique email are required;
// @Description advocates also need a bar council enrolment number.
// @Tags        Directory
// @Accept      json
// @Produce     json
//
// @Param       type  path  string  true  "Directory"  Enums(advocates, law-firms, ngos, volunteers)
// @Param       body  body  object  true  "Entry (see domain.Advocate, domain.LawFirm, domain.NGO, domain.Volunteer)"
//
// @Success     201  {object}  object
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid entry"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown directory"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /directory/{type} [post]
func (h *Handlers) RegisterDirectoryEntry(c *gin.Context) {
	if d, found := h.directory(c); found {
		d.register(c)
	}
}

// ListDirectory godoc
// @ID          listDirectory
// @Summary     List a directory (paginated)
// @Description Returns entries newest first, optionally filtered by city.
// @Tags        Directory
// @Produce     json
//
// @Param       type       path   string  true   "Directory"  Enums(advocates, law-firms, ngos, volunteers)
// @Param       city       query  string  false  "City filter (case-insensitive)"
// @Param       page       query  int     false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object}  handlers.ListDirectoryResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown directory"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /directory/{type} [get]
func (h *Handlers) ListDirectory(c *gin.Context) {
	d, found := h.directory(c)
	if !found {
		return
	}
	name := c.Param("type")
	city := strings.TrimSpace(c.Query("city"))
	page, pageSize := clampPagination(c)

	if h.dirStats != nil {
		if count, maxTS, err := h.dirStats(c.Request.Context(), name, city); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"%s:%s:%d:%d:%d:%d"`, name, strings.ToLower(city), page, pageSize, count, ts)
			if notModified(c, etag) {
				return
			}
		}
	}
	d.list(c, city, page, pageSize)
}

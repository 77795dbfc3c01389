// Dashboard and document template HTTP handlers.
//
//   - GET /dashboards/{kind}   (advocate, ngo, law-firm, volunteer)
//   - GET /templates           (catalog, optional category filter)
//   - GET /templates/{id}      (one template with rendered HTML)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/legal-aid-backend/internal/doctemplates"
	"github.com/tbourn/legal-aid-backend/internal/domain"
	"github.com/tbourn/legal-aid-backend/internal/http/middleware"
	"github.com/tbourn/legal-aid-backend/internal/services"
)

// ListTemplatesResponse wraps the template catalog.
type ListTemplatesResponse struct {
	Templates []doctemplates.Summary `json:"templates"`
}

// GetDashboard godoc
// @ID          getDashboard
// @Summary     Get a role dashboard
// @Description Case counts by status and category plus recent cases, shaped for the given
// @Description role. Results may be served from cache for a short TTL. Citizens are refused.
// @Tags        Dashboards
// @Produce     json
//
// @Param       kind  path  string  true  "Dashboard kind"  Enums(advocate, ngo, law-firm, volunteer)
//
// @Success     200  {object}  object  "One of domain.AdvocateDashboard, domain.NGODashboard, domain.LawFirmDashboard, domain.VolunteerDashboard"
// @Failure     403  {object}  handlers.ErrorResponse  "Role may not view dashboards"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown dashboard"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /dashboards/{kind} [get]
func (h *Handlers) GetDashboard(c *gin.Context) {
	d, err := h.dashSvc.Get(c.Request.Context(), domain.DashboardKind(c.Param("kind")))
	switch {
	case err == nil:
		ok(c, http.StatusOK, d)
	case errors.Is(err, services.ErrUnknownDashboard):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown dashboard; use advocate, ngo, law-firm or volunteer")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "dashboards are available to advocates, law firms, NGOs, volunteers and admins")
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("dashboard failed")
		fail(c, http.StatusInternalServerError, ErrCodeDashboardFailed, "could not build dashboard")
	}
}

// ListTemplates godoc
// @ID          listTemplates
// @Summary     List document templates
// @Tags        Templates
// @Produce     json
//
// @Param       category  query  string  false  "Filter by category"
//
// @Success     200  {object}  handlers.ListTemplatesResponse
// @Router      /templates [get]
func (h *Handlers) ListTemplates(c *gin.Context) {
	ok(c, http.StatusOK, ListTemplatesResponse{Templates: h.templates.List(strings.TrimSpace(c.Query("category")))})
}

// GetTemplate godoc
// @ID          getTemplate
// @Summary     Get a document template
// @Description Returns the template's Markdown body and its HTML rendering.
// @Tags        Templates
// @Produce     json
//
// @Param       id  path  string  true  "Template ID"  example(rti-application)
//
// @Success     200  {object}  doctemplates.Template
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown template"
// @Router      /templates/{id} [get]
func (h *Handlers) GetTemplate(c *gin.Context) {
	t, err := h.templates.Get(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
		return
	}
	ok(c, http.StatusOK, t)
}

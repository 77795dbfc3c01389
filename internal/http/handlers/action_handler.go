// AI action HTTP handlers.
//
// Each drafting feature is one endpoint taking the raw form JSON and
// replying with a services.ActionResult. The result is returned with 200 OK
// whether it carries data or a user-facing error message; only a body that
// is not a JSON object is rejected with 400.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/legal-aid-backend/internal/schema"
	"github.com/tbourn/legal-aid-backend/internal/services"
)

// msgInvalidBody is returned when the body cannot be read as a JSON object.
const msgInvalidBody = "Invalid request. Please check the form and try again."

// ActionResponse documents the action envelope: exactly one of Data or Error.
type ActionResponse struct {
	Data  map[string]any `json:"data,omitempty"`
	Error string         `json:"error,omitempty" example:"Please enter a query of at least 10 characters."`
}

// LegalAdvice godoc
// @ID          legalAdvice
// @Summary     Get legal advice
// @Description Generates plain-language advice citing Indian statutes for a query of at
// @Description least 10 characters. The reply language follows Accept-Language (en, hi, mr).
// @Tags        Actions
// @Accept      json
// @Produce     json
//
// @Param       Accept-Language  header  string  false "Preferred reply language"  example(hi-IN)
// @Param       body             body    object  true  "{\"query\": \"...\"}"
//
// @Success     200  {object}  handlers.ActionResponse
// @Failure     400  {object}  handlers.ActionResponse  "Body is not a JSON object"
// @Failure     429  {object}  handlers.ErrorResponse   "Rate limited"
// @Router      /actions/legal-advice [post]
func (h *Handlers) LegalAdvice(c *gin.Context) { h.runAction(c, schema.LegalAdvice) }

// EBrief godoc
// @ID          eBrief
// @Summary     Generate an eBrief for a case
// @Description Loads the case by caseId and generates a structured brief: summary, legal
// @Description issues, applicable laws and suggested next steps.
// @Tags        Actions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    object  true  "{\"caseId\": \"...\"}"
//
// @Success     200  {object}  handlers.ActionResponse
// @Failure     400  {object}  handlers.ActionResponse  "Body is not a JSON object"
// @Failure     429  {object}  handlers.ErrorResponse   "Rate limited"
// @Router      /actions/ebrief [post]
func (h *Handlers) EBrief(c *gin.Context) { h.runAction(c, schema.EBrief) }

// BreachAdvice godoc
// @ID          breachAdvice
// @Summary     Advise on a data breach
// @Description Lists the legal duties a breach triggers under the DPDP Act 2023 and IT Act
// @Description 2000, with a notification draft, mitigation checklist and evidence guidance.
// @Tags        Actions
// @Accept      json
// @Produce     json
//
// @Param       body  body  object  true  "{\"incidentDescription\": \"...\", \"isBusiness\": true, \"isPersonalDataInvolved\": true, \"dataTypes\": \"...\"}"
//
// @Success     200  {object}  handlers.ActionResponse
// @Failure     400  {object}  handlers.ActionResponse  "Body is not a JSON object"
// @Failure     429  {object}  handlers.ErrorResponse   "Rate limited"
// @Router      /actions/breach-advice [post]
func (h *Handlers) BreachAdvice(c *gin.Context) { h.runAction(c, schema.BreachAdvice) }

// FIRDraft godoc
// @ID          firDraft
// @Summary     Draft a First Information Report
// @Description Drafts an FIR from the complainant and incident details, citing the
// @Description applicable sections.
// @Tags        Actions
// @Accept      json
// @Produce     json
//
// @Param       body  body  object  true  "Complainant and incident fields"
//
// @Success     200  {object}  handlers.ActionResponse
// @Failure     400  {object}  handlers.ActionResponse  "Body is not a JSON object"
// @Failure     429  {object}  handlers.ErrorResponse   "Rate limited"
// @Router      /actions/fir-draft [post]
func (h *Handlers) FIRDraft(c *gin.Context) { h.runAction(c, schema.FIRDraft) }

func (h *Handlers) runAction(c *gin.Context, templateID string) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil || raw == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, services.ActionResult{Error: msgInvalidBody})
		return
	}
	ok(c, http.StatusOK, h.drafting.Run(c.Request.Context(), templateID, raw))
}

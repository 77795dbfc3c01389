package schema

import "fmt"

// Template identifiers.
const (
	LegalAdvice  = "legal-advice"
	EBrief       = "ebrief"
	BreachAdvice = "breach-advice"
	FIRDraft     = "fir-draft"
)

// Minimum free-text lengths shared by the action pre-checks and the schemas.
const (
	MinQueryLen           = 10
	MinIncidentDescLength = 20
)

// CrimeTypes lists the accepted FIR crime categories.
var CrimeTypes = []string{"upi_fraud", "social_media_harassment", "online_shopping_fraud", "other"}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func strMin(desc string, n int) map[string]any {
	m := str(desc)
	m["minLength"] = n
	return m
}

func boolean(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func strList(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": desc,
		"items":       map[string]any{"type": "string"},
	}
}

func enum(desc string, vals []string) map[string]any {
	m := str(desc)
	list := make([]any, len(vals))
	for i, v := range vals {
		list[i] = v
	}
	m["enum"] = list
	return m
}

func object(props map[string]any, required ...string) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   req,
	}
}

// closed marks an object schema as rejecting undeclared properties and
// requiring every declared one.
func closed(props map[string]any) map[string]any {
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	o := object(props, names...)
	o["additionalProperties"] = false
	return o
}

func definitions() []struct {
	id, desc      string
	input, output map[string]any
} {
	return []struct {
		id, desc      string
		input, output map[string]any
	}{
		{
			id:   LegalAdvice,
			desc: "General legal information for a citizen's question under Indian law",
			input: object(map[string]any{
				"query": strMin("The citizen's legal question", MinQueryLen),
			}, "query"),
			output: closed(map[string]any{
				"advice": str("Plain-language guidance citing the relevant Indian statutes"),
			}),
		},
		{
			id:   EBrief,
			desc: "Structured case brief prepared from a submitted case",
			input: object(map[string]any{
				"caseId":       str("Identifier of the stored case"),
				"caseCategory": str("Category of the case"),
				"description":  str("Citizen's description of the matter"),
				"fullName":     str("Name of the citizen"),
			}, "caseId", "caseCategory", "description", "fullName"),
			output: closed(map[string]any{
				"summary":            str("Neutral summary of the facts"),
				"legalIssues":        strList("Legal questions raised by the facts"),
				"applicableLaws":     str("Statutes and sections that apply"),
				"suggestedNextSteps": str("Practical next steps for the citizen"),
			}),
		},
		{
			id:   BreachAdvice,
			desc: "Response plan for a personal data breach under the DPDP Act 2023 and IT Act 2000",
			input: object(map[string]any{
				"incidentDescription":    strMin("What happened", MinIncidentDescLength),
				"isBusiness":             boolean("Whether the reporter is a business (data fiduciary)"),
				"isPersonalDataInvolved": boolean("Whether personal data was affected"),
				"dataTypes":              str("Kinds of data affected"),
			}, "incidentDescription", "isBusiness", "isPersonalDataInvolved", "dataTypes"),
			output: closed(map[string]any{
				"legalDuties":          str("Statutory obligations triggered by the breach"),
				"notificationDraft":    str("Draft notice to the Data Protection Board and/or CERT-In"),
				"mitigationChecklist":  strList("Immediate containment and mitigation steps"),
				"evidencePreservation": str("How to preserve logs and evidence"),
			}),
		},
		{
			id:   FIRDraft,
			desc: "First Information Report draft for a cyber crime complaint",
			input: object(map[string]any{
				"complainantName":     str("Full name of the complainant"),
				"complainantAddress":  str("Postal address of the complainant"),
				"complainantContact":  str("Phone or email of the complainant"),
				"crimeType":           enum("Type of cyber crime", CrimeTypes),
				"incidentDate":        str("Date of the incident"),
				"accusedDetails":      str("What is known about the accused"),
				"incidentDescription": strMin("Narrative of the incident", MinIncidentDescLength),
				"financialLoss":       str("Amount lost, if any"),
				"transactionDetails":  str("UPI / bank transaction references, if any"),
				"evidenceDetails":     str("Screenshots, messages and other evidence"),
			}, "complainantName", "complainantAddress", "complainantContact", "crimeType",
				"incidentDate", "accusedDetails", "incidentDescription", "evidenceDetails"),
			output: closed(map[string]any{
				"firDraft": str("Complete FIR text addressed to the Station House Officer"),
			}),
		},
	}
}

// Registry holds the compiled contracts keyed by template id.
type Registry struct {
	byID map[string]*Contract
	ids  []string
}

// NewRegistry compiles every built-in contract.
func NewRegistry() (*Registry, error) {
	r := &Registry{byID: map[string]*Contract{}}
	for _, d := range definitions() {
		c, err := newContract(d.id, d.desc, d.input, d.output)
		if err != nil {
			return nil, err
		}
		r.byID[d.id] = c
		r.ids = append(r.ids, d.id)
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on a malformed built-in schema.
func MustRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the contract for id.
func (r *Registry) Get(id string) (*Contract, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("schema: unknown template %q", id)
	}
	return c, nil
}

// IDs returns the registered template ids in declaration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.ids...)
}

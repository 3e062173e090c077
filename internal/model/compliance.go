package model

// ComplianceRuleResult is one comparison between a measured value and its
// governing standard.
type ComplianceRuleResult struct {
	Rule       string   `json:"rule"`
	Required   string   `json:"required"`
	Actual     string   `json:"actual"`
	Pass       bool     `json:"pass"`
	Difference *float64 `json:"difference,omitempty"`
}

// ComplianceReport is the evaluator output.
type ComplianceReport struct {
	Compliant   bool                   `json:"compliant"`
	Results     []ComplianceRuleResult `json:"results"`
	Summary     string                 `json:"summary"`
	NextSteps   []string               `json:"next_steps"`
	FormsNeeded []string               `json:"forms_needed"`
}

// Failures returns the failing results in evaluation order.
func (r ComplianceReport) Failures() []ComplianceRuleResult {
	var out []ComplianceRuleResult
	for _, res := range r.Results {
		if !res.Pass {
			out = append(out, res)
		}
	}
	return out
}

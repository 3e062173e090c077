// Package compliance checks measured project dimensions against a zone's
// development standards.
package compliance

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"zonecheck/internal/model"
)

// Rule names, in evaluation order.
const (
	RuleFrontSetback     = "Front Setback"
	RuleRearSetback      = "Rear Setback"
	RuleLeftSideSetback  = "Left Side Setback"
	RuleRightSideSetback = "Right Side Setback"
	RuleBuildingHeight   = "Building Height"
	RuleLotCoverage      = "Lot Coverage"
)

// Forms and fixed next steps.
const (
	FormVariance                     = "Variance Application"
	FormBuildingPermit               = "Building Permit Application"
	FormStructuralPlans              = "Structural Plans Required"
	FormCertificateOfAppropriateness = "Certificate of Appropriateness Application"

	StepVariance          = "Or apply for a variance (approval not guaranteed)"
	StepReduceLotCoverage = "Reduce project footprint or apply for variance"

	SummaryInsufficientData = "Could not perform compliance check - insufficient data extracted."
)

// DeckStructuralThresholdFt is the deck height above which structural plans
// are required.
const DeckStructuralThresholdFt = 30.0

// Evaluate checks measurements against standards with no overlay or project
// context.
func Evaluate(standards model.DevelopmentStandards, m model.MeasurementSet) model.ComplianceReport {
	return EvaluateProject(standards, m, nil, model.ProjectNone)
}

// EvaluateProject checks measurements against standards and adds the forms
// and notes that depend on overlays and the declared project type.
//
// A rule runs only when both its measurement and its standard are present.
// Zero evaluated rules is never compliant.
func EvaluateProject(standards model.DevelopmentStandards, m model.MeasurementSet, overlays model.OverlaySet, projectType model.ProjectType) model.ComplianceReport {
	results := make([]model.ComplianceRuleResult, 0, 6)

	if r, ok := minRule(RuleFrontSetback, m.FrontSetbackFt, standards.Setbacks.FrontFt); ok {
		results = append(results, r)
	}
	if r, ok := minRule(RuleRearSetback, m.RearSetbackFt, standards.Setbacks.RearFt); ok {
		results = append(results, r)
	}
	if r, ok := minRule(RuleLeftSideSetback, m.LeftSideSetbackFt, standards.Setbacks.SideFt); ok {
		results = append(results, r)
	}
	if r, ok := minRule(RuleRightSideSetback, m.RightSideSetbackFt, standards.Setbacks.SideFt); ok {
		results = append(results, r)
	}
	if r, ok := heightRule(m.BuildingHeightFt, standards.MaxHeightFt); ok {
		results = append(results, r)
	}
	if r, ok := coverageRule(m, standards.MaxLotCoverage); ok {
		results = append(results, r)
	}

	report := model.ComplianceReport{
		Results:     results,
		NextSteps:   []string{},
		FormsNeeded: []string{},
	}

	failures := report.Failures()
	report.Compliant = len(results) > 0 && len(failures) == 0

	switch {
	case len(results) == 0:
		report.Summary = SummaryInsufficientData
	case report.Compliant:
		report.Summary = fmt.Sprintf("COMPLIANT - All %d checked requirements pass.", len(results))
	default:
		plural := ""
		if len(failures) > 1 {
			plural = "s"
		}
		report.Summary = fmt.Sprintf("NOT COMPLIANT - %d issue%s found.", len(failures), plural)
	}

	if len(failures) > 0 {
		for _, f := range failures {
			if step, ok := remediation(f); ok {
				report.NextSteps = append(report.NextSteps, step)
			}
		}
		report.NextSteps = append(report.NextSteps, StepVariance)
		report.FormsNeeded = append(report.FormsNeeded, FormVariance)
	}

	if projectType != model.ProjectNone {
		report.FormsNeeded = append(report.FormsNeeded, FormBuildingPermit)
		if projectType == model.ProjectDeck && m.BuildingHeightFt != nil && *m.BuildingHeightFt > DeckStructuralThresholdFt {
			report.FormsNeeded = append(report.FormsNeeded, FormStructuralPlans)
		}
	}

	if name, ok := overlays.Historic(); ok {
		note := "Note: Property is in " + name + " Historic District"
		report.NextSteps = append([]string{note}, report.NextSteps...)
		report.FormsNeeded = append(report.FormsNeeded, FormCertificateOfAppropriateness)
	}

	return report
}

// finite reports whether every value is present and a real number. Rules
// with NaN or infinite inputs are skipped like missing ones.
func finite(vs ...*float64) bool {
	for _, v := range vs {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return false
		}
	}
	return true
}

// minRule checks a setback: pass when actual >= required.
func minRule(rule string, actual, required *float64) (model.ComplianceRuleResult, bool) {
	if !finite(actual, required) {
		return model.ComplianceRuleResult{}, false
	}
	diff := *actual - *required
	return model.ComplianceRuleResult{
		Rule:       rule,
		Required:   formatNumber(*required) + " ft min",
		Actual:     formatNumber(*actual) + " ft",
		Pass:       *actual >= *required,
		Difference: &diff,
	}, true
}

// heightRule passes when actual <= required; the difference is
// required - actual so headroom is positive.
func heightRule(actual, required *float64) (model.ComplianceRuleResult, bool) {
	if !finite(actual, required) {
		return model.ComplianceRuleResult{}, false
	}
	diff := *required - *actual
	return model.ComplianceRuleResult{
		Rule:       RuleBuildingHeight,
		Required:   formatNumber(*required) + " ft max",
		Actual:     formatNumber(*actual) + " ft",
		Pass:       *actual <= *required,
		Difference: &diff,
	}, true
}

// coverageRule needs lot area, project footprint and the standard. A missing
// existing footprint counts as zero. Non-positive or non-finite inputs skip
// the rule.
func coverageRule(m model.MeasurementSet, maxCoverage *float64) (model.ComplianceRuleResult, bool) {
	if !finite(maxCoverage, m.LotAreaSqft, m.ProjectFootprintSqft) {
		return model.ComplianceRuleResult{}, false
	}
	lot := *m.LotAreaSqft
	if lot <= 0 {
		return model.ComplianceRuleResult{}, false
	}

	existing := 0.0
	if m.ExistingFootprintSqft != nil {
		if !finite(m.ExistingFootprintSqft) {
			return model.ComplianceRuleResult{}, false
		}
		existing = *m.ExistingFootprintSqft
	}
	coverage := (existing + *m.ProjectFootprintSqft) / lot
	diff := *maxCoverage - coverage

	return model.ComplianceRuleResult{
		Rule:       RuleLotCoverage,
		Required:   strconv.FormatFloat(*maxCoverage*100, 'f', 0, 64) + "% max",
		Actual:     strconv.FormatFloat(coverage*100, 'f', 1, 64) + "%",
		Pass:       coverage <= *maxCoverage,
		Difference: &diff,
	}, true
}

func remediation(f model.ComplianceRuleResult) (string, bool) {
	switch {
	case f.Rule == RuleLotCoverage:
		return StepReduceLotCoverage, true
	case f.Difference == nil || *f.Difference == 0:
		return "", false
	case f.Rule == RuleBuildingHeight:
		return fmt.Sprintf("Reduce height by %.1f ft", math.Abs(*f.Difference)), true
	case strings.HasSuffix(f.Rule, " Setback"):
		side := strings.ToLower(strings.TrimSuffix(f.Rule, " Setback"))
		return fmt.Sprintf("Move %s of project %.1f ft to meet requirement", side, math.Abs(*f.Difference)), true
	default:
		return "", false
	}
}

// formatNumber prints the shortest decimal that round-trips, so 20 is "20"
// and 15.5 is "15.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

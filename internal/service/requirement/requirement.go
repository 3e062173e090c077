// Package requirement derives the permits, reviews and conditions a project
// needs from its zone, overlays and declared project type.
//
// Derivation is an ordered list of contributors. Each one sees the input and
// the bundle built so far and returns only what it adds; nothing is ever
// removed or de-duplicated here.
package requirement

import (
	"strings"

	"zonecheck/internal/model"
)

// Timelines emitted by the built-in contributors.
const (
	DefaultTimeline  = "2-4 weeks for permit approval"
	HistoricTimeline = "6-10 weeks (includes HCB meeting schedule)"
	HillsideTimeline = "4-6 weeks"

	// shortTimelineMarker identifies a timeline the hillside rule may widen.
	shortTimelineMarker = "2-4"
)

// Input is what every contributor sees.
type Input struct {
	ZoneCode    string
	Overlays    model.OverlaySet
	ProjectType model.ProjectType
}

// Contributor returns the requirements it adds given the bundle so far.
type Contributor func(in Input, current model.RequirementBundle) model.RequirementBundle

// Named pairs a contributor with a label for logs and tests.
type Named struct {
	Name  string
	Apply Contributor
}

// DefaultContributors is the built-in derivation order: project type first,
// then historic, hillside, urban design and landslide.
func DefaultContributors() []Named {
	return []Named{
		{Name: "project_type", Apply: ProjectTypeContributor},
		{Name: "historic", Apply: HistoricContributor},
		{Name: "hillside", Apply: HillsideContributor},
		{Name: "urban_design", Apply: UrbanDesignContributor},
		{Name: "landslide", Apply: LandslideContributor},
	}
}

// Deriver runs contributors in order.
type Deriver struct {
	contributors []Named
}

// NewDeriver returns a deriver over the given contributors, or the defaults
// when none are given.
func NewDeriver(contributors ...Named) *Deriver {
	if len(contributors) == 0 {
		contributors = DefaultContributors()
	}
	return &Deriver{contributors: contributors}
}

// Derive builds the bundle.
func (d *Deriver) Derive(zoneCode string, overlays model.OverlaySet, projectType model.ProjectType) model.RequirementBundle {
	in := Input{ZoneCode: zoneCode, Overlays: overlays, ProjectType: projectType}
	bundle := model.RequirementBundle{
		Permits:           []string{},
		Reviews:           []string{},
		SpecialConditions: []string{},
		Timeline:          DefaultTimeline,
	}
	for _, c := range d.contributors {
		bundle.Merge(c.Apply(in, bundle))
	}
	return bundle
}

var defaultDeriver = NewDeriver()

// DeriveRequirements runs the default contributors.
func DeriveRequirements(zoneCode string, overlays model.OverlaySet, projectType model.ProjectType) model.RequirementBundle {
	return defaultDeriver.Derive(zoneCode, overlays, projectType)
}

type projectBase struct {
	permits  []string
	reviews  []string
	special  []string
	timeline string
}

var projectBases = map[model.ProjectType]projectBase{
	model.ProjectNewConstruction: {
		permits:  []string{"Building Permit", "Zoning Certificate", "Electrical Permit", "Plumbing Permit", "Mechanical Permit"},
		reviews:  []string{"Plan Review"},
		timeline: "4-8 weeks for plan review and permit approval",
	},
	model.ProjectAddition: {
		permits:  []string{"Building Permit", "Zoning Certificate"},
		reviews:  []string{"Plan Review"},
		timeline: "3-6 weeks",
	},
	model.ProjectRenovation: {
		permits:  []string{"Building Permit"},
		timeline: "2-4 weeks",
	},
	model.ProjectTenantImprovement: {
		permits:  []string{"Building Permit", "Zoning Certificate"},
		timeline: "2-4 weeks",
	},
	model.ProjectDemolition: {
		permits:  []string{"Demolition Permit"},
		special:  []string{"Asbestos survey required before demolition", "Utility disconnection proof required"},
		timeline: "2-3 weeks",
	},
}

// GenericPermit is the single permit line for an unset or unrecognised
// project type.
const GenericPermit = "Building Permit (scope-dependent)"

// ProjectTypeContributor seeds the bundle from the declared project type.
func ProjectTypeContributor(in Input, _ model.RequirementBundle) model.RequirementBundle {
	base, ok := projectBases[in.ProjectType]
	if !ok {
		return model.RequirementBundle{Permits: []string{GenericPermit}}
	}
	return model.RequirementBundle{
		Permits:           append([]string(nil), base.permits...),
		Reviews:           append([]string(nil), base.reviews...),
		SpecialConditions: append([]string(nil), base.special...),
		Timeline:          base.timeline,
	}
}

// HistoricContributor adds the historic board review and always moves the
// timeline to the historic one.
func HistoricContributor(in Input, _ model.RequirementBundle) model.RequirementBundle {
	name, ok := in.Overlays.Historic()
	if !ok {
		return model.RequirementBundle{}
	}
	return model.RequirementBundle{
		Permits: []string{"Certificate of Appropriateness"},
		Reviews: []string{"Historic Conservation Board Review"},
		SpecialConditions: []string{
			"Property is in " + name + " Historic District",
			"Exterior changes must follow Secretary of Interior Standards",
			"Window and door replacements require approval",
		},
		Timeline: HistoricTimeline,
	}
}

// HillsideContributor adds hillside review and grading. The timeline is
// widened only while it is still a short one.
func HillsideContributor(in Input, current model.RequirementBundle) model.RequirementBundle {
	if !in.Overlays.Hillside() {
		return model.RequirementBundle{}
	}
	out := model.RequirementBundle{
		Permits:           []string{"Grading Permit"},
		Reviews:           []string{"Hillside Development Review"},
		SpecialConditions: []string{"Geotechnical report may be required", "Tree preservation plan required"},
	}
	if strings.Contains(current.Timeline, shortTimelineMarker) {
		out.Timeline = HillsideTimeline
	}
	return out
}

// UrbanDesignContributor adds the design review board.
func UrbanDesignContributor(in Input, _ model.RequirementBundle) model.RequirementBundle {
	name, ok := in.Overlays.UrbanDesign()
	if !ok {
		return model.RequirementBundle{}
	}
	return model.RequirementBundle{
		Reviews: []string{"Urban Design Review Board"},
		SpecialConditions: []string{
			"Property is in " + name + " Urban Design District",
			"Exterior design must be approved",
		},
	}
}

// LandslideContributor makes geotechnical review mandatory for High risk and
// adds an advisory note for Moderate. Low and unrecognised tiers add nothing.
func LandslideContributor(in Input, _ model.RequirementBundle) model.RequirementBundle {
	switch in.Overlays.Landslide() {
	case model.LandslideHigh:
		return model.RequirementBundle{
			Reviews: []string{"Geotechnical Review"},
			SpecialConditions: []string{
				"HIGH LANDSLIDE RISK - Geotechnical assessment required",
				"Engineering review for foundation required",
			},
		}
	case model.LandslideModerate:
		return model.RequirementBundle{
			SpecialConditions: []string{"Moderate landslide risk - Geotechnical assessment recommended"},
		}
	default:
		return model.RequirementBundle{}
	}
}

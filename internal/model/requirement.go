package model

// RequirementBundle accumulates what a project needs before it can proceed.
// Lists keep insertion order and may contain repeats.
type RequirementBundle struct {
	Permits           []string `json:"permits"`
	Reviews           []string `json:"reviews"`
	SpecialConditions []string `json:"special_conditions"`
	Timeline          string   `json:"timeline"`
}

// Merge appends every entry of other. A non-empty other.Timeline replaces the
// current one; contributors decide whether to emit one at all.
func (b *RequirementBundle) Merge(other RequirementBundle) {
	b.Permits = append(b.Permits, other.Permits...)
	b.Reviews = append(b.Reviews, other.Reviews...)
	b.SpecialConditions = append(b.SpecialConditions, other.SpecialConditions...)
	if other.Timeline != "" {
		b.Timeline = other.Timeline
	}
}

// Dedup returns a copy with repeated entries removed, keeping the first
// occurrence of each.
func (b RequirementBundle) Dedup() RequirementBundle {
	return RequirementBundle{
		Permits:           dedupStrings(b.Permits),
		Reviews:           dedupStrings(b.Reviews),
		SpecialConditions: dedupStrings(b.SpecialConditions),
		Timeline:          b.Timeline,
	}
}

func dedupStrings(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

package demographics

import (
	"slices"
	"sort"

	"github.com/joseph-ayodele/receipts-insights/constants"
)

// SortAgeGroups returns groups in canonical age order. Groups outside the
// canonical list follow, sorted lexicographically.
func SortAgeGroups(groups []string) []string {
	out := slices.Clone(groups)
	rank := func(g string) int {
		if i := slices.Index(constants.AgeGroupOrder, g); i >= 0 {
			return i
		}
		return len(constants.AgeGroupOrder)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

// SortGroups orders the groups of a dimension for display.
func SortGroups(dimension string, groups []string) []string {
	if dimension == constants.DimensionAgeGroup {
		return SortAgeGroups(groups)
	}
	out := slices.Clone(groups)
	sort.Strings(out)
	return out
}

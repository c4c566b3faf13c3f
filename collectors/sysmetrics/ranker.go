package sysmetrics

import "sort"

// RankProcesses returns the limit processes with the highest cumulative CPU
// usage, highest first. Processes with equal usage keep their enumeration
// order. A non-positive limit yields an empty result. all is not modified.
func RankProcesses(all []RawProcess, limit int) []RawProcess {
	if limit <= 0 || len(all) == 0 {
		return []RawProcess{}
	}

	ranked := make([]RawProcess, len(all))
	copy(ranked, all)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CPUPercent > ranked[j].CPUPercent
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

package shorts

import "sort"

// SelectOptions bounds the search for SelectTop.
type SelectOptions struct {
	MaxSegments int
	MinDuration float64
	MaxDuration float64
	MinGap      float64
}

// SelectTop picks at most MaxSegments non-overlapping candidates (separated
// by at least MinGap) whose duration falls within [MinDuration,
// MaxDuration], maximizing total score. It solves weighted interval
// scheduling with a cardinality constraint via DP, in O(n·k_max).
func SelectTop(candidates []SegmentCandidate, opts SelectOptions) []SegmentCandidate {
	filtered := make([]SegmentCandidate, 0, len(candidates))
	for _, c := range candidates {
		d := c.Duration()
		if c.Start < c.End && d >= opts.MinDuration && d <= opts.MaxDuration {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 || opts.MaxSegments <= 0 {
		return nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].End < filtered[j].End
	})

	n := len(filtered)
	kMax := opts.MaxSegments
	if kMax > n {
		kMax = n
	}

	// 1-indexed: intervals[0] is a sentinel with End = -infinity so that
	// p(i) == 0 means "no valid predecessor".
	ends := make([]float64, n+1)
	starts := make([]float64, n+1)
	ends[0] = negInf
	for i, c := range filtered {
		ends[i+1] = c.End
		starts[i+1] = c.Start
	}

	// p[i] = largest j < i with ends[j] <= starts[i] - MinGap.
	p := make([]int, n+1)
	for i := 1; i <= n; i++ {
		target := starts[i] - opts.MinGap
		lo, hi := 0, i-1
		best := 0
		for lo <= hi {
			mid := (lo + hi) / 2
			if ends[mid] <= target {
				best = mid
				lo = mid + 1
			} else {
				hi = mid - 1
			}
		}
		p[i] = best
	}

	dp := make([][]float64, n+1)
	for i := range dp {
		dp[i] = make([]float64, kMax+1)
	}
	for i := 1; i <= n; i++ {
		score := filtered[i-1].Score
		for k := 1; k <= kMax; k++ {
			without := dp[i-1][k]
			with := score + dp[p[i]][k-1]
			if with > without {
				dp[i][k] = with
			} else {
				dp[i][k] = without
			}
		}
	}

	var selected []SegmentCandidate
	i, k := n, kMax
	for i > 0 && k > 0 {
		if dp[i][k] == dp[i-1][k] {
			i--
			continue
		}
		selected = append(selected, filtered[i-1])
		i = p[i]
		k--
	}

	sort.SliceStable(selected, func(a, b int) bool {
		return selected[a].Start < selected[b].Start
	})
	return selected
}

const negInf = -1e18

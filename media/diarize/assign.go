package diarize

import "github.com/livepeer/reframe-media/media/subtitles"

// AssignSpeakersToLines attaches a Speaker label to each subtitle line based
// on which diarization segment overlaps it the most. Ties (equal overlap)
// keep whichever segment was considered first, in segments' iteration
// order. Lines with zero overlap against every segment are left unlabeled.
func AssignSpeakersToLines(lines []subtitles.Line, segments []Segment) []subtitles.Line {
	if len(segments) == 0 {
		return lines
	}

	out := make([]subtitles.Line, len(lines))
	for i, l := range lines {
		best := ""
		bestOverlap := 0.0
		for _, seg := range segments {
			overlap := overlapSeconds(l.Start, l.End, seg.Start, seg.End)
			if overlap > bestOverlap {
				bestOverlap = overlap
				best = seg.Speaker
			}
		}
		out[i] = subtitles.Line{Start: l.Start, End: l.End, Words: l.Words, Speaker: best}
	}
	return out
}

func overlapSeconds(aStart, aEnd, bStart, bEnd float64) float64 {
	lo := aStart
	if bStart > lo {
		lo = bStart
	}
	hi := aEnd
	if bEnd < hi {
		hi = bEnd
	}
	overlap := hi - lo
	if overlap < 0 {
		return 0
	}
	return overlap
}

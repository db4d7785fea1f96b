// Package timeline maps a drag gesture over a 24-hour axis onto a snapped
// [start, end) interval of minutes, and lays out overlapping blocks for
// rendering.
package timeline

import (
	"cmp"
	"slices"

	"github.com/sadopc/newlife/internal/timecalc"
)

const (
	// Snap is the grid every selection edge lands on.
	Snap = 15
	// DayMinutes is the length of the axis.
	DayMinutes = timecalc.DayMinutes
)

func floorSnap(m int) int {
	return clampMinute(m - m%Snap)
}

func ceilSnap(m int) int {
	if r := m % Snap; r != 0 {
		m += Snap - r
	}
	return clampMinute(m)
}

func clampMinute(m int) int {
	return min(max(m, 0), DayMinutes)
}

// Interval is a half-open range of minutes since midnight.
type Interval struct {
	Start int
	End   int
}

func (iv Interval) Len() int { return iv.End - iv.Start }

// Clock renders both edges as HH:MM; End may be "24:00".
func (iv Interval) Clock() (string, string) {
	return timecalc.FormatClock(iv.Start), timecalc.FormatClock(iv.End)
}

// Overlaps reports whether two half-open intervals share a minute.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

// FromClock parses a pair of HH:MM strings into an Interval.
func FromClock(start, end string) (Interval, error) {
	s, err := timecalc.ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := timecalc.ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: s, End: e}, nil
}

// Selection tracks one drag gesture. The zero value is idle.
type Selection struct {
	active bool
	anchor int
	end    int
}

func (s *Selection) Active() bool { return s.active }

// Press starts a selection at the snapped-down minute with a one-slot block.
func (s *Selection) Press(minute int) {
	start := min(floorSnap(minute), DayMinutes-Snap)
	s.active = true
	s.anchor = start
	s.end = start + Snap
}

// Move drags the free edge. Samples at or after the anchor round up so the
// block covers the sampled minute; samples before it round down.
func (s *Selection) Move(minute int) {
	if !s.active {
		return
	}
	if minute >= s.anchor {
		s.end = ceilSnap(minute)
	} else {
		s.end = floorSnap(minute)
	}
}

// Preview is the interval Release would return right now.
func (s *Selection) Preview() Interval {
	start, end := min(s.anchor, s.end), max(s.anchor, s.end)
	if end <= start {
		end = start + Snap
	}
	return Interval{Start: start, End: end}
}

// Release ends the gesture and returns the normalized interval. ok is false
// when no gesture was in progress.
func (s *Selection) Release() (iv Interval, ok bool) {
	if !s.active {
		return Interval{}, false
	}
	iv = s.Preview()
	*s = Selection{}
	return iv, true
}

// Cancel drops the gesture.
func (s *Selection) Cancel() { *s = Selection{} }

// Block is a positioned interval with its lane assignment.
type Block struct {
	ID       string
	Interval Interval
	Lane     int
	// Lanes is the number of lanes in the block's overlap cluster.
	Lanes int
}

// Entry is an interval to lay out, keyed by the caller's id.
type Entry struct {
	ID       string
	Interval Interval
}

// Layout assigns overlapping entries to side-by-side lanes. Entries are
// placed greedily by start time into the first free lane; every block of a
// cluster of transitively overlapping entries reports the cluster's lane
// count.
func Layout(entries []Entry) []Block {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		if c := cmp.Compare(a.Interval.Start, b.Interval.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.Interval.End, a.Interval.End)
	})

	blocks := make([]Block, 0, len(sorted))
	var (
		laneEnds     []int
		clusterStart int
		clusterEnd   = -1
	)
	closeCluster := func() {
		for i := clusterStart; i < len(blocks); i++ {
			blocks[i].Lanes = len(laneEnds)
		}
	}
	for _, e := range sorted {
		if e.Interval.Start >= clusterEnd {
			closeCluster()
			laneEnds = laneEnds[:0]
			clusterStart = len(blocks)
		}
		lane := slices.IndexFunc(laneEnds, func(end int) bool { return end <= e.Interval.Start })
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, e.Interval.End)
		} else {
			laneEnds[lane] = e.Interval.End
		}
		clusterEnd = max(clusterEnd, e.Interval.End)
		blocks = append(blocks, Block{ID: e.ID, Interval: e.Interval, Lane: lane})
	}
	closeCluster()
	return blocks
}

package aggregate

// Direction is the overall movement of a date series.
type Direction int

const (
	// Flat means fewer than two dates; no direction can be stated.
	Flat Direction = iota
	Increasing
	Decreasing
	Stable
)

func (d Direction) String() string {
	switch d {
	case Increasing:
		return "increasing"
	case Decreasing:
		return "decreasing"
	case Stable:
		return "stable"
	}
	return "flat"
}

// Trend compares the first and last points only: more than 10% up is
// Increasing, more than 10% down is Decreasing, anything else is Stable.
func Trend(points []DatePoint) Direction {
	if len(points) < 2 {
		return Flat
	}
	first := float64(points[0].Sum)
	last := float64(points[len(points)-1].Sum)
	switch {
	case last > first*1.1:
		return Increasing
	case last < first*0.9:
		return Decreasing
	}
	return Stable
}

// Peak returns the first point holding the maximum sum.
func Peak(points []DatePoint) (DatePoint, bool) {
	if len(points) == 0 {
		return DatePoint{}, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if p.Sum > best.Sum {
			best = p
		}
	}
	return best, true
}

// Trough returns the first point holding the minimum sum.
func Trough(points []DatePoint) (DatePoint, bool) {
	if len(points) == 0 {
		return DatePoint{}, false
	}
	low := points[0]
	for _, p := range points[1:] {
		if p.Sum < low.Sum {
			low = p
		}
	}
	return low, true
}

// Package status derives a quest's temporal state from its schedule and
// deadline timestamps. It has no store or bus dependencies.
package status

type Status int

const (
	Tba Status = iota
	Upcoming
	Ongoing
	Ended
)

func (s Status) String() string {
	switch s {
	case Upcoming:
		return "Upcoming"
	case Ongoing:
		return "Ongoing"
	case Ended:
		return "Ended"
	default:
		return "TBA"
	}
}

// Calculate returns the quest status for the given moment. All arguments are
// epoch seconds; a start or end of 0 means unset. The start boundary is
// inclusive, and a passed end wins over everything else.
func Calculate(now, start, end int64) Status {
	switch {
	case end > 0 && now > end:
		return Ended
	case start > 0 && now >= start:
		return Ongoing
	case start > 0:
		return Upcoming
	default:
		return Tba
	}
}

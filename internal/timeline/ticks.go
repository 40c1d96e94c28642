package timeline

import (
	"iter"
	"time"
)

// Tick is a reference line on the axis.
type Tick struct {
	Time     time.Time
	Position float64
	Label    string
	Minor    bool
}

// TickMarks yields one tick per calendar day of r. Fit mode has no ticks.
//
// Day mode labels every tick with its date and week mode with the day of
// month only. Month mode marks every day minor and unlabeled except the
// first of each month and each Monday.
func TickMarks(r Range, m ZoomMode) (iter.Seq[Tick], error) {
	s, err := ScaleFor(m)
	if err != nil {
		return nil, err
	}

	return func(yield func(Tick) bool) {
		if m == Fit {
			return
		}
		for day := range r.days() {
			tick := Tick{Time: day, Position: Position(day, r, s)}
			switch m {
			case Day:
				tick.Label = day.Format("Jan 2")
			case Week:
				tick.Label = day.Format("2")
			case Month:
				if day.Day() == 1 || day.Weekday() == time.Monday {
					tick.Label = day.Format("Jan 2")
				} else {
					tick.Minor = true
				}
			}
			if !yield(tick) {
				return
			}
		}
	}, nil
}

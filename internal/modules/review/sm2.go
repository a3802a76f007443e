package review

import "math"

const minEaseFactor = 1.3

// SM2State is the spaced-repetition scheduling state carried on a note.
type SM2State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
}

// NextState applies the SM-2 algorithm to a review with quality q (0-5).
// A failed recall (q < 3) resets the repetition streak and schedules a
// next-day review; the ease factor is penalized but never drops below 1.3.
func NextState(prev SM2State, q int) SM2State {
	next := prev

	if q < 3 {
		next.Repetitions = 0
		next.IntervalDays = 1
		next.EaseFactor = math.Max(minEaseFactor, prev.EaseFactor-0.2)
		return next
	}

	switch prev.Repetitions {
	case 0:
		next.IntervalDays = 1
	case 1:
		next.IntervalDays = 6
	default:
		next.IntervalDays = int(math.Round(float64(prev.IntervalDays) * prev.EaseFactor))
	}
	next.Repetitions = prev.Repetitions + 1

	ef := prev.EaseFactor + (0.1 - float64(5-q)*(0.08+float64(5-q)*0.02))
	next.EaseFactor = math.Max(minEaseFactor, ef)
	return next
}

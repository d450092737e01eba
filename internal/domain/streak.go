package domain

import "time"

// StreakResult is the outcome of a streak computation.
type StreakResult struct {
	// Current is the number of consecutive newsletter days read, walking
	// backward from today.
	Current int
	// BrokeOn is the day that ended the streak, or "" when the streak runs
	// unbroken back to the user's first read.
	BrokeOn string
}

// ComputeStreak derives a user's current streak from their full distinct
// read-day history. It is a pure function and is re-run on every write
// rather than incrementing a stored counter.
//
// Walking backward from today:
//   - Sundays are transparent: they neither count nor break.
//   - When sent is non-nil, a day with no issue sent is transparent too,
//     which is what keeps a Friday read connected to the following Monday
//     when nothing went out over the weekend.
//   - Today itself is a grace day: an unread today does not break the
//     streak, since the user can still read before midnight.
//   - Any other day without a read breaks the streak.
func ComputeStreak(reads DaySet, sent DaySet, today string, loc *time.Location) (StreakResult, error) {
	if len(reads) == 0 {
		return StreakResult{}, nil
	}

	earliest := reads.Sorted()[0]

	cursor, err := ParseDay(today, loc)
	if err != nil {
		return StreakResult{}, err
	}

	res := StreakResult{}
	for {
		day := FormatDay(cursor)
		if day < earliest {
			// Walked past the whole history without a break.
			return res, nil
		}

		switch {
		case cursor.Weekday() == time.Sunday:
			// Transparent.
		case reads.Has(day):
			res.Current++
		case sent != nil && !sent.Has(day):
			// No issue went out; transparent.
		case day == today:
			// Grace: today is still in progress.
		default:
			res.BrokeOn = day
			return res, nil
		}

		cursor = cursor.AddDate(0, 0, -1)
	}
}

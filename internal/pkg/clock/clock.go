package clock

import "time"

// Clock yields the current time in the configured business time zone.
// Tests set NowFunc to pin the reference time.
type Clock struct {
	Location *time.Location
	NowFunc  func() time.Time
}

func (c Clock) Now() time.Time {
	now := time.Now()
	if c.NowFunc != nil {
		now = c.NowFunc()
	}
	return now.In(c.loc())
}

// Zone is the configured location, UTC when unset.
func (c Clock) Zone() *time.Location {
	return c.loc()
}

func (c Clock) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// MonthStart returns 00:00 of the first day of t's month, shifted by offset months.
func (c Clock) MonthStart(t time.Time, offset int) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month()+time.Month(offset), 1, 0, 0, 0, 0, c.loc())
}

// YearBounds returns [Jan 1 of year, Jan 1 of year+1) in the configured zone.
func (c Clock) YearBounds(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, c.loc()), time.Date(year+1, time.January, 1, 0, 0, 0, 0, c.loc())
}

// Fixed returns a Clock pinned to t.
func Fixed(t time.Time) Clock {
	return Clock{Location: t.Location(), NowFunc: func() time.Time { return t }}
}

package domain

import "time"

// Block is one contiguous working interval within a single day.
type Block struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the block.
func (b Block) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Contains reports whether t lies within the block, end exclusive.
func (b Block) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// span is a time-of-day interval in minutes from midnight.
type span struct {
	startMin int
	endMin   int
}

// Calendar is the fixed weekly working-time template of the shop floor.
// All times are naive local wall-clock values; the calendar never crosses
// into a different location than the instant it is asked about.
type Calendar struct {
	weekdays [7][]span
}

// DefaultCalendar returns the plant calendar: Monday through Friday works
// 08:15-13:00 and 13:30-17:00, Saturday works 08:15-13:00 and 13:30-15:30,
// Sunday is closed.
func DefaultCalendar() *Calendar {
	weekday := []span{{495, 780}, {810, 1020}} // 08:15-13:00, 13:30-17:00
	saturday := []span{{495, 780}, {810, 930}} // 08:15-13:00, 13:30-15:30

	c := &Calendar{}
	for d := time.Monday; d <= time.Friday; d++ {
		c.weekdays[d] = weekday
	}
	c.weekdays[time.Saturday] = saturday
	return c
}

// WorkingBlocks returns the working blocks of the day containing t,
// earliest first. Closed days return nil.
func (c *Calendar) WorkingBlocks(t time.Time) []Block {
	spans := c.weekdays[t.Weekday()]
	if len(spans) == 0 {
		return nil
	}
	year, month, day := t.Date()
	blocks := make([]Block, len(spans))
	for i, s := range spans {
		blocks[i] = Block{
			Start: time.Date(year, month, day, s.startMin/60, s.startMin%60, 0, 0, t.Location()),
			End:   time.Date(year, month, day, s.endMin/60, s.endMin%60, 0, 0, t.Location()),
		}
	}
	return blocks
}

// IsWorkingDay reports whether the day containing t has any working blocks.
func (c *Calendar) IsWorkingDay(t time.Time) bool {
	return len(c.weekdays[t.Weekday()]) > 0
}

// NextWorkingDay returns t advanced day by day until it lands on a working
// day. The clock time is preserved.
func (c *Calendar) NextWorkingDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, 1)
	for !c.IsWorkingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// PrevWorkingDay returns t moved back day by day until it lands on a
// working day. The clock time is preserved.
func (c *Calendar) PrevWorkingDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, -1)
	for !c.IsWorkingDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// CompletionTarget returns the instant a job with the given deadline must
// be finished by: step back three working days from the deadline day and
// take the end of that day's last working block.
func (c *Calendar) CompletionTarget(deadline time.Time) time.Time {
	day := deadline
	for i := 0; i < 3; i++ {
		day = c.PrevWorkingDay(day)
	}
	blocks := c.WorkingBlocks(day)
	return blocks[len(blocks)-1].End
}

// WorkingDuration returns the total working time between start and end,
// counting only the portions that fall inside working blocks.
func (c *Calendar) WorkingDuration(start, end time.Time) time.Duration {
	if !end.After(start) {
		return 0
	}
	var total time.Duration
	for day := startOfDay(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		for _, b := range c.WorkingBlocks(day) {
			s := laterOf(b.Start, start)
			e := earlierOf(b.End, end)
			if e.After(s) {
				total += e.Sub(s)
			}
		}
	}
	return total
}

// MaxBlockDuration returns the length of the longest block in the weekly
// template. Procedures longer than this cannot fit in a single block and
// must be placed by the multi-day finders.
func (c *Calendar) MaxBlockDuration() time.Duration {
	var longest int
	for _, spans := range c.weekdays {
		for _, s := range spans {
			if length := s.endMin - s.startMin; length > longest {
				longest = length
			}
		}
	}
	return time.Duration(longest) * time.Minute
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

package date

import (
	"fmt"
	"time"
)

// Range represents a range of dates, both boundaries included.
type Range struct{ From, To Date }

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// Since returns the range from 'from' up to today.
func Since(from Date) Range { return NewRange(from, Today()) }

// Times returns the range as instants: midnight UTC of From, and the end of To.
func (r Range) Times() (from, to time.Time) {
	return r.From.time(), r.To.time().Add(Day - time.Second)
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }

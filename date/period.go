package date

import (
	"fmt"
	"strings"
)

// Period is the granularity used to bucket a price series.
type Period int

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

const (
	Daily Period = iota
	Weekly
)

func ParsePeriod(p string) (Period, error) {
	p = strings.ToLower(p)
	switch p {
	case "daily", "day", "":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	default:
		return Daily, fmt.Errorf("unknown period %q", p)
	}
}

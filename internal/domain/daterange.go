package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DateRange is an inclusive reporting window.
type DateRange struct {
	Since time.Time
	Until time.Time
}

// ParseDateRange parses two YYYY-MM-DD strings. Both are required and since
// must not be after until.
func ParseDateRange(since, until string) (DateRange, error) {
	if since == "" || until == "" {
		return DateRange{}, fmt.Errorf("%w: date_start and date_end are required", ErrInvalidDateRange)
	}

	from, err := time.Parse(DateLayout, since)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: date_start must be in YYYY-MM-DD format", ErrInvalidDateRange)
	}

	to, err := time.Parse(DateLayout, until)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: date_end must be in YYYY-MM-DD format", ErrInvalidDateRange)
	}

	if from.After(to) {
		return DateRange{}, fmt.Errorf("%w: date_start is after date_end", ErrInvalidDateRange)
	}

	return DateRange{Since: from, Until: to}, nil
}

func (r DateRange) String() string {
	return r.Since.Format(DateLayout) + ".." + r.Until.Format(DateLayout)
}

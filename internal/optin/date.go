package optin

import (
	"regexp"
	"time"
)

const dateLayout = "2006-01-02"

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDate checks the strict YYYY-MM-DD format and that the value is
// a real calendar date.
func ValidateDate(date string) error {
	if !dateRegex.MatchString(date) {
		return ErrInvalidDate
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Today returns the current date in the reference timezone. The office's
// "today" boundary follows one fixed zone, not the server clock's.
func Today(loc *time.Location, now time.Time) string {
	return now.In(loc).Format(dateLayout)
}

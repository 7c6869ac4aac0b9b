// ISO week handling for the dashboard's week picker.
//
// Weeks follow ISO 8601 semantics: week 1 is the week containing the year's
// first Thursday, and weeks run Monday through Sunday. Tokens use the
// YYYY-Www form produced by <input type="week">, e.g. "2024-W03".
package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Week struct {
	Year int
	Num  int
}

// ParseWeek parses a week token in YYYY-Www form. Out-of-range week numbers
// (including week 53 in a 52-week year) are rejected.
func ParseWeek(token string) (Week, error) {
	token = strings.TrimSpace(token)
	yearPart, numPart, ok := strings.Cut(token, "-W")
	if !ok || len(yearPart) != 4 || len(numPart) != 2 {
		return Week{}, ErrInvalidWeek
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil || year < 1 {
		return Week{}, ErrInvalidWeek
	}
	num, err := strconv.Atoi(numPart)
	if err != nil || num < 1 || num > weeksInYear(year) {
		return Week{}, ErrInvalidWeek
	}
	return Week{Year: year, Num: num}, nil
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) Week {
	year, num := t.ISOWeek()
	return Week{Year: year, Num: num}
}

// Start returns the Monday of the week.
func (w Week) Start() Date {
	// January 4th is always inside ISO week 1.
	jan4 := time.Date(w.Year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := int(jan4.Weekday())
	if offset == 0 {
		offset = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, 1-offset)
	return Date{Time: week1Monday.AddDate(0, 0, (w.Num-1)*7)}
}

// End returns the Sunday of the week (inclusive upper bound).
func (w Week) End() Date {
	return Date{Time: w.Start().AddDate(0, 0, 6)}
}

func (w Week) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.Num)
}

func weeksInYear(year int) int {
	// December 28th is always inside the year's last ISO week.
	_, num := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return num
}

package util

import (
	"fmt"
	"math"
	"time"
)

var romanQuarters = [...]string{"I", "II", "III", "IV"}

var monthNamesUK = [...]string{
	"січень", "лютий", "березень", "квітень", "травень", "червень",
	"липень", "серпень", "вересень", "жовтень", "листопад", "грудень",
}

// genitive forms used in dates ("20 січня")
var monthNamesUKGenitive = [...]string{
	"січня", "лютого", "березня", "квітня", "травня", "червня",
	"липня", "серпня", "вересня", "жовтня", "листопада", "грудня",
}

// QuarterOfMonth returns the quarter (1..4) a month (1..12) belongs to
func QuarterOfMonth(month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return (month-1)/3 + 1
}

// ValidQuarter reports whether q is 1..4
func ValidQuarter(q int) bool {
	return q >= 1 && q <= 4
}

// QuarterEndMonth returns the last month of a quarter (3, 6, 9 or 12)
func QuarterEndMonth(quarter int) int {
	return quarter * 3
}

// QuarterBounds returns the half-open interval [start, end) of a quarter in UTC
func QuarterBounds(year, quarter int) (time.Time, time.Time) {
	startMonth := time.Month((quarter-1)*3 + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}

// QuarterLabel returns the Roman numeral of a quarter
func QuarterLabel(quarter int) string {
	if !ValidQuarter(quarter) {
		return ""
	}
	return romanQuarters[quarter-1]
}

// PeriodText formats a reporting period the way declarations print it, e.g. "I квартал 2025 року"
func PeriodText(year, quarter int) string {
	return fmt.Sprintf("%s квартал %d року", QuarterLabel(quarter), year)
}

// MonthNameUK returns the nominative Ukrainian month name
func MonthNameUK(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNamesUK[month-1]
}

// MonthNameUKGenitive returns the genitive Ukrainian month name
func MonthNameUKGenitive(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNamesUKGenitive[month-1]
}

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth returns the year and month for the following month
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// TruncateToDay returns midnight UTC of the calendar date t has in loc
func TruncateToDay(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from one date to another,
// rounding partial days up. Both arguments should be truncated dates.
func DaysBetween(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

// DaysInMonth returns the number of days of a month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CurrentQuarter returns the year and quarter of t
func CurrentQuarter(t time.Time) (int, int) {
	return t.Year(), QuarterOfMonth(int(t.Month()))
}

package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
)

// Fixed-date national holidays observed by the society office. Payments are
// not due on these days.
var (
	RepublicDay = &cal.Holiday{
		Name:  "Republic Day",
		Type:  cal.ObservancePublic,
		Month: time.January,
		Day:   26,
		Func:  cal.CalcDayOfMonth,
	}
	IndependenceDay = &cal.Holiday{
		Name:  "Independence Day",
		Type:  cal.ObservancePublic,
		Month: time.August,
		Day:   15,
		Func:  cal.CalcDayOfMonth,
	}
	GandhiJayanti = &cal.Holiday{
		Name:  "Gandhi Jayanti",
		Type:  cal.ObservancePublic,
		Month: time.October,
		Day:   2,
		Func:  cal.CalcDayOfMonth,
	}
)

// create once at init
var officeCalendar = cal.NewBusinessCalendar()

func init() {
	officeCalendar.AddHoliday(
		RepublicDay,
		IndependenceDay,
		GandhiJayanti,
	)
}

func IsOfficeHoliday(t time.Time) bool {
	ok, _, _ := officeCalendar.IsHoliday(t)
	return ok
}

// AddWorkdays returns the date n business days after t (weekends and office
// holidays skipped). n <= 0 returns t unchanged.
func AddWorkdays(t time.Time, n int) time.Time {
	d := t
	for n > 0 {
		d = d.AddDate(0, 0, 1)
		if officeCalendar.IsWorkday(d) {
			n--
		}
	}
	return d
}

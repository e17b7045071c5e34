package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the only wire format for dates: YYYY-MM-DD.
const DateLayout = "2006-01-02"

// CellsPerView is the fixed month-grid size: 6 full weeks, so adjacent months
// always pad the first and last rows.
const CellsPerView = 42

var ErrUnparsableDate = errors.New("date is not in a recognized format")

// acceptedLayouts are the free-text spellings reformatted into DateLayout.
var acceptedLayouts = []string{
	DateLayout,
	"2006-1-2",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006/01/02",
}

// Cell is one day slot of a 42-cell month view.
type Cell struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Day     int    `json:"day"`
	InMonth bool   `json:"inMonth"`
	Today   bool   `json:"today"`
}

// Grid is one month view plus the navigation anchors around it.
type Grid struct {
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	Cells     []Cell     `json:"cells"`
	PrevYear  int        `json:"prevYear"`
	PrevMonth time.Month `json:"prevMonth"`
	NextYear  int        `json:"nextYear"`
	NextMonth time.Month `json:"nextMonth"`
}

// MonthGrid renders the 42-cell view for a month. Weeks start on Sunday; the
// leading and trailing cells come from the adjacent months.
func MonthGrid(year int, month time.Month, today time.Time) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	todayStr := today.UTC().Format(DateLayout)

	cells := make([]Cell, 0, CellsPerView)
	for i := 0; i < CellsPerView; i++ {
		d := start.AddDate(0, 0, i)
		ds := d.Format(DateLayout)
		cells = append(cells, Cell{
			Date:    ds,
			Day:     d.Day(),
			InMonth: d.Month() == month && d.Year() == year,
			Today:   ds == todayStr,
		})
	}

	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)

	return Grid{
		Year:      year,
		Month:     month,
		Cells:     cells,
		PrevYear:  prev.Year(),
		PrevMonth: prev.Month(),
		NextYear:  next.Year(),
		NextMonth: next.Month(),
	}
}

// Format renders a time as the canonical wire date.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// Parse reads a canonical wire date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, ErrUnparsableDate)
	}
	return t, nil
}

// NormalizeDuration reformats a free-text date into YYYY-MM-DD, the blur-time
// fixup the proposal form applies to its duration field.
func NormalizeDuration(raw string) (string, error) {
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("normalize duration %q: %w", raw, ErrUnparsableDate)
}

package report

import (
	"fmt"
	"time"

	"slotbook/internal/reservations/colors"
	"slotbook/internal/reservations/eligibility"
	"slotbook/internal/reservations/window"
	"slotbook/pkg/model"
)

type SlotView struct {
	Time       string `json:"time"`
	Reservable bool   `json:"reservable"`
	Reason     string `json:"reason,omitempty"`
	Reserved   bool   `json:"reserved"`
	Name       string `json:"name,omitempty"`
	Color      string `json:"color"`
}

// DaySlots describes every configured slot on date.
func DaySlots(snap model.Snapshot, w window.Window, date time.Time, clocks []model.Clock, palette colors.Assignment) []SlotView {
	key := model.FormatDate(date)
	views := make([]SlotView, 0, len(clocks))
	for _, c := range clocks {
		reason := eligibility.Classify(w, date, c)
		v := SlotView{
			Time:       c.String(),
			Reservable: reason == eligibility.Reservable,
			Reason:     string(reason),
			Color:      colors.Empty,
		}
		if r, ok := snap.Get(key, c.String()); ok {
			v.Reserved = true
			v.Name = r.Name
			v.Color = palette.ColorFor(r.Name)
		}
		views = append(views, v)
	}
	return views
}

type WeekDay struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Short string `json:"short"`
}

type WeekCell struct {
	Date  string `json:"date"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color"`
}

type WeekRow struct {
	Time  string     `json:"time"`
	Cells []WeekCell `json:"cells"`
}

type Week struct {
	Days []WeekDay `json:"days"`
	Rows []WeekRow `json:"rows"`
}

// WeekGrid lays out the seven days starting at the reservable start, one row
// per configured time.
func WeekGrid(snap model.Snapshot, w window.Window, clocks []model.Clock, labels []string, palette colors.Assignment) Week {
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = w.ReservableStart.AddDate(0, 0, i)
	}

	week := Week{Days: make([]WeekDay, 0, 7), Rows: make([]WeekRow, 0, len(clocks))}
	for _, d := range dates {
		week.Days = append(week.Days, WeekDay{
			Date:  model.FormatDate(d),
			Label: Label(labels, d.Weekday()),
			Short: fmt.Sprintf("%d/%d", int(d.Month()), d.Day()),
		})
	}
	for _, c := range clocks {
		row := WeekRow{Time: c.String(), Cells: make([]WeekCell, 0, 7)}
		for _, d := range dates {
			cell := WeekCell{Date: model.FormatDate(d), Color: colors.Empty}
			if r, ok := snap.Get(cell.Date, c.String()); ok {
				cell.Name = r.Name
				cell.Color = palette.ColorFor(r.Name)
			}
			row.Cells = append(row.Cells, cell)
		}
		week.Rows = append(week.Rows, row)
	}
	return week
}

type CalendarDay struct {
	Date           string `json:"date"`
	Day            int    `json:"day"`
	Label          string `json:"label"`
	IsToday        bool   `json:"is_today"`
	HasReservation bool   `json:"has_reservation"`
	Reachable      bool   `json:"reachable"`
}

type Month struct {
	Month string `json:"month"`
	// LeadingBlanks is the number of empty cells before the 1st in a
	// Sunday-first grid.
	LeadingBlanks int           `json:"leading_blanks"`
	Days          []CalendarDay `json:"days"`
}

// MonthCalendar builds the grid for the month containing month, in the
// window's location.
func MonthCalendar(snap model.Snapshot, w window.Window, month, now time.Time, clocks []model.Clock, labels []string) Month {
	loc := w.Location()
	y, m, _ := month.In(loc).Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	today := model.FormatDate(now.In(loc))

	cal := Month{Month: first.Format(model.MonthLayout), LeadingBlanks: int(first.Weekday())}
	for d := first; d.Month() == m; d = d.AddDate(0, 0, 1) {
		key := model.FormatDate(d)
		cal.Days = append(cal.Days, CalendarDay{
			Date:           key,
			Day:            d.Day(),
			Label:          Label(labels, d.Weekday()),
			IsToday:        key == today,
			HasReservation: len(snap[key]) > 0,
			Reachable:      eligibility.IsDateReachable(w, d, clocks),
		})
	}
	return cal
}

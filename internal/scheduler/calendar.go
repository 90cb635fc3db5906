package scheduler

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/careops/dietary-golang/internal/models"
)

//
// --- Calendar Projection (read-only) ---
//

// UntitledMenu is displayed when a schedule's source menu has been deleted.
const UntitledMenu = "(untitled)"

// unknownItem is displayed when a snapshot's inventory item has been deleted.
const unknownItem = "(unknown item)"

// ScheduledItem is one resolved line of a day's detail view.
type ScheduledItem struct {
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	QuantityUsed float64 `json:"quantityUsed"`
}

// DayEntry is one scheduled meal on one date, fully resolved for display.
type DayEntry struct {
	ScheduleID int64           `json:"scheduleId"`
	MealType   string          `json:"mealType"`
	MenuID     *int64          `json:"menuId,omitempty"`
	MenuTitle  string          `json:"menuTitle"`
	Notes      string          `json:"notes,omitempty"`
	Items      []ScheduledItem `json:"items"`
}

// WeekDay is one column of the weekly grid.
type WeekDay struct {
	Dow  string `json:"dow"`
	Date string `json:"date"`
}

// WeekEntry is one scheduled meal as shown in a weekly grid cell.
type WeekEntry struct {
	ScheduleID int64  `json:"scheduleId"`
	MenuTitle  string `json:"menuTitle"`
}

// Week is the full weekly view: the Monday..Sunday window plus every entry
// grouped by date and meal slot.
type Week struct {
	WeekStart string                            `json:"weekStart"`
	WeekEnd   string                            `json:"weekEnd"`
	Days      []WeekDay                         `json:"days"`
	Grouped   map[string]map[string][]WeekEntry `json:"grouped"`
}

// weekBounds returns the Monday of the week `offset` weeks away from the week
// containing `today` (offset 0 = this week, negative = past).
func weekBounds(offset int, today time.Time) time.Time {
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	monday := today.AddDate(0, 0, -(weekday-1)+7*offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}

// GetSchedule returns the fully resolved detail view for a single date,
// ordered Breakfast, Lunch, Dinner regardless of storage order.
func (e *Engine) GetSchedule(ctx context.Context, day time.Time) ([]DayEntry, error) {
	dateStr := day.Format("2006-01-02")

	rows, err := e.DB.QueryContext(ctx, `
		SELECT ms.id, ms.meal_type, ms.menu_id, ms.notes, m.title
		FROM menu_schedules ms
		LEFT JOIN menus m ON ms.menu_id = m.id
		WHERE ms.date = ?`, dateStr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []DayEntry{}
	for rows.Next() {
		var entry DayEntry
		var menuID sql.NullInt64
		var notes, title sql.NullString
		if err := rows.Scan(&entry.ScheduleID, &entry.MealType, &menuID, &notes, &title); err != nil {
			return nil, err
		}
		if menuID.Valid {
			entry.MenuID = &menuID.Int64
		}
		entry.Notes = notes.String
		// A deleted (or never-set) menu renders as a placeholder, not an error.
		entry.MenuTitle = UntitledMenu
		if title.Valid {
			entry.MenuTitle = title.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return models.MealOrder(entries[i].MealType) < models.MealOrder(entries[j].MealType)
	})

	for idx := range entries {
		items, err := e.scheduleItems(ctx, entries[idx].ScheduleID)
		if err != nil {
			return nil, err
		}
		entries[idx].Items = items
	}

	return entries, nil
}

// scheduleItems resolves one schedule's item snapshots against the current
// inventory catalog. A snapshot whose item has since been deleted still shows
// its recorded quantity, just with a placeholder name.
func (e *Engine) scheduleItems(ctx context.Context, scheduleID int64) ([]ScheduledItem, error) {
	rows, err := e.DB.QueryContext(ctx, `
		SELECT msi.quantity_used, i.name, i.unit
		FROM menu_schedule_items msi
		LEFT JOIN inventory_items i ON msi.inventory_id = i.id
		WHERE msi.schedule_id = ?
		ORDER BY msi.id`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []ScheduledItem{}
	for rows.Next() {
		var item ScheduledItem
		var name, unit sql.NullString
		if err := rows.Scan(&item.QuantityUsed, &name, &unit); err != nil {
			return nil, err
		}
		item.Name = unknownItem
		if name.Valid {
			item.Name = name.String
		}
		item.Unit = unit.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetWeek returns the Monday..Sunday window `offset` weeks from the current
// one, plus every scheduled meal in that window grouped by date and slot.
func (e *Engine) GetWeek(ctx context.Context, offset int) (*Week, error) {
	return e.getWeekFrom(ctx, offset, time.Now())
}

func (e *Engine) getWeekFrom(ctx context.Context, offset int, today time.Time) (*Week, error) {
	monday := weekBounds(offset, today)
	sunday := monday.AddDate(0, 0, 6)

	week := &Week{
		WeekStart: monday.Format("2006-01-02"),
		WeekEnd:   sunday.Format("2006-01-02"),
		Grouped:   make(map[string]map[string][]WeekEntry),
	}
	for d := 0; d < 7; d++ {
		day := monday.AddDate(0, 0, d)
		week.Days = append(week.Days, WeekDay{
			Dow:  day.Format("Mon"),
			Date: day.Format("2006-01-02"),
		})
	}

	rows, err := e.DB.QueryContext(ctx, `
		SELECT ms.id, ms.date, ms.meal_type, m.title
		FROM menu_schedules ms
		LEFT JOIN menus m ON ms.menu_id = m.id
		WHERE ms.date BETWEEN ? AND ?
		ORDER BY ms.date`, week.WeekStart, week.WeekEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var scheduleID int64
		var date time.Time
		var mealType string
		var title sql.NullString
		if err := rows.Scan(&scheduleID, &date, &mealType, &title); err != nil {
			return nil, err
		}

		entry := WeekEntry{ScheduleID: scheduleID, MenuTitle: UntitledMenu}
		if title.Valid {
			entry.MenuTitle = title.String
		}

		dateKey := date.Format("2006-01-02")
		if week.Grouped[dateKey] == nil {
			week.Grouped[dateKey] = make(map[string][]WeekEntry)
		}
		week.Grouped[dateKey][mealType] = append(week.Grouped[dateKey][mealType], entry)
	}
	return week, rows.Err()
}

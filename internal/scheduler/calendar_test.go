package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/careops/dietary-golang/internal/auth"
	"github.com/careops/dietary-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekBounds(t *testing.T) {
	// Wednesday 2026-03-04 belongs to the week starting Monday 2026-03-02.
	wednesday := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-02", weekBounds(0, wednesday).Format("2006-01-02"))

	// Sunday closes the week that started the previous Monday.
	sunday := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-02", weekBounds(0, sunday).Format("2006-01-02"))

	// Monday is its own week start.
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-02", weekBounds(0, monday).Format("2006-01-02"))

	// Offsets move in whole weeks, both directions.
	assert.Equal(t, "2026-03-09", weekBounds(1, wednesday).Format("2006-01-02"))
	assert.Equal(t, "2026-02-23", weekBounds(-1, wednesday).Format("2006-01-02"))
}

func TestGetScheduleOrdersMealsForServing(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	caps := auth.Capabilities{CanSchedule: true}
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	milk := insertItem(t, db, "Milk", "l", 50)
	dinnerMenu, _ := insertMenu(t, db, models.MealDinner, "Stew", milk, 1)
	breakfastMenu, _ := insertMenu(t, db, models.MealBreakfast, "Cereal", milk, 2)
	lunchMenu, _ := insertMenu(t, db, models.MealLunch, "Soup", milk, 3)

	// Insert dinner first, then breakfast, then lunch: storage order must not
	// leak into the day view.
	for _, req := range []map[string]Selection{
		{models.MealDinner: {MenuID: dinnerMenu}},
		{models.MealBreakfast: {MenuID: breakfastMenu}},
		{models.MealLunch: {MenuID: lunchMenu}},
	} {
		_, err := engine.ScheduleMenus(context.Background(), caps, day, req, "")
		require.NoError(t, err)
	}

	entries, err := engine.GetSchedule(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, models.MealBreakfast, entries[0].MealType)
	assert.Equal(t, models.MealLunch, entries[1].MealType)
	assert.Equal(t, models.MealDinner, entries[2].MealType)
	assert.Equal(t, "Cereal", entries[0].MenuTitle)

	require.Len(t, entries[0].Items, 1)
	assert.Equal(t, ScheduledItem{Name: "Milk", Unit: "l", QuantityUsed: 2}, entries[0].Items[0])
}

func TestGetScheduleRendersDeletedMenuAsUntitled(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	caps := auth.Capabilities{CanSchedule: true}
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	bread := insertItem(t, db, "Bread", "pcs", 12)
	menu, _ := insertMenu(t, db, models.MealBreakfast, "Toast", bread, 2)

	_, err := engine.ScheduleMenus(context.Background(), caps, day, map[string]Selection{
		models.MealBreakfast: {MenuID: menu},
	}, "")
	require.NoError(t, err)

	// Delete the menu out from under the schedule; the record must survive
	// and render with a placeholder title.
	_, err = db.Exec("DELETE FROM menu_ingredients WHERE menu_id = ?", menu)
	require.NoError(t, err)
	_, err = db.Exec("DELETE FROM menus WHERE id = ?", menu)
	require.NoError(t, err)

	entries, err := engine.GetSchedule(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, UntitledMenu, entries[0].MenuTitle)
	require.Len(t, entries[0].Items, 1)
	assert.Equal(t, "Bread", entries[0].Items[0].Name, "snapshot still resolves the item")
}

func TestGetWeekGroupsEntriesByDateAndSlot(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	caps := auth.Capabilities{CanSchedule: true}

	// Pin "today" to a known Wednesday and schedule inside that week.
	today := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	eggs := insertItem(t, db, "Eggs", "pcs", 60)
	menu, _ := insertMenu(t, db, models.MealBreakfast, "Omelette", eggs, 6)

	_, err := engine.ScheduleMenus(context.Background(), caps, tuesday, map[string]Selection{
		models.MealBreakfast: {MenuID: menu},
	}, "")
	require.NoError(t, err)

	week, err := engine.getWeekFrom(context.Background(), 0, today)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-02", week.WeekStart)
	assert.Equal(t, "2026-03-08", week.WeekEnd)
	require.Len(t, week.Days, 7)
	assert.Equal(t, WeekDay{Dow: "Mon", Date: "2026-03-02"}, week.Days[0])
	assert.Equal(t, WeekDay{Dow: "Sun", Date: "2026-03-08"}, week.Days[6])

	entries := week.Grouped["2026-03-03"][models.MealBreakfast]
	require.Len(t, entries, 1)
	assert.Equal(t, "Omelette", entries[0].MenuTitle)

	// A week with nothing scheduled still returns the seven days.
	empty, err := engine.getWeekFrom(context.Background(), 5, today)
	require.NoError(t, err)
	require.Len(t, empty.Days, 7)
	assert.Empty(t, empty.Grouped)
}

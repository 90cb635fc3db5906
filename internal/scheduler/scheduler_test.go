package scheduler

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/careops/dietary-golang/internal/auth"
	"github.com/careops/dietary-golang/internal/database"
	"github.com/careops/dietary-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveQuantity(t *testing.T) {
	// No override: menu default wins.
	assert.Equal(t, 6.0, effectiveQuantity("", false, 6.0))

	// Numeric override replaces the default.
	assert.Equal(t, 4.0, effectiveQuantity("4", true, 6.0))
	assert.Equal(t, 2.5, effectiveQuantity(" 2.5 ", true, 6.0))

	// Zero is a real override, not "use default".
	assert.Equal(t, 0.0, effectiveQuantity("0", true, 6.0))

	// Non-numeric overrides fall back to the default.
	assert.Equal(t, 6.0, effectiveQuantity("a lot", true, 6.0))
	assert.Equal(t, 6.0, effectiveQuantity("", true, 6.0))
}

func TestAggregateDemandSumsAcrossSlots(t *testing.T) {
	// Milk (id 1) is needed by both Breakfast and Dinner; the needs must sum.
	planned := map[string][]plannedItem{
		models.MealBreakfast: {{inventoryID: 1, quantity: 6}},
		models.MealDinner:    {{inventoryID: 1, quantity: 5}, {inventoryID: 2, quantity: 1}},
	}

	demand, order := aggregateDemand(planned)

	assert.Equal(t, 11.0, demand[1])
	assert.Equal(t, 1.0, demand[2])
	assert.Equal(t, []int64{1, 2}, order, "first appearance order, breakfast first")
}

func TestFindShortages(t *testing.T) {
	stock := map[int64]*stockRow{
		1: {name: "Milk", unit: "l", have: 10},
		2: {name: "Oats", unit: "kg", have: 3},
		3: {name: "Salt", unit: "g", have: 500},
	}

	t.Run("demand equal to stock passes", func(t *testing.T) {
		demand := map[int64]float64{1: 10, 2: 3}
		assert.Empty(t, findShortages(demand, []int64{1, 2}, stock))
	})

	t.Run("every short item is reported at once", func(t *testing.T) {
		demand := map[int64]float64{1: 11, 2: 4, 3: 100}
		shortages := findShortages(demand, []int64{1, 2, 3}, stock)

		require.Len(t, shortages, 2)
		assert.Equal(t, Shortage{InventoryID: 1, Name: "Milk", Unit: "l", Need: 11, Have: 10}, shortages[0])
		assert.Equal(t, Shortage{InventoryID: 2, Name: "Oats", Unit: "kg", Need: 4, Have: 3}, shortages[1])
	})
}

func TestScheduleMenusRejectsWithoutCapability(t *testing.T) {
	engine := NewEngine(nil) // never reaches the database

	_, err := engine.ScheduleMenus(context.Background(), auth.Capabilities{}, time.Now(),
		map[string]Selection{models.MealLunch: {MenuID: 1}}, "")
	assert.ErrorIs(t, err, ErrNotPermitted)

	err = engine.DeleteSchedule(context.Background(), auth.Capabilities{}, 1)
	assert.ErrorIs(t, err, ErrNotPermitted)
}

func TestScheduleMenusRejectsEmptySelection(t *testing.T) {
	engine := NewEngine(nil)
	caps := auth.Capabilities{CanSchedule: true}

	_, err := engine.ScheduleMenus(context.Background(), caps, time.Now(), nil, "")
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = engine.ScheduleMenus(context.Background(), caps, time.Now(), map[string]Selection{}, "")
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestScheduleMenusRejectsUnknownMealType(t *testing.T) {
	engine := NewEngine(nil)
	caps := auth.Capabilities{CanSchedule: true}

	_, err := engine.ScheduleMenus(context.Background(), caps, time.Now(),
		map[string]Selection{"Brunch": {MenuID: 1}}, "")

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

//
// --- Integration tests (need a real MySQL via TEST_DATABASE_DSN) ---
//

func setupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := database.OpenDBWithDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	for _, table := range []string{"menu_schedule_items", "menu_schedules", "menu_ingredients", "menus", "inventory_items"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func insertItem(t *testing.T, db *sql.DB, name, unit string, qty float64) int64 {
	result, err := db.Exec(`
		INSERT INTO inventory_items (name, unit, quantity, low_stock_threshold, updated_at)
		VALUES (?, ?, ?, 0, ?)`, name, unit, qty, time.Now())
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertMenu(t *testing.T, db *sql.DB, mealType, title string, inventoryID int64, qty float64) (menuID, ingredientID int64) {
	result, err := db.Exec(
		"INSERT INTO menus (meal_type, title, description) VALUES (?, ?, '')", mealType, title)
	require.NoError(t, err)
	menuID, err = result.LastInsertId()
	require.NoError(t, err)

	result, err = db.Exec(
		"INSERT INTO menu_ingredients (menu_id, inventory_id, quantity) VALUES (?, ?, ?)",
		menuID, inventoryID, qty)
	require.NoError(t, err)
	ingredientID, err = result.LastInsertId()
	require.NoError(t, err)
	return menuID, ingredientID
}

func itemQuantity(t *testing.T, db *sql.DB, id int64) float64 {
	var qty float64
	require.NoError(t, db.QueryRow("SELECT quantity FROM inventory_items WHERE id = ?", id).Scan(&qty))
	return qty
}

// The worked example: Milk 10l on hand, Cereal Breakfast needs 6, Milk
// Smoothie Dinner needs 5. Together they overdraw, so the whole request must
// fail; lowering the dinner override to 4 makes it fit exactly.
func TestScheduleMenusAggregatedSufficiency(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	caps := auth.Capabilities{CanSchedule: true}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	milk := insertItem(t, db, "Milk", "l", 10)
	breakfast, _ := insertMenu(t, db, models.MealBreakfast, "Cereal Breakfast", milk, 6)
	dinner, dinnerMilk := insertMenu(t, db, models.MealDinner, "Milk Smoothie Dinner", milk, 5)

	// 6 + 5 = 11 > 10: the request fails and nothing changes, even though
	// each slot alone would fit.
	_, err := engine.ScheduleMenus(context.Background(), caps, day, map[string]Selection{
		models.MealBreakfast: {MenuID: breakfast},
		models.MealDinner:    {MenuID: dinner},
	}, "")

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortages, 1)
	assert.Equal(t, "Milk", stockErr.Shortages[0].Name)
	assert.Equal(t, 11.0, stockErr.Shortages[0].Need)
	assert.Equal(t, 10.0, stockErr.Shortages[0].Have)
	assert.Equal(t, 10.0, itemQuantity(t, db, milk), "failed request must not touch stock")

	var scheduleCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM menu_schedules").Scan(&scheduleCount))
	assert.Zero(t, scheduleCount, "failed request must not leave schedule rows")

	// Override dinner down to 4: 6 + 4 = 10 fits exactly.
	summary, err := engine.ScheduleMenus(context.Background(), caps, day, map[string]Selection{
		models.MealBreakfast: {MenuID: breakfast},
		models.MealDinner:    {MenuID: dinner, Overrides: map[int64]string{dinnerMilk: "4"}},
	}, "")
	require.NoError(t, err)

	require.Len(t, summary, 1)
	assert.Equal(t, Deduction{ItemName: "Milk", Unit: "l", Amount: 10}, summary[0])
	assert.Equal(t, 0.0, itemQuantity(t, db, milk))

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM menu_schedules").Scan(&scheduleCount))
	assert.Equal(t, 2, scheduleCount)
	var itemCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM menu_schedule_items").Scan(&itemCount))
	assert.Equal(t, 2, itemCount)
}

func TestScheduleMenusReplacementDoesNotAccumulate(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	caps := auth.Capabilities{CanSchedule: true}
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	oats := insertItem(t, db, "Oats", "kg", 20)
	porridge, _ := insertMenu(t, db, models.MealBreakfast, "Porridge", oats, 2)

	request := map[string]Selection{models.MealBreakfast: {MenuID: porridge}}

	_, err := engine.ScheduleMenus(context.Background(), caps, day, request, "")
	require.NoError(t, err)
	assert.Equal(t, 18.0, itemQuantity(t, db, oats))

	// Re-running replaces the schedule (still exactly one row per slot) but
	// each run is a fresh deduction; there is no implicit idempotence.
	_, err = engine.ScheduleMenus(context.Background(), caps, day, request, "")
	require.NoError(t, err)
	assert.Equal(t, 16.0, itemQuantity(t, db, oats))

	var scheduleCount, itemCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM menu_schedules").Scan(&scheduleCount))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM menu_schedule_items").Scan(&itemCount))
	assert.Equal(t, 1, scheduleCount, "replacement, not accumulation")
	assert.Equal(t, 1, itemCount)
}

func TestScheduleMenusMenuWithoutIngredients(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	caps := auth.Capabilities{CanSchedule: true}
	day := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	// Authoring enforces at least one ingredient, but rows edited out-of-band
	// can leave a menu empty. The slot must still get its schedule row rather
	// than being silently dropped from the request.
	result, err := db.Exec(
		"INSERT INTO menus (meal_type, title, description) VALUES (?, 'Fasting Day', '')",
		models.MealLunch)
	require.NoError(t, err)
	menuID, err := result.LastInsertId()
	require.NoError(t, err)

	summary, err := engine.ScheduleMenus(context.Background(), caps, day, map[string]Selection{
		models.MealLunch: {MenuID: menuID},
	}, "light day")
	require.NoError(t, err)
	assert.Empty(t, summary, "nothing to deduct")

	var scheduleCount, itemCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM menu_schedules").Scan(&scheduleCount))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM menu_schedule_items").Scan(&itemCount))
	assert.Equal(t, 1, scheduleCount, "the empty menu still occupies its slot")
	assert.Zero(t, itemCount)

	entries, err := engine.GetSchedule(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Fasting Day", entries[0].MenuTitle)
	assert.Empty(t, entries[0].Items)
}

func TestScheduleMenusZeroOverride(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	caps := auth.Capabilities{CanSchedule: true}
	day := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	tea := insertItem(t, db, "Tea", "g", 100)
	menu, ingredient := insertMenu(t, db, models.MealLunch, "Tea Service", tea, 25)

	_, err := engine.ScheduleMenus(context.Background(), caps, day, map[string]Selection{
		models.MealLunch: {MenuID: menu, Overrides: map[int64]string{ingredient: "0"}},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 100.0, itemQuantity(t, db, tea), "zero override consumes nothing")

	var recorded float64
	require.NoError(t, db.QueryRow("SELECT quantity_used FROM menu_schedule_items").Scan(&recorded))
	assert.Equal(t, 0.0, recorded, "the zero is recorded, not replaced by the default")
}

func TestScheduleMenusMissingInventoryItemAborts(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	caps := auth.Capabilities{CanSchedule: true}
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	ghost := insertItem(t, db, "Ghost", "pcs", 5)
	menu, _ := insertMenu(t, db, models.MealDinner, "Haunted Stew", ghost, 1)
	_, err := db.Exec("DELETE FROM inventory_items WHERE id = ?", ghost)
	require.NoError(t, err)

	_, err = engine.ScheduleMenus(context.Background(), caps, day, map[string]Selection{
		models.MealDinner: {MenuID: menu},
	}, "")

	var integrityErr *DataIntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, models.MealDinner, integrityErr.MealType)
	assert.Equal(t, ghost, integrityErr.InventoryID)

	var scheduleCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM menu_schedules").Scan(&scheduleCount))
	assert.Zero(t, scheduleCount)
}

func TestDeleteScheduleDoesNotRestock(t *testing.T) {
	db := setupTestDB(t)
	engine := NewEngine(db)
	caps := auth.Capabilities{CanSchedule: true}
	day := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

	rice := insertItem(t, db, "Rice", "kg", 10)
	menu, _ := insertMenu(t, db, models.MealDinner, "Rice Bowl", rice, 3)

	_, err := engine.ScheduleMenus(context.Background(), caps, day, map[string]Selection{
		models.MealDinner: {MenuID: menu},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 7.0, itemQuantity(t, db, rice))

	var scheduleID int64
	require.NoError(t, db.QueryRow("SELECT id FROM menu_schedules").Scan(&scheduleID))

	require.NoError(t, engine.DeleteSchedule(context.Background(), caps, scheduleID))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM menu_schedule_items").Scan(&count))
	assert.Zero(t, count, "snapshots go with the schedule")
	assert.Equal(t, 7.0, itemQuantity(t, db, rice), "deletion never restocks")

	assert.ErrorIs(t, engine.DeleteSchedule(context.Background(), caps, scheduleID), ErrScheduleNotFound)
}
